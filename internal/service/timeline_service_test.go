package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flock/internal/models"
)

func TestGetTimelineComposition(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	bob := createUser(t, f.db, "bob")
	carol := createUser(t, f.db, "carol")
	ctx := context.Background()

	_, err := f.graph.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	own := f.mustCreatePost(t, alice.ID, "alice's own post")
	followed := f.mustCreatePost(t, bob.ID, "bob's post")
	f.mustCreatePost(t, carol.ID, "carol's post")

	// Replies never show up in the home feed.
	_, err = f.interactions.CreatePost(ctx, bob.ID, "bob replying", "", &own.ID)
	require.NoError(t, err)

	posts, err := f.timeline.GetTimeline(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	ids := []uint{posts[0].ID, posts[1].ID}
	assert.Contains(t, ids, own.ID)
	assert.Contains(t, ids, followed.ID)
}

func TestGetTimelineNewestFirstAndPaged(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		f.mustCreatePost(t, alice.ID, fmt.Sprintf("post %02d", i))
	}

	first, err := f.timeline.GetTimeline(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := f.timeline.GetTimeline(ctx, alice.ID, 2, 10)
	require.NoError(t, err)
	assert.Len(t, second, 5)

	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].CreatedAt.After(first[i-1].CreatedAt),
			"posts must be ordered newest first")
	}

	// Out-of-range inputs fall back to the defaults.
	defaulted, err := f.timeline.GetTimeline(ctx, alice.ID, -3, 0)
	require.NoError(t, err)
	assert.Len(t, defaulted, 10)
	assert.Equal(t, first[0].ID, defaulted[0].ID)
}

func TestGetTimelineViewerFlags(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	bob := createUser(t, f.db, "bob")
	ctx := context.Background()

	_, err := f.graph.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	liked := f.mustCreatePost(t, bob.ID, "liked by alice")
	plain := f.mustCreatePost(t, bob.ID, "not liked")

	_, err = f.interactions.ToggleLike(ctx, alice.ID, liked.ID)
	require.NoError(t, err)

	posts, err := f.timeline.GetTimeline(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	byID := map[uint]*models.Post{}
	for _, p := range posts {
		byID[p.ID] = p
	}
	assert.True(t, byID[liked.ID].Liked)
	assert.Equal(t, 1, byID[liked.ID].LikesCount)
	assert.False(t, byID[plain.ID].Liked)
}

func TestGetTimelineIncludesRepostWrappers(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	bob := createUser(t, f.db, "bob")
	carol := createUser(t, f.db, "carol")
	ctx := context.Background()

	// Alice follows bob but not carol. Bob reposts carol's post, which
	// surfaces it in alice's feed through the wrapper.
	_, err := f.graph.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	original := f.mustCreatePost(t, carol.ID, "carol's original")
	_, err = f.interactions.ToggleRepost(ctx, bob.ID, original.ID)
	require.NoError(t, err)

	posts, err := f.timeline.GetTimeline(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	wrapper := posts[0]
	assert.Equal(t, bob.ID, wrapper.UserID)
	require.NotNil(t, wrapper.RepostOf)
	assert.Equal(t, original.ID, wrapper.RepostOf.ID)
	assert.Equal(t, carol.ID, wrapper.RepostOf.User.ID)
}

func TestGetUserPosts(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	bob := createUser(t, f.db, "bob")
	ctx := context.Background()

	post := f.mustCreatePost(t, alice.ID, "top level")
	_, err := f.interactions.CreatePost(ctx, alice.ID, "a reply", "", &post.ID)
	require.NoError(t, err)

	posts, err := f.timeline.GetUserPosts(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1, "replies are excluded from the author feed")
	assert.Equal(t, post.ID, posts[0].ID)

	_, err = f.timeline.GetUserPosts(ctx, 9999, bob.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
}

func TestGetThread(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	bob := createUser(t, f.db, "bob")
	ctx := context.Background()

	post := f.mustCreatePost(t, alice.ID, "thread root")
	r1, err := f.interactions.CreatePost(ctx, bob.ID, "first reply", "", &post.ID)
	require.NoError(t, err)
	r2, err := f.interactions.CreatePost(ctx, alice.ID, "second reply", "", &post.ID)
	require.NoError(t, err)

	root, replies, err := f.timeline.GetThread(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, root.ID)
	assert.Equal(t, 2, root.RepliesCount)

	require.Len(t, replies, 2)
	got := []uint{replies[0].ID, replies[1].ID}
	assert.Contains(t, got, r1.ID)
	assert.Contains(t, got, r2.ID)
}

func TestGetProfileCounts(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	bob := createUser(t, f.db, "bob")
	carol := createUser(t, f.db, "carol")
	ctx := context.Background()

	_, err := f.graph.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.graph.ToggleFollow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.graph.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	post := f.mustCreatePost(t, alice.ID, "top level")
	_, err = f.interactions.CreatePost(ctx, alice.ID, "a reply", "", &post.ID)
	require.NoError(t, err)

	profile, err := f.timeline.GetProfile(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.FollowersCount)
	assert.Equal(t, 1, profile.FollowingCount)
	assert.Equal(t, 1, profile.PostCount, "replies do not count toward the profile post count")
	assert.True(t, profile.IsFollowing)

	// Carol does not follow alice back the other way, but alice viewing
	// bob sees her own edge.
	anon, err := f.timeline.GetProfile(ctx, "alice", 0)
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)

	_, err = f.timeline.GetProfile(ctx, "nobody", 0)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
}

func TestSearchPostsCapAndOrder(t *testing.T) {
	f := newFixture(t)
	alice := createUser(t, f.db, "alice")
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		f.mustCreatePost(t, alice.ID, fmt.Sprintf("gopher musing %02d", i))
	}
	f.mustCreatePost(t, alice.ID, "unrelated content")

	posts, err := f.timeline.SearchPosts(ctx, "GoPhEr", 0)
	require.NoError(t, err)
	assert.Len(t, posts, MaxSearchResults, "results are capped")

	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}

	_, err = f.timeline.SearchPosts(ctx, "", 0)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t)
	createUser(t, f.db, "gopher_alice")
	createUser(t, f.db, "gopher_bob")
	createUser(t, f.db, "someone")
	ctx := context.Background()

	users, err := f.timeline.SearchUsers(ctx, "GOPHER")
	require.NoError(t, err)
	require.Len(t, users, 2)
	// Implementation-defined order: ascending by id.
	assert.True(t, users[0].ID < users[1].ID)

	_, err = f.timeline.SearchUsers(ctx, "")
	require.Error(t, err)
}
