package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_ToggleCreatesEdge(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "follows"`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "follows"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	following, err := repo.Toggle(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_ToggleRemovesExistingEdge(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "follows"`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	following, err := repo.Toggle(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_IsFollowing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows"`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	following, err := repo.IsFollowing(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestFollowRepository_Followers(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(2, "bob").
		AddRow(3, "carol")
	mock.ExpectQuery(`SELECT (.+) FROM "users" JOIN follows ON follows\.follower_id = users\.id`).
		WithArgs(1).
		WillReturnRows(rows)

	users, err := repo.Followers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
}
