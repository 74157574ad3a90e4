// Package server wires HTTP transport, middleware and routes together.
package server

import (
	"fmt"
	"strings"
	"time"

	"flock/internal/cache"
	"flock/internal/config"
	"flock/internal/database"
	"flock/internal/media"
	"flock/internal/middleware"
	"flock/internal/models"
	"flock/internal/repository"
	"flock/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds the Fiber app and all wired dependencies.
type Server struct {
	app *fiber.App
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client

	users repository.UserRepository

	graph        *service.GraphService
	interactions *service.InteractionService
	timeline     *service.TimelineService

	media media.Store
}

// NewServer constructs a Server with real infrastructure: postgres, Redis and
// the configured media store. Redis and media are optional; the server runs
// degraded without them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	var store media.Store
	if s3, err := media.NewS3Store(cfg); err == nil {
		store = s3
	} else {
		middleware.Logger.Warn("media store disabled", "reason", err.Error())
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), store), nil
}

// NewServerWithDeps constructs a Server from externally provided dependencies.
// Tests use it with an in-memory sqlite DB and a miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store media.Store) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "flock",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	posts := repository.NewPostRepository(db)

	s := &Server{
		app:          app,
		cfg:          cfg,
		db:           db,
		rdb:          rdb,
		users:        users,
		graph:        service.NewGraphService(users, follows),
		interactions: service.NewInteractionService(posts),
		timeline:     service.NewTimelineService(posts, users),
		media:        store,
	}

	s.SetupMiddleware()
	s.SetupRoutes()
	return s
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware registers the global middleware chain.
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(helmet.New())
	s.app.Use(requestid.New())
	s.app.Use(middleware.ContextMiddleware())
	s.app.Use(middleware.StructuredLogger())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	prom := middleware.InitMetrics("flock")
	prom.RegisterAt(s.app, "/metrics")
	s.app.Use(middleware.MetricsMiddleware(prom))
}

// SetupRoutes registers all HTTP routes.
func (s *Server) SetupRoutes() {
	s.app.Get("/health/live", s.HealthLive)
	s.app.Get("/health/ready", s.HealthReady)

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.rdb, 5, time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.rdb, 10, time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired, s.Logout)

	// Public reads resolve the viewer when a token is present and fall back
	// to anonymous otherwise.
	api.Get("/posts/search", s.SearchPosts)
	api.Get("/posts/:id", s.GetPost)
	api.Get("/posts/:id/thread", s.GetThread)
	api.Get("/users/search", s.SearchUsers)
	api.Get("/users/:id/posts", s.GetUserPosts)
	api.Get("/users/:id/followers", s.GetFollowers)
	api.Get("/users/:id/following", s.GetFollowing)
	api.Get("/profiles/:username", s.GetProfile)

	// Authenticated routes.
	api.Get("/timeline", s.AuthRequired, s.GetTimeline)
	api.Post("/posts", s.AuthRequired, middleware.RateLimit(s.rdb, 30, time.Minute, "post"), s.CreatePost)
	api.Delete("/posts/:id", s.AuthRequired, s.DeletePost)
	api.Post("/posts/:id/like", s.AuthRequired, s.ToggleLike)
	api.Post("/posts/:id/repost", s.AuthRequired, s.ToggleRepost)
	api.Put("/posts/:id/pin", s.AuthRequired, s.PinPost)
	api.Post("/users/:id/follow", s.AuthRequired, s.ToggleFollow)
	api.Get("/users/suggestions", s.AuthRequired, s.GetSuggestions)
	api.Get("/users/me", s.AuthRequired, s.GetMe)
	api.Put("/users/me", s.AuthRequired, s.UpdateMe)
	api.Post("/media", s.AuthRequired, middleware.RateLimit(s.rdb, 10, time.Minute, "media"), s.UploadMedia)
}

// HealthLive reports process liveness.
func (s *Server) HealthLive(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HealthReady reports readiness of the backing stores.
func (s *Server) HealthReady(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "down"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// AuthRequired validates the bearer token, rejects blacklisted tokens and
// stores the authenticated user ID in locals.
func (s *Server) AuthRequired(c *fiber.Ctx) error {
	userID, err := s.userIDFromToken(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	c.Locals("userID", userID)
	ctx := c.UserContext()
	c.SetUserContext(contextWithUserID(ctx, userID))
	return c.Next()
}

// optionalUserID resolves the viewer from a bearer token when one is present.
// Missing or invalid tokens yield the anonymous viewer.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	userID, err := s.userIDFromToken(c)
	if err != nil {
		return 0
	}
	return userID
}

func (s *Server) userIDFromToken(c *fiber.Ctx) (uint, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, models.NewUnauthorizedError("Missing authorization header")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return 0, models.NewUnauthorizedError("Invalid authorization header")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	if s.isTokenBlacklisted(c, claims.ID) {
		return 0, models.NewUnauthorizedError("Token has been revoked")
	}

	var userID uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil || userID == 0 {
		return 0, models.NewUnauthorizedError("Invalid token subject")
	}
	return userID, nil
}

func (s *Server) isTokenBlacklisted(c *fiber.Ctx, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(c.UserContext(), blacklistKey(jti)).Result()
	if err != nil {
		middleware.RedisErrors.WithLabelValues("blacklist_check").Inc()
		return false
	}
	return n > 0
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	middleware.Logger.Info("Server starting", "port", s.cfg.Port)
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}
