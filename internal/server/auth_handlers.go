package server

import (
	"fmt"
	"time"

	"flock/internal/middleware"
	"flock/internal/models"
	"flock/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "flock-api"
	tokenAudience = "flock-client"
	tokenTTL      = 72 * time.Hour
)

func blacklistKey(jti string) string {
	return "jwt:blacklist:" + jti
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new user and returns a token for the created account.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	if err := validation.Username(req.Username); err != nil {
		return respondServiceError(c, err)
	}
	if err := validation.Email(req.Email); err != nil {
		return respondServiceError(c, err)
	}
	if err := validation.Password(req.Password); err != nil {
		return respondServiceError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
	}
	if err := s.users.Create(c.UserContext(), user); err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered", "username", user.Username)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token, "user": user})
}

// Login authenticates by email and password.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return respondServiceError(c, err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid email or password"))
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

// Logout blacklists the current token's jti until the token would expire.
func (s *Server) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	tokenString := authHeader[len("Bearer "):]

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token"))
	}

	if s.rdb != nil && claims.ID != "" && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := s.rdb.Set(c.UserContext(), blacklistKey(claims.ID), "1", ttl).Err(); err != nil {
				middleware.RedisErrors.WithLabelValues("blacklist_set").Inc()
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *Server) generateToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
