package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	models "github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, user *models.User, token string) error
	LogoutAll(ctx context.Context, user *models.User) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type userService struct {
	repo        repository.UserRepository
	rateLimiter repository.RateLimitRepository
	jwtKey      []byte
}

// NewUserService wires the user directory. rateLimiter may be nil, in which
// case logins are not throttled.
func NewUserService(repo repository.UserRepository, rateLimiter repository.RateLimitRepository, jwtKey []byte) UserService {
	return &userService{
		repo:        repo,
		rateLimiter: rateLimiter,
		jwtKey:      jwtKey,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.Tokens = []string{token}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.DuplicateEntryError("Email already registered").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to create user").WithError(err)
	}

	return &models.AuthResponse{User: user, Token: token}, nil

}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {

	logger := middleware.LoggerFromContext(ctx)

	if s.rateLimiter != nil {
		allowed, _, retryAfter, err := s.rateLimiter.CheckLoginRateLimit(ctx, req.Email)
		if err != nil {
			// the limiter is best effort; a redis outage must not lock everyone out
			logger.Warn("Login rate limit check failed, continuing without it", slog.String("error", err.Error()))
		} else if !allowed {
			return nil, appErrors.TooManyRequestsError("Too many login attempts. Please try again later.").
				WithDetail(fmt.Sprintf("retry_after=%d", retryAfter))
		}
	}

	// unknown email and wrong password produce the same error
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, appErrors.LoginFailedError().WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch user").WithError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, appErrors.LoginFailedError().WithError(err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddToken(ctx, user.ID, token); err != nil {
		return nil, appErrors.DatabaseError("Failed to start session").WithError(err)
	}

	user.Tokens = append(user.Tokens, token)

	return &models.AuthResponse{User: user, Token: token}, nil

}

func (s *userService) Logout(ctx context.Context, user *models.User, token string) error {

	if err := s.repo.RemoveToken(ctx, user.ID, token); err != nil {
		return appErrors.DatabaseError("Failed to end session").WithError(err)
	}

	return nil

}

func (s *userService) LogoutAll(ctx context.Context, user *models.User) error {

	if err := s.repo.ClearTokens(ctx, user.ID); err != nil {
		return appErrors.DatabaseError("Failed to end sessions").WithError(err)
	}

	return nil

}

// Authenticate accepts a token only if its signature is valid and it is still
// one of the embedded user's active sessions. Every failure is the same 401.
func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {

	if token == "" {
		return nil, appErrors.AuthenticationRequired()
	}

	claims := &models.Claims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, appErrors.AuthenticationRequired().WithError(err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, appErrors.AuthenticationRequired().WithError(err)
	}

	user, err := s.repo.GetUserByToken(ctx, userID, token)
	if err != nil {
		return nil, appErrors.AuthenticationRequired().WithError(err)
	}

	return user, nil

}

func (s *userService) issueToken(userID uuid.UUID) (string, error) {

	claims := &models.Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtKey)
	if err != nil {
		return "", appErrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return token, nil

}
