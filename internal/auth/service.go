package auth

import (
	"context"
	"strings"
	"time"

	"beatsbook/internal/shared/config"
	"beatsbook/internal/users"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service handles authentication and account management.
type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error
	GetAccount(ctx context.Context, userID uuid.UUID) (*users.UserResponse, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, req *UpdateAccountRequest) (*users.UserResponse, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo  Repository
	cfg   *config.Config
	clock clock.Clock
	log   *logger.Logger
}

// NewService creates a new auth service
func NewService(repo Repository, cfg *config.Config, clk clock.Clock, log *logger.Logger) Service {
	return &service{repo: repo, cfg: cfg, clock: clk, log: log}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateIdentifier
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Username:      username,
		Email:         email,
		Password:      string(hashed),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		StreetAddress: strings.TrimSpace(req.StreetAddress),
		Role:          users.RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.log.LogAuthSuccess(ctx, user.ID.String(), "register")
	return &AuthResponse{User: user.ToResponse(), Tokens: tokens}, nil
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			s.log.LogAuthFailure(ctx, email, "user not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.log.LogAuthFailure(ctx, email, "wrong password")
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.log.LogAuthSuccess(ctx, user.ID.String(), "login")
	return &AuthResponse{User: user.ToResponse(), Tokens: tokens}, nil
}

func (s *service) Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidRefreshToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		return nil, ErrInvalidRefreshToken
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.generateTokenPair(user)
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	return s.repo.Update(ctx, user)
}

func (s *service) GetAccount(ctx context.Context, userID uuid.UUID) (*users.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *service) UpdateAccount(ctx context.Context, userID uuid.UUID, req *UpdateAccountRequest) (*users.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := user.Email
	username := user.Username
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}

	if email != user.Email || username != user.Username {
		exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateIdentifier
		}
	}

	user.Email = email
	user.Username = username
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.ContactNumber != nil {
		user.ContactNumber = strings.TrimSpace(*req.ContactNumber)
	}
	if req.StreetAddress != nil {
		user.StreetAddress = strings.TrimSpace(*req.StreetAddress)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Delete(ctx, userID)
}

// generateTokenPair issues a short-lived access token and a longer-lived
// refresh token for the given user.
func (s *service) generateTokenPair(user *users.User) (*TokenPair, error) {
	now := s.clock.Now()

	accessClaims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    string(user.Role),
		"type":    "access",
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.JWT.JWTExpiresIn).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"type":    "refresh",
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.JWT.RefreshExpiresIn).Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.JWTExpiresIn / time.Second),
		TokenType:    "Bearer",
	}, nil
}
