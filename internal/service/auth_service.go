package service

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/repository"
)

const (
	tokenTTL         = 30 * 24 * time.Hour
	minPasswordChars = 6
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

var (
	ErrUserExists         = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrEmailRequired      = fmt.Errorf("email is required: %w", ErrInvalid)
	ErrEmailInvalid       = fmt.Errorf("email is not valid: %w", ErrInvalid)
	ErrPasswordRequired   = fmt.Errorf("password is required: %w", ErrInvalid)
	ErrPasswordTooShort   = fmt.Errorf("password must be at least 6 characters: %w", ErrInvalid)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most 72 bytes: %w", ErrInvalid)
	ErrPasswordMismatch   = fmt.Errorf("passwords do not match: %w", ErrInvalid)
)

// User is the public view of an account.
type User struct {
	ID          int64  `json:"id,string"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Theme       string `json:"theme"`
	AvatarURL   string `json:"avatarUrl"`
}

type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	DisplayName     string
}

// AuthResponse is returned after a successful register, login or refresh.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	// Refresh issues a new token for the user of a still valid token.
	Refresh(ctx context.Context, token string) (*AuthResponse, error)
	CurrentUser(ctx context.Context, userID int64) (*User, error)
	// ValidateToken returns the user id carried by the token.
	ValidateToken(ctx context.Context, token string) (int64, error)
}

type authService struct {
	users      repository.UserRepository
	settings   repository.SettingsRepository
	onboarding OnboardingService
}

func NewAuthService(users repository.UserRepository, settings repository.SettingsRepository, onboarding OnboardingService) AuthService {
	return &authService{users: users, settings: settings, onboarding: onboarding}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := strings.TrimSpace(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}
	if utf8.RuneCountInString(input.Password) < minPasswordChars {
		return nil, ErrPasswordTooShort
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	user, err := s.users.Create(ctx, model.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Theme:        model.ThemeSystem,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Info("user registered", "module", "service", "action", "create", "resource", "user", "result", "ok", "user_id", user.ID)

	if s.onboarding != nil {
		s.onboarding.OnUserCreated(ctx, user.ID)
	}

	return s.respond(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("login rejected", "module", "service", "action", "login", "resource", "user", "result", "failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return s.respond(ctx, *user)
}

func (s *authService) Refresh(ctx context.Context, token string) (*AuthResponse, error) {
	userID, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.respond(ctx, user)
}

func (s *authService) CurrentUser(ctx context.Context, userID int64) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return toUser(user), nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (int64, error) {
	secret, err := s.signingKey(ctx)
	if err != nil {
		return 0, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) respond(ctx context.Context, user model.User) (*AuthResponse, error) {
	token, err := s.generateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: toUser(user)}, nil
}

func (s *authService) generateToken(ctx context.Context, userID int64) (string, error) {
	secret, err := s.signingKey(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// signingKey loads the HMAC key, creating it on first use.
func (s *authService) signingKey(ctx context.Context) ([]byte, error) {
	setting, err := s.settings.Get(ctx, model.SettingJWTSecret)
	if err != nil {
		return nil, fmt.Errorf("load jwt secret: %w", err)
	}
	value := ""
	if setting != nil {
		value = setting.Value
	}
	if value == "" {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		value, err = s.settings.SetIfAbsent(ctx, model.SettingJWTSecret, hex.EncodeToString(raw))
		if err != nil {
			return nil, fmt.Errorf("save jwt secret: %w", err)
		}
	}
	secret, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode jwt secret: %w", err)
	}
	return secret, nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailInvalid
	}
	return nil
}

func toUser(user model.User) *User {
	return &User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Theme:       user.Theme,
		AvatarURL:   gravatarURL(user.Email),
	}
}

func gravatarURL(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=mp&s=80", hex.EncodeToString(hash[:]))
}
