package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
	"golang.org/x/crypto/argon2"
)

type AuthService struct {
	store     repository.Store
	jwtSecret []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewAuthService(store repository.Store, jwtSecret string, expiresIn time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,password"`
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Account is a user together with its profile.
type Account struct {
	ID         int64             `json:"id"`
	Email      string            `json:"email"`
	Membership domain.Membership `json:"membership"`
	Profile    *domain.Profile   `json:"profile"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  *Account `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Membership:   domain.MembershipFree,
	}
	display := first + " " + last
	profile := &domain.Profile{
		FirstName:   first,
		LastName:    last,
		DisplayName: &display,
		IsVisible:   true,
	}

	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Users().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailTaken
		}

		if err := repos.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return fmt.Errorf("creating user: %w", err)
		}

		profile.UserID = user.ID
		if err := repos.Profiles().Create(ctx, profile); err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	profile.Membership = user.Membership
	profile.Hashtags = []domain.Hashtag{}
	return &AuthResponse{
		Token: token,
		User:  &Account{ID: user.ID, Email: user.Email, Membership: user.Membership, Profile: profile},
	}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	profile, err := loadProfile(ctx, s.store, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &Account{ID: user.ID, Email: user.Email, Membership: user.Membership, Profile: profile},
	}, nil
}

// Me returns the caller's account with the full profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (*Account, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile, err := loadProfile(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	return &Account{ID: user.ID, Email: user.Email, Membership: user.Membership, Profile: profile}, nil
}

// Identify validates token and loads the caller. Deactivated or missing users
// are rejected.
func (s *AuthService) Identify(ctx context.Context, token string) (*domain.Identity, error) {
	userID, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	return &domain.Identity{
		ID:         user.ID,
		Email:      user.Email,
		Membership: user.Membership,
		IsActive:   user.IsActive,
	}, nil
}

func (s *AuthService) generateToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parseToken(tokenStr string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	return fmt.Sprintf("%s:%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyPassword(password, encoded string) bool {
	saltB64, hashB64, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}
