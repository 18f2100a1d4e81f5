// Package accounts registers users and checks their credentials.
package accounts

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/geocoder89/listinghub/internal/apperr"
	"github.com/geocoder89/listinghub/internal/domain/user"
	"github.com/geocoder89/listinghub/internal/security"
)

const (
	MinPasswordLen = 6

	// users.name VARCHAR(120), users.email VARCHAR(160)
	MaxNameLen  = 120
	MaxEmailLen = 160
)

var (
	ErrRegisterFieldsRequired = apperr.Validation("Name, email and password are required")
	ErrLoginFieldsRequired    = apperr.Validation("Email and password are required")
	ErrInvalidEmail           = apperr.Validation("Invalid email")
	ErrNameTooLong            = apperr.Validation("Name must be at most 120 characters")
	ErrEmailTooLong           = apperr.Validation("Email must be at most 160 characters")
	ErrPasswordTooShort       = apperr.Validation("Password must be at least 6 characters")
	ErrPasswordTooLong        = apperr.Validation("Password must be at most 72 bytes")
)

// local@domain.tld, nothing stricter
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

type UserRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type Service struct {
	users    UserRepository
	hashCost int

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users UserRepository, hashCost int) *Service {
	return &Service{users: users, hashCost: hashCost}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (user.User, error) {
	if name == "" || email == "" || password == "" {
		return user.User{}, ErrRegisterFieldsRequired
	}

	if utf8.RuneCountInString(name) > MaxNameLen {
		return user.User{}, ErrNameTooLong
	}

	if utf8.RuneCountInString(email) > MaxEmailLen {
		return user.User{}, ErrEmailTooLong
	}

	if !emailPattern.MatchString(email) {
		return user.User{}, ErrInvalidEmail
	}

	if utf8.RuneCountInString(password) < MinPasswordLen {
		return user.User{}, ErrPasswordTooShort
	}

	if len(password) > security.MaxPasswordBytes {
		return user.User{}, ErrPasswordTooLong
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return user.User{}, err
	}

	if exists {
		return user.User{}, user.ErrEmailTaken
	}

	hash, err := security.HashPasswordWithCost(password, s.hashCost)
	if err != nil {
		return user.User{}, err
	}

	// a concurrent registration can pass the check above; the repo maps the
	// unique violation to ErrEmailTaken
	return s.users.Create(ctx, name, email, hash)
}

func (s *Service) VerifyLogin(ctx context.Context, email, password string) (user.User, error) {
	if email == "" || password == "" {
		return user.User{}, ErrLoginFieldsRequired
	}

	found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// spend the same bcrypt work as a real comparison
			_ = security.CheckPassword(s.fallbackHash(), password)
			return user.User{}, user.ErrInvalidCredentials
		}
		return user.User{}, err
	}

	if err := security.CheckPassword(found.PasswordHash, password); err != nil {
		return user.User{}, user.ErrInvalidCredentials
	}

	return found, nil
}

func (s *Service) Profile(ctx context.Context, id int64) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := security.HashPasswordWithCost(strings.Repeat("x", MinPasswordLen), s.hashCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
