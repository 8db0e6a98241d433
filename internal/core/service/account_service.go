package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sosalert/sos-service/internal/core/domain"
	"github.com/sosalert/sos-service/internal/core/ports"
	"github.com/sosalert/sos-service/internal/metrics"
)

// bcryptMaxInput is the longest password bcrypt accepts.
const bcryptMaxInput = 72

// AccountService implements registration and credential checks.
type AccountService struct {
	repo     ports.AccountRepository
	log      zerolog.Logger
	hashCost int
	// dummyHash is compared against when the username is unknown so both
	// failure paths spend the same bcrypt time.
	dummyHash []byte
}

func NewAccountService(repo ports.AccountRepository, log zerolog.Logger) *AccountService {
	return newAccountService(repo, log, bcrypt.DefaultCost)
}

func newAccountService(repo ports.AccountRepository, log zerolog.Logger, cost int) *AccountService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("sos-dummy-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("account service: dummy hash: %v", err))
	}
	return &AccountService{repo: repo, log: log, hashCost: cost, dummyHash: dummy}
}

// Register stores a new user with a hashed password and a normalized
// contact number. A taken username yields domain.ErrUsernameTaken and leaves
// storage untouched.
func (s *AccountService) Register(ctx context.Context, username, password, contact string) (*domain.User, error) {
	if username == "" || password == "" || contact == "" {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: username, password and contact are required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.hashCost)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:      username,
		PasswordHash:  string(hash),
		ContactNumber: domain.NormalizeContact(contact),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			metrics.RegistrationsTotal.WithLabelValues("username_taken").Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register %q: %w", username, err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Authenticate returns the user when password matches the stored hash.
// Unknown usernames and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, bcryptInput(password))
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), bcryptInput(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

func (s *AccountService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// bcryptInput returns the bytes handed to bcrypt. Passwords over the bcrypt
// limit are reduced to the base64 of their SHA-256 digest (44 bytes), so
// every byte still counts.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
