package processor

import (
	"context"
	"errors"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrFailedSignup       = errors.New("failed to sign up user")
	ErrFailedLogin        = errors.New("failed to log in user")
)

type AuthProcessor struct {
	store     AuthStore
	jwtSecret string
	logger    *observability.Logger
}

func New(authStore AuthStore, jwtSecret string, logger *observability.Logger) AuthProcessor {
	return AuthProcessor{
		store:     authStore,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// User is the public view of a dashboard user.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func (p *AuthProcessor) Signup(ctx context.Context, email, password string) (User, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "email", Value: email})

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		p.logger.Error(ctx, "failed to hash password", err)
		return User{}, ErrFailedSignup
	}

	user, err := p.store.CreateUser(ctx, email, string(hashedPassword))
	if err != nil {
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return User{}, ErrEmailAlreadyExists
		}
		p.logger.Error(ctx, "failed to create user", err)
		return User{}, ErrFailedSignup
	}

	p.logger.Info(ctx, "user signed up")
	return User{ID: user.ID, Email: user.Email}, nil
}

func (p *AuthProcessor) Login(ctx context.Context, email, password string) (string, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "email", Value: email})

	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		p.logger.Error(ctx, "failed to get user by email", err)
		return "", ErrFailedLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := p.generateJWTToken(ctx, user)
	if err != nil {
		return "", ErrFailedLogin
	}
	return token, nil
}

func (p *AuthProcessor) GetUser(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := p.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, ErrUserNotFound
		}
		p.logger.Error(ctx, "failed to get user by id", err)
		return User{}, err
	}
	return User{ID: user.ID, Email: user.Email}, nil
}
