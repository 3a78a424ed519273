package processor

import (
	"context"

	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
)

// AuthStore defines the database operations required by AuthProcessor
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (store.User, error)
	CreateUser(ctx context.Context, email, hashedPassword string) (store.User, error)
}
