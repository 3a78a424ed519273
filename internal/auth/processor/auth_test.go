package processor

import (
	"context"
	"testing"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockAuthStore is a mock implementation of AuthStore
type MockAuthStore struct {
	mock.Mock
}

func (m *MockAuthStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(store.User), args.Error(1)
}

func (m *MockAuthStore) GetUserByID(ctx context.Context, userID uuid.UUID) (store.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(store.User), args.Error(1)
}

func (m *MockAuthStore) CreateUser(ctx context.Context, email, hashedPassword string) (store.User, error) {
	args := m.Called(ctx, email, hashedPassword)
	return args.Get(0).(store.User), args.Error(1)
}

func TestSignup_Success(t *testing.T) {
	mockStore := new(MockAuthStore)
	logger := observability.NewLogger()
	processor := New(mockStore, "secret", logger)

	userID := uuid.New()
	mockStore.On("CreateUser", mock.Anything, "ops@example.com", mock.MatchedBy(func(hashed string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hashed), []byte("correct horse")) == nil
	})).Return(store.User{ID: userID, Email: "ops@example.com"}, nil)

	user, err := processor.Signup(context.Background(), "ops@example.com", "correct horse")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "ops@example.com", user.Email)
	mockStore.AssertExpectations(t)
}

func TestSignup_EmailExists(t *testing.T) {
	mockStore := new(MockAuthStore)
	logger := observability.NewLogger()
	processor := New(mockStore, "secret", logger)

	mockStore.On("CreateUser", mock.Anything, "ops@example.com", mock.Anything).
		Return(store.User{}, store.ErrEmailAlreadyExists)

	_, err := processor.Signup(context.Background(), "ops@example.com", "correct horse")

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	mockStore := new(MockAuthStore)
	logger := observability.NewLogger()
	processor := New(mockStore, "secret", logger)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	userID := uuid.New()
	mockStore.On("GetUserByEmail", mock.Anything, "ops@example.com").
		Return(store.User{ID: userID, Email: "ops@example.com", HashedPassword: string(hashed)}, nil)

	token, err := processor.Login(context.Background(), "ops@example.com", "correct horse")

	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := processor.ValidateJWTToken(context.Background(), token)
	require.NoError(t, err)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, userID.String(), sub)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockStore := new(MockAuthStore)
	logger := observability.NewLogger()
	processor := New(mockStore, "secret", logger)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mockStore.On("GetUserByEmail", mock.Anything, "ops@example.com").
		Return(store.User{ID: uuid.New(), HashedPassword: string(hashed)}, nil)

	_, err = processor.Login(context.Background(), "ops@example.com", "battery staple")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mockStore := new(MockAuthStore)
	logger := observability.NewLogger()
	processor := New(mockStore, "secret", logger)

	mockStore.On("GetUserByEmail", mock.Anything, "nobody@example.com").
		Return(store.User{}, store.ErrNotFound)

	_, err := processor.Login(context.Background(), "nobody@example.com", "whatever1")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateJWTToken_WrongSecret(t *testing.T) {
	mockStore := new(MockAuthStore)
	logger := observability.NewLogger()
	issuer := New(mockStore, "secret-a", logger)
	verifier := New(mockStore, "secret-b", logger)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mockStore.On("GetUserByEmail", mock.Anything, "ops@example.com").
		Return(store.User{ID: uuid.New(), HashedPassword: string(hashed)}, nil)

	token, err := issuer.Login(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)

	_, err = verifier.ValidateJWTToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrParseJWTToken)
}
