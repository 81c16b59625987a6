package services

import (
	"context"
	"testing"

	"github.com/codegen-studio/engine/internal/models"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, obj *models.User) error {
	args := m.Called(ctx, obj)
	if args.Error(0) == nil {
		obj.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id any, dest *models.User) error {
	return m.Called(ctx, id, dest).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, obj *models.User) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id any) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string, dest *models.User) error {
	args := m.Called(ctx, username, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		*dest = *args.Get(1).(*models.User)
	}
	return args.Error(0)
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewAuthService(repo, []byte("secret"))
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "ada" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")) == nil
	})).Return(nil).Once()

	u, err := svc.Register(context.Background(), " ada ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)
	repo.AssertExpectations(t)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := &mockUserRepository{}
	svc := NewAuthService(repo, []byte("secret"))
	repo.On("Create", mock.Anything, mock.Anything).Return(appErr.New(appErr.CodeAlreadyExists, "user already exists")).Once()

	_, err := svc.Register(context.Background(), "ada", "hunter22")
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestLoginIssuesToken(t *testing.T) {
	repo := &mockUserRepository{}
	secret := []byte("secret")
	svc := NewAuthService(repo, secret)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Username: "ada", PasswordHash: string(hash)}
	repo.On("GetByUsername", mock.Anything, "ada", mock.Anything).Return(nil, user)

	tok, got, err := svc.Login(context.Background(), "ada", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	parsed, err := jwt.Parse(tok, func(*jwt.Token) (any, error) { return secret, nil })
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), sub)

	_, _, err = svc.Login(context.Background(), "ada", "wrong")
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}
