package usecase

import (
	"fmt"
	"testing"

	"postpilot/pkg/jwt"
	"postpilot/pkg/logger"
	"postpilot/services/auth/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of persistent.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "user-1"
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func newAuthUseCase(repo *MockUserRepository) AuthUseCase {
	return NewAuthUseCase(repo, jwt.NewService("test-secret"), nil, logger.New())
}

func TestRegister(t *testing.T) {
	repo := new(MockUserRepository)
	uc := newAuthUseCase(repo)

	repo.On("GetByEmail", "new@example.com").Return(nil, fmt.Errorf("record not found"))
	repo.On("GetByUsername", "newuser").Return(nil, fmt.Errorf("record not found"))
	repo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	user, token, err := uc.Register("new@example.com", "newuser", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, entity.RoleCreator, user.Role)
	assert.Empty(t, user.Password)
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	uc := newAuthUseCase(repo)

	existing := &entity.User{ID: "user-1", Email: "taken@example.com"}
	repo.On("GetByEmail", "taken@example.com").Return(existing, nil)

	_, _, err := uc.Register("taken@example.com", "newuser", "password123")
	assert.ErrorContains(t, err, "already exists")
	repo.AssertNotCalled(t, "Create")
}

func TestLogin(t *testing.T) {
	repo := new(MockUserRepository)
	uc := newAuthUseCase(repo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &entity.User{
		ID:       "user-1",
		Email:    "user@example.com",
		Password: string(hashed),
		Role:     entity.RoleCreator,
		IsActive: true,
	}
	repo.On("GetByEmail", "user@example.com").Return(user, nil)

	got, token, err := uc.Login("user@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", got.ID)

	// Token must round-trip through the JWT service
	claims, err := jwt.NewService("test-secret").ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	uc := newAuthUseCase(repo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &entity.User{ID: "user-1", Email: "user@example.com", Password: string(hashed), IsActive: true}
	repo.On("GetByEmail", "user@example.com").Return(user, nil)

	_, _, err := uc.Login("user@example.com", "wrong")
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	repo := new(MockUserRepository)
	uc := newAuthUseCase(repo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &entity.User{ID: "user-1", Email: "user@example.com", Password: string(hashed), IsActive: false}
	repo.On("GetByEmail", "user@example.com").Return(user, nil)

	_, _, err := uc.Login("user@example.com", "password123")
	assert.ErrorContains(t, err, "deactivated")
}

func TestGetUser_StripsPassword(t *testing.T) {
	repo := new(MockUserRepository)
	uc := newAuthUseCase(repo)

	repo.On("GetByID", "user-1").Return(&entity.User{ID: "user-1", Password: "hash"}, nil)

	user, err := uc.GetUser("user-1")
	assert.NoError(t, err)
	assert.Empty(t, user.Password)
}
