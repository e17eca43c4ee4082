package authenticating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adtech-analytics-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adtech-analytics-api/internal/config"
	"github.com/vfg2006/adtech-analytics-api/internal/domain"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.Auth{
			Secret:             "segredo-de-teste",
			TokenExpireMinutes: 60,
		},
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestService_CreateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	service := NewService(userRepo, testConfig())

	userRepo.EXPECT().
		GetUserByEmail(gomock.Any(), "analista@empresa.com").
		Return(nil, nil)

	userRepo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user *domain.User) (*domain.User, error) {
			// A senha nunca é persistida em texto puro
			assert.NotEqual(t, "senha123", user.PasswordHash)
			assert.Equal(t, domain.RoleAnalyst, user.RoleID)
			assert.True(t, user.Active)

			user.ID = 1
			return user, nil
		})

	user, err := service.CreateUser(context.Background(), &domain.User{
		Name:         "Analista",
		Email:        " Analista@Empresa.com ",
		PasswordHash: "senha123",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "analista@empresa.com", user.Email)
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	service := NewService(userRepo, testConfig())

	userRepo.EXPECT().
		GetUserByEmail(gomock.Any(), "analista@empresa.com").
		Return(&domain.User{ID: 1}, nil)

	user, err := service.CreateUser(context.Background(), &domain.User{
		Name:         "Analista",
		Email:        "analista@empresa.com",
		PasswordHash: "senha123",
	})

	assert.Nil(t, user)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestService_CreateUser_MissingData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	service := NewService(userRepo, testConfig())

	user, err := service.CreateUser(context.Background(), &domain.User{Email: "a@b.com"})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrMissingRequiredData)
}

func TestService_LoginUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	service := NewService(userRepo, testConfig())

	storedUser := &domain.User{
		ID:           1,
		Name:         "Analista",
		Email:        "analista@empresa.com",
		PasswordHash: hashPassword(t, "senha123"),
		RoleID:       domain.RoleAnalyst,
		Active:       true,
	}

	userRepo.EXPECT().
		GetUserByEmail(gomock.Any(), "analista@empresa.com").
		Return(storedUser, nil)

	token, err := service.LoginUser(context.Background(), "Analista@Empresa.com", "senha123")

	require.NoError(t, err)
	require.NotEmpty(t, token)

	// O token emitido precisa ser aceito pela própria validação
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "analista@empresa.com", claims.UserEmail)
	assert.Equal(t, domain.RoleAnalyst, claims.UserRoleID)
}

func TestService_LoginUser_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name        string
		storedUser  *domain.User
		password    string
		expectedErr error
	}{
		{
			name:        "Usuário inexistente",
			storedUser:  nil,
			password:    "senha123",
			expectedErr: ErrInvalidCredentials,
		},
		{
			name: "Senha incorreta",
			storedUser: &domain.User{
				Email:        "analista@empresa.com",
				PasswordHash: "$2a$04$invalidhashinvalidhashinvalidhashinvalidhashinvalid",
				Active:       true,
			},
			password:    "senha-errada",
			expectedErr: ErrInvalidCredentials,
		},
		{
			name: "Usuário desativado",
			storedUser: &domain.User{
				Email:        "analista@empresa.com",
				PasswordHash: "qualquer",
				Active:       false,
			},
			password:    "senha123",
			expectedErr: ErrUserDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userRepo := mocks.NewMockUserRepository(ctrl)
			service := NewService(userRepo, testConfig())

			userRepo.EXPECT().
				GetUserByEmail(gomock.Any(), "analista@empresa.com").
				Return(tt.storedUser, nil)

			token, err := service.LoginUser(context.Background(), "analista@empresa.com", tt.password)

			assert.Empty(t, token)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestService_ValidateToken_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	service := NewService(userRepo, testConfig())

	claims, err := service.ValidateToken("nem-de-longe-um-jwt")

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)

	issuer := NewService(userRepo, testConfig())

	otherCfg := testConfig()
	otherCfg.Auth.Secret = "outro-segredo"
	verifier := NewService(userRepo, otherCfg)

	userRepo.EXPECT().
		GetUserByEmail(gomock.Any(), "analista@empresa.com").
		Return(&domain.User{
			ID:           1,
			Email:        "analista@empresa.com",
			PasswordHash: hashPassword(t, "senha123"),
			Active:       true,
		}, nil)

	token, err := issuer.LoginUser(context.Background(), "analista@empresa.com", "senha123")
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(token)

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_GetUserProfile_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userRepo := mocks.NewMockUserRepository(ctrl)
	service := NewService(userRepo, testConfig())

	userRepo.EXPECT().
		GetUserByID(gomock.Any(), 42).
		Return(nil, nil)

	user, err := service.GetUserProfile(context.Background(), 42)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
