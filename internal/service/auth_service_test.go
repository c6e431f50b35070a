package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jeancampos10/site-control-hub-api/internal/models"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
)

type authUserRepoStub struct {
	user    *models.User
	role    *models.UserRoleAssignment
	roleErr error
}

func (s *authUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authUserRepoStub) RoleFor(ctx context.Context, userID string) (*models.UserRoleAssignment, error) {
	if s.roleErr != nil {
		return nil, s.roleErr
	}
	return s.role, nil
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "joana@example.com",
		FullName:     "Joana Prado",
		PasswordHash: string(hash),
		Active:       true,
	}
}

func newAuthService(repo authUserRepository) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "site-control-hub",
	})
}

func TestAuthLoginAndValidate(t *testing.T) {
	repo := &authUserRepoStub{
		user: testUser(t, "s3nha-forte"),
		role: &models.UserRoleAssignment{UserID: "user-1", Role: models.RoleAdmin, Approved: true},
	}
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "joana@example.com",
		Password: "s3nha-forte",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, models.RoleAdmin, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "Joana Prado", claims.FullName)
}

func TestAuthLoginDefaultsRole(t *testing.T) {
	repo := &authUserRepoStub{user: testUser(t, "s3nha-forte"), roleErr: sql.ErrNoRows}
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "joana@example.com",
		Password: "s3nha-forte",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleOperator, resp.User.Role)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	repo := &authUserRepoStub{user: testUser(t, "s3nha-forte")}
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "joana@example.com",
		Password: "errada",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "desconhecida@example.com",
		Password: "s3nha-forte",
	})
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginRejectsInactiveAccount(t *testing.T) {
	user := testUser(t, "s3nha-forte")
	user.Active = false
	svc := newAuthService(&authUserRepoStub{user: user})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "joana@example.com",
		Password: "s3nha-forte",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&authUserRepoStub{})
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
