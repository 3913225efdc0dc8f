package services

import (
	"context"
	"errors"
	"testing"

	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	hashes    map[string]string
	findErr   error
	createErr error
	created   int
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*models.User{}, hashes: map[string]string{}}
}

func (m *mockAuthRepo) add(t *testing.T, user *models.User, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	m.users[user.Username] = user
	m.hashes[user.Username] = string(hash)
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, user *models.User, hashedPassword string) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.created++
	user.ID = int64(len(m.users) + 1)
	user.IsActive = true
	m.users[user.Username] = user
	m.hashes[user.Username] = hashedPassword
	return user.ID, nil
}

func (m *mockAuthRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) {
	if m.findErr != nil {
		return nil, "", m.findErr
	}
	u, ok := m.users[username]
	if !ok {
		return nil, "", repositories.ErrNotFound
	}
	return u, m.hashes[username], nil
}

func (m *mockAuthRepo) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func TestLoginUser_IssuesScopedToken(t *testing.T) {
	repo := newMockAuthRepo()
	gym := "G1"
	repo.add(t, &models.User{ID: 3, Username: "owner", Role: models.RoleAdmin, GymID: &gym, IsActive: true}, "pa55word")
	svc := NewAuthService(repo)

	resp, err := svc.LoginUser(context.Background(), LoginRequest{Username: "owner", Password: "pa55word"})
	require.NoError(t, err)
	assert.Equal(t, "owner", resp.User.Username)

	claims, err := utils.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "G1", claims.GymID)
	assert.Empty(t, claims.BranchID)
}

func TestLoginUser_Failures(t *testing.T) {
	repo := newMockAuthRepo()
	repo.add(t, &models.User{ID: 1, Username: "active", Role: models.RoleStaff, IsActive: true}, "right")
	repo.add(t, &models.User{ID: 2, Username: "disabled", Role: models.RoleStaff, IsActive: false}, "right")
	svc := NewAuthService(repo)
	ctx := context.Background()

	_, err := svc.LoginUser(ctx, LoginRequest{Username: "active", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.LoginUser(ctx, LoginRequest{Username: "disabled", Password: "right"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.LoginUser(ctx, LoginRequest{Username: "ghost", Password: "right"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.findErr = errors.New("db down")
	_, err = svc.LoginUser(ctx, LoginRequest{Username: "active", Password: "right"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserProfile(t *testing.T) {
	repo := newMockAuthRepo()
	repo.add(t, &models.User{ID: 9, Username: "coach", Role: models.RoleTrainer, IsActive: true}, "x")
	svc := NewAuthService(repo)

	user, err := svc.GetUserProfile(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "coach", user.Username)

	_, err = svc.GetUserProfile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureSuperAdmin(t *testing.T) {
	repo := newMockAuthRepo()
	svc := &authService{authRepo: repo, bcryptCost: bcrypt.MinCost}
	ctx := context.Background()

	created, err := svc.EnsureSuperAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureSuperAdmin(ctx, "root", "s3cret")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleSuperAdmin, repo.users["root"].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes["root"]), []byte("s3cret")))

	created, err = svc.EnsureSuperAdmin(ctx, "root", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, repo.created)
}

func TestEnsureSuperAdmin_LostRace(t *testing.T) {
	repo := newMockAuthRepo()
	repo.createErr = repositories.ErrDuplicateKey
	svc := &authService{authRepo: repo, bcryptCost: bcrypt.MinCost}

	created, err := svc.EnsureSuperAdmin(context.Background(), "root", "s3cret")
	require.NoError(t, err)
	assert.False(t, created)
}
