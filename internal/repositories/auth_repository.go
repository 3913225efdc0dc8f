package repositories

import (
	"context"
	"fmt"
	"time"

	"gym_backend/internal/models"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	CreateUser(ctx context.Context, user *models.User, hashedPassword string) (int64, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// authRepository implements the AuthRepository interface.
type authRepository struct {
	db SQLExecutor
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db SQLExecutor) AuthRepository {
	return &authRepository{db: db}
}

const userColumns = `id, username, password_hash, email, full_name, role, gym_id, branch_id, is_active, created_at, updated_at`

// CreateUser inserts a new active user and returns its id.
func (r *authRepository) CreateUser(ctx context.Context, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, role, gym_id, branch_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $8)
	          RETURNING id`

	var userID int64
	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		hashedPassword,
		user.Email,    // Can be nil
		user.FullName, // Can be nil
		user.Role,
		user.GymID,    // Can be nil
		user.BranchID, // Can be nil
		time.Now().UTC(),
	).Scan(&userID)
	if err != nil {
		return 0, wrapDBError(err, "creating user")
	}
	return userID, nil
}

// FindUserByUsername retrieves a user by their username.
// It returns the user model, their hashed password, and an error if any.
func (r *authRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, string, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, "", wrapDBError(err, fmt.Sprintf("finding user by username %s", username))
	}
	hash := user.PasswordHash
	user.PasswordHash = ""
	return user, hash, nil
}

// FindUserByID retrieves a user by their ID.
func (r *authRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("finding user by ID %d", userID))
	}
	// The hash is selected with the rest of the row but never leaves the repository here.
	user.PasswordHash = ""
	return user, nil
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.FullName,
		&user.Role, &user.GymID, &user.BranchID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
