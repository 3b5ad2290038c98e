package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Employee roles, least to most privileged (driver sits outside the
// back-office hierarchy and only appears on the dispatch board).
const (
	RoleDriver  = "driver"
	RoleStaff   = "staff"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

func validRole(role string) bool {
	switch role {
	case RoleDriver, RoleStaff, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CreateUserInput carries a new employee account. The plaintext password is
// hashed before it touches the database.
type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserService manages employee accounts and credential checks.
type UserService interface {
	// Authenticate verifies username/password against the stored bcrypt
	// hash. Unknown users and bad passwords return the same error so the
	// login form cannot be used to enumerate accounts.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	Create(ctx context.Context, in CreateUserInput) (*User, error)
	List(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, userID int, role string) error
	Deactivate(ctx context.Context, userID int) error
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = "id, username, email, password_hash, role, is_active, created_at"

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

var errBadCredentials = validationf("invalid username or password")

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 AND is_active = true
		LIMIT 1`,
		username,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// Burn a hash compare anyway to keep timing uniform.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errBadCredentials
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundf("user id=%d", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load user id=%d: %w", userID, err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" {
		return nil, validationf("username and email are required")
	}
	if len(in.Password) < 8 {
		return nil, validationf("password must be at least 8 characters")
	}
	if !validRole(in.Role) {
		return nil, validationf("unknown role %q", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		in.Username, in.Email, string(hash), in.Role,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("username or email already taken")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *userService) SetRole(ctx context.Context, userID int, role string) error {
	if !validRole(role) {
		return validationf("unknown role %q", role)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET role = $1 WHERE id = $2", role, userID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundf("user id=%d", userID)
	}
	return nil
}

func (s *userService) Deactivate(ctx context.Context, userID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET is_active = false WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundf("user id=%d", userID)
	}
	return nil
}
