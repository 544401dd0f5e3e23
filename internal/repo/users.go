package repo

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    Date
}

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    Date   `db:"created_at"`
}

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

// Create stores a new user. It returns internal.ErrEmailTaken if the email is
// already registered.
func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	row := userRow{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    NewDate(time.Now()),
	}

	_, err := executor(r.db).Insert("users").Rows(row).Executor().ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, internal.ErrEmailTaken
		}
		log.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	log.Info().Str("user_id", row.ID).Msg("user created")
	return row.toDomain(), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, goqu.Ex{"email": email})
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, goqu.Ex{"id": id})
}

func (r *UsersRepo) getBy(ctx context.Context, where goqu.Ex) (*User, error) {
	var row userRow
	found, err := executor(r.db).From("users").
		Select("id", "email", "password_hash", "created_at").
		Where(where).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, internal.ErrUserNotFound
	}
	return row.toDomain(), nil
}

func (r *userRow) toDomain() *User {
	return &User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
