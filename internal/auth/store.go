package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// UserRecord is a stored author account, password hash included.
type UserRecord struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

// UserStore persists author accounts. Create returns ErrEmailTaken for a
// duplicate email; the getters return ErrUserNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, u UserRecord) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
}

// PGUserStore keeps users in Postgres.
type PGUserStore struct {
	pool *pgxpool.Pool
}

func NewPGUserStore(pool *pgxpool.Pool) *PGUserStore {
	return &PGUserStore{pool: pool}
}

const userColumns = `id, email, password, display_name, created_at`

func scanUser(row pgx.Row) (UserRecord, error) {
	var u UserRecord
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserRecord{}, ErrUserNotFound
	}
	return u, err
}

func (s *PGUserStore) CreateUser(ctx context.Context, u UserRecord) (UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		u.ID, u.Email, u.Password, u.DisplayName)
	created, err := scanUser(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (s *PGUserStore) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PGUserStore) GetUserByID(ctx context.Context, id string) (UserRecord, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
