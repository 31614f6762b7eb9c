package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/user-directory/internal/model"
)

// AccountRepo persists account rows.  Every lookup excludes soft-deleted
// accounts; the tombstone is set by SoftDelete and never cleared here.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,name,email,password_hash,role,refresh_token_hash,created_at,updated_at,deleted_at"

// Create inserts an account and returns its ID.  Duplicate emails surface as
// ErrEmailExists (MySQL error 1062 on the unique index).
func (r *AccountRepo) Create(ctx context.Context, name, email, passwordHash, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, passwordHash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a non-deleted account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx,
		"SELECT "+accountColumns+" FROM users WHERE email=? AND deleted_at IS NULL LIMIT 1", email)
}

// GetByID fetches a non-deleted account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return r.getOne(ctx,
		"SELECT "+accountColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
}

func (r *AccountRepo) getOne(ctx context.Context, q string, arg any) (model.Account, error) {
	var (
		a       model.Account
		refresh sql.NullString
		deleted sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role,
		&refresh, &a.CreatedAt, &a.UpdatedAt, &deleted)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, err
	}
	if refresh.Valid {
		a.RefreshTokenHash = &refresh.String
	}
	if deleted.Valid {
		a.DeletedAt = &deleted.Time
	}
	return a, nil
}

// UpdateRefreshHash overwrites the account's single refresh token hash.  A nil
// hash clears the column and thereby revokes the active session.  This is a
// plain last-write-wins update: concurrent rotations are not serialized.
// Existence is checked by callers via GetByID; MySQL reports changed rather
// than matched rows, so a no-op update is indistinguishable from a miss here.
func (r *AccountRepo) UpdateRefreshHash(ctx context.Context, id uint64, hash *string) error {
	var v sql.NullString
	if hash != nil {
		v = sql.NullString{String: *hash, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=? AND deleted_at IS NULL",
		v, id)
	return err
}

// SoftDelete stamps the tombstone.  The row stays in place but disappears
// from every lookup and listing.
func (r *AccountRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET deleted_at=NOW() WHERE id=? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
