package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/query"
)

// SortableColumns is the allow-list of columns a client may sort accounts by.
// SearchableColumns is the allow-list used for substring search.  Both are
// declared here, next to the SQL that uses them, never derived from request
// input, so column and order clauses can only ever contain these values.
var (
	SortableColumns   = []string{"id", "name", "email", "role", "created_at", "updated_at"}
	SearchableColumns = []string{"name", "email"}
)

// DefaultSort is the column used when the client does not request a valid one.
const DefaultSort = "created_at"

// List runs the directory listing for one sanitized page.  It returns the
// page rows plus the total count of matching rows independent of the limit.
// The search term is bound as a parameter; p.Sort/p.Order were validated by
// query.Sanitize against the allow-lists above.
func (r *AccountRepo) List(ctx context.Context, p query.Params) ([]model.Account, int64, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}

	if p.Search != "" && len(SearchableColumns) > 0 {
		like := make([]string, 0, len(SearchableColumns))
		for _, col := range SearchableColumns {
			like = append(like, col+" LIKE ?")
			args = append(args, "%"+p.Search+"%")
		}
		where = append(where, "("+strings.Join(like, " OR ")+")")
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := "SELECT " + accountColumns + " FROM users WHERE " + cond +
		" ORDER BY " + p.Sort + " " + p.Order +
		" LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), p.Limit, p.Offset())

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Account, 0, p.Limit)
	for rows.Next() {
		var (
			a       model.Account
			refresh sql.NullString
			deleted sql.NullTime
		)
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role,
			&refresh, &a.CreatedAt, &a.UpdatedAt, &deleted); err != nil {
			return nil, 0, err
		}
		if refresh.Valid {
			a.RefreshTokenHash = &refresh.String
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
