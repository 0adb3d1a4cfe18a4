package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

const userColumns = `id, username, email, display_name, bio, avatar_url, is_private, is_verified, is_admin, password_hash, created_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (types.User, error) {
	var user types.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.Bio,
		&user.AvatarURL,
		&user.IsPrivate,
		&user.IsVerified,
		&user.IsAdmin,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// ExistsByUsernameOrEmail reports whether either identifier is taken.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	const query = `
		INSERT INTO users (id, username, email, password_hash, display_name, bio, avatar_url, is_private, is_verified, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.Bio,
		user.AvatarURL,
		user.IsPrivate,
		user.IsVerified,
		user.IsAdmin,
	).Scan(&user.CreatedAt); err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update to the user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update types.ProfileUpdate) error {
	if update.Empty() {
		return nil
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if update.IsPrivate != nil {
		add("is_private", *update.IsPrivate)
	}
	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return r.execOne(ctx, query, args...)
}

func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches q case-insensitively as a substring of username or
// display name.
func (r *UserRepository) Search(ctx context.Context, q string, limit int) ([]types.UserSummary, error) {
	if limit < 1 {
		limit = 20
	}

	const query = `
		SELECT id, username, display_name, avatar_url, is_verified, is_admin
		FROM users
		WHERE username ILIKE $1 ESCAPE '\' OR display_name ILIKE $1 ESCAPE '\'
		ORDER BY username
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.UserSummary, 0, limit)
	for rows.Next() {
		var u types.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.IsVerified, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
