package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is a stored account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
	Preference   string
}

const userColumns = `id, username, email, password_hash, created_at, last_login, preferred_friend_gender`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var last sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &last, &u.Preference); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if last.Valid {
		t := last.Time
		u.LastLogin = &t
	}
	return &u, nil
}

// CreateUser inserts u and sets its ID and CreatedAt.
func (d *DB) CreateUser(ctx context.Context, u *User) error {
	if err := d.checkUnique(ctx, 0, u.Username, u.Email); err != nil {
		return err
	}
	if u.Preference == "" {
		u.Preference = "neutral"
	}
	u.CreatedAt = time.Now().UTC()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at, preferred_friend_gender) VALUES (?,?,?,?,?);`,
		u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.Preference)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

// UserByID returns the user with id.
func (d *DB) UserByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?;`, id))
}

// UserByUsername returns the user named username.
func (d *DB) UserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?;`, username))
}

// UpdateUser writes every mutable column of u.
func (d *DB) UpdateUser(ctx context.Context, u *User) error {
	if err := d.checkUnique(ctx, u.ID, u.Username, u.Email); err != nil {
		return err
	}
	res, err := d.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, preferred_friend_gender = ? WHERE id = ?;`,
		u.Username, u.Email, u.PasswordHash, u.Preference, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireOne(res)
}

// SetPreference updates only the friend preference.
func (d *DB) SetPreference(ctx context.Context, userID int64, preference string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE users SET preferred_friend_gender = ? WHERE id = ?;`, preference, userID)
	if err != nil {
		return fmt.Errorf("update preference: %w", err)
	}
	return requireOne(res)
}

// TouchLogin records a successful login.
func (d *DB) TouchLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := d.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?;`, at.UTC(), userID)
	return err
}

func (d *DB) checkUnique(ctx context.Context, selfID int64, username, email string) error {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ? AND id != ?;`, username, selfID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrUsernameTaken
	}
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ? AND id != ?;`, email, selfID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}
	return nil
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
