package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Journal is a personal journal entry.
type Journal struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const journalColumns = `id, user_id, title, content, created_at, updated_at`

func scanJournals(rows *sql.Rows) ([]Journal, error) {
	defer rows.Close()
	var out []Journal
	for rows.Next() {
		var j Journal
		if err := rows.Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// CreateJournal inserts j and sets its ID and timestamps.
func (d *DB) CreateJournal(ctx context.Context, j *Journal) error {
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO journals (user_id, title, content, created_at, updated_at) VALUES (?,?,?,?,?);`,
		j.UserID, j.Title, j.Content, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	j.ID, err = res.LastInsertId()
	return err
}

// GetJournal returns the entry id owned by userID.
func (d *DB) GetJournal(ctx context.Context, userID, id int64) (*Journal, error) {
	var j Journal
	err := d.db.QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journals WHERE id = ? AND user_id = ?;`, id, userID).
		Scan(&j.ID, &j.UserID, &j.Title, &j.Content, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// UpdateJournal writes title and content of j and refreshes UpdatedAt.
func (d *DB) UpdateJournal(ctx context.Context, j *Journal) error {
	j.UpdatedAt = time.Now().UTC()
	res, err := d.db.ExecContext(ctx,
		`UPDATE journals SET title = ?, content = ?, updated_at = ? WHERE id = ? AND user_id = ?;`,
		j.Title, j.Content, j.UpdatedAt, j.ID, j.UserID)
	if err != nil {
		return fmt.Errorf("update journal: %w", err)
	}
	return requireOne(res)
}

// DeleteJournal removes the entry id owned by userID.
func (d *DB) DeleteJournal(ctx context.Context, userID, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM journals WHERE id = ? AND user_id = ?;`, id, userID)
	if err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	return requireOne(res)
}

// JournalPage lists entries most recently updated first, with total count and pages.
func (d *DB) JournalPage(ctx context.Context, userID int64, page, perPage int) ([]Journal, int, int, error) {
	var total int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journals WHERE user_id = ?;`, userID).Scan(&total); err != nil {
		return nil, 0, 0, fmt.Errorf("count journals: %w", err)
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE user_id = ? ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?;`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("query journals: %w", err)
	}
	js, err := scanJournals(rows)
	if err != nil {
		return nil, 0, 0, err
	}
	return js, total, pages(total, perPage), nil
}

// SearchJournals matches query case-insensitively against title and content.
func (d *DB) SearchJournals(ctx context.Context, userID int64, query string) ([]Journal, error) {
	like := "%" + query + "%"
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE user_id = ? AND (title LIKE ? OR content LIKE ?) ORDER BY updated_at DESC, id DESC;`,
		userID, like, like)
	if err != nil {
		return nil, fmt.Errorf("search journals: %w", err)
	}
	return scanJournals(rows)
}
