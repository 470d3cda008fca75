package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"
)

// Chat is one stored message. Assistant rows keep the user message they answer in
// Message and the reply in Response.
type Chat struct {
	ID         int64
	UserID     int64
	Message    string
	Response   *string
	IsFromUser bool
	Timestamp  time.Time
}

const chatColumns = `id, user_id, message, response, is_from_user, timestamp`

func scanChats(rows *sql.Rows) ([]Chat, error) {
	defer rows.Close()
	var out []Chat
	for rows.Next() {
		var c Chat
		var resp sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &c.Message, &resp, &c.IsFromUser, &c.Timestamp); err != nil {
			return nil, err
		}
		if resp.Valid {
			s := resp.String
			c.Response = &s
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendChat persists c and sets its ID. A zero Timestamp is set to now.
func (d *DB) AppendChat(ctx context.Context, c *Chat) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO chats (user_id, message, response, is_from_user, timestamp) VALUES (?,?,?,?,?);`,
		c.UserID, c.Message, c.Response, c.IsFromUser, c.Timestamp)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// SetChatResponse stores the reply given to a user message.
func (d *DB) SetChatResponse(ctx context.Context, chatID int64, response string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE chats SET response = ? WHERE id = ?;`, response, chatID)
	if err != nil {
		return fmt.Errorf("update chat: %w", err)
	}
	return requireOne(res)
}

// RecentChats returns the last limit chats of a user, oldest first.
func (d *DB) RecentChats(ctx context.Context, userID int64, limit int) ([]Chat, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE user_id = ? ORDER BY id DESC LIMIT ?;`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	chats, err := scanChats(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(chats)
	return chats, nil
}

// ChatPage returns a page of a user's chats counted from the most recent one. The rows
// of the page are in chronological order. It also returns the total count and pages.
func (d *DB) ChatPage(ctx context.Context, userID int64, page, perPage int) ([]Chat, int, int, error) {
	var total int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats WHERE user_id = ?;`, userID).Scan(&total); err != nil {
		return nil, 0, 0, fmt.Errorf("count chats: %w", err)
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE user_id = ? ORDER BY id DESC LIMIT ? OFFSET ?;`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("query chats: %w", err)
	}
	chats, err := scanChats(rows)
	if err != nil {
		return nil, 0, 0, err
	}
	slices.Reverse(chats)
	return chats, total, pages(total, perPage), nil
}

// ClearChats deletes every chat of a user.
func (d *DB) ClearChats(ctx context.Context, userID int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM chats WHERE user_id = ?;`, userID); err != nil {
		return fmt.Errorf("delete chats: %w", err)
	}
	return nil
}
