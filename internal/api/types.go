// Package api holds the JSON bodies exchanged between the terminal client and the
// REST service.
package api

import "time"

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse acknowledges an operation without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Username              string `json:"username"`
	Email                 string `json:"email"`
	Password              string `json:"password"`
	PreferredFriendGender string `json:"preferred_friend_gender,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// User is the public view of an account.
type User struct {
	ID                    int64      `json:"id"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	CreatedAt             time.Time  `json:"created_at"`
	LastLogin             *time.Time `json:"last_login"`
	PreferredFriendGender string     `json:"preferred_friend_gender"`
}

type ProfileResponse struct {
	Message string `json:"message,omitempty"`
	User    User   `json:"user"`
}

// ProfileUpdateRequest changes only the non-empty fields.
type ProfileUpdateRequest struct {
	Username              string `json:"username,omitempty"`
	Email                 string `json:"email,omitempty"`
	Password              string `json:"password,omitempty"`
	PreferredFriendGender string `json:"preferred_friend_gender,omitempty"`
}

type SendRequest struct {
	Message string `json:"message"`
}

// SendResponse carries the generated reply. ChatID is the stored user message, ReplyID
// the stored assistant message.
type SendResponse struct {
	Message  string `json:"message"`
	Response string `json:"response"`
	ChatID   int64  `json:"chat_id"`
	ReplyID  int64  `json:"reply_id"`
}

// Chat is one stored message. Assistant rows keep the user message they answer in
// Message and the reply in Response.
type Chat struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Message    string    `json:"message"`
	Response   *string   `json:"response"`
	Timestamp  time.Time `json:"timestamp"`
	IsFromUser bool      `json:"is_from_user"`
}

// Text returns what should be displayed for the chat row.
func (c Chat) Text() string {
	if c.IsFromUser {
		return c.Message
	}
	if c.Response == nil {
		return ""
	}
	return *c.Response
}

// HistoryResponse lists one page of the most recent chats, oldest first.
type HistoryResponse struct {
	Chats       []Chat `json:"chats"`
	Total       int    `json:"total"`
	Pages       int    `json:"pages"`
	CurrentPage int    `json:"current_page"`
}

type PreferencesRequest struct {
	PreferredFriendGender string `json:"preferred_friend_gender"`
}

type PreferencesResponse struct {
	Message               string `json:"message"`
	PreferredFriendGender string `json:"preferred_friend_gender"`
}

type Journal struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type JournalRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type JournalResponse struct {
	Message string  `json:"message,omitempty"`
	Journal Journal `json:"journal"`
}

type JournalListResponse struct {
	Journals    []Journal `json:"journals"`
	Total       int       `json:"total,omitempty"`
	Pages       int       `json:"pages,omitempty"`
	CurrentPage int       `json:"current_page,omitempty"`
	Count       int       `json:"count,omitempty"`
}
