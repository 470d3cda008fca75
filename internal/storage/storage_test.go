package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/friendbot-go/internal/logger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger.Discard()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB, name string) *User {
	t.Helper()
	u := &User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	u := createUser(t, db, "sam")
	require.NotZero(t, u.ID)
	require.Equal(t, "neutral", u.Preference)

	err := db.CreateUser(ctx, &User{Username: "sam", Email: "other@example.com"})
	require.ErrorIs(t, err, ErrUsernameTaken)
	err = db.CreateUser(ctx, &User{Username: "other", Email: "sam@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)

	got, err := db.UserByUsername(ctx, "sam")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Nil(t, got.LastLogin)

	require.NoError(t, db.SetPreference(ctx, u.ID, "female"))
	require.NoError(t, db.TouchLogin(ctx, u.ID, u.CreatedAt))
	got, err = db.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "female", got.Preference)
	require.NotNil(t, got.LastLogin)

	got.Email = "sam@new.example.com"
	require.NoError(t, db.UpdateUser(ctx, got))

	_, err = db.UserByID(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChatPage_MostRecentPageInOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	u := createUser(t, db, "sam")

	for i := 1; i <= 5; i++ {
		require.NoError(t, db.AppendChat(ctx, &Chat{UserID: u.ID, Message: fmt.Sprintf("m%d", i), IsFromUser: true}))
	}

	chats, total, pages, err := db.ChatPage(ctx, u.ID, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Equal(t, 3, pages)
	require.Len(t, chats, 2)
	require.Equal(t, "m4", chats[0].Message)
	require.Equal(t, "m5", chats[1].Message)

	chats, _, _, err = db.ChatPage(ctx, u.ID, 3, 2)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, "m1", chats[0].Message)

	recent, err := db.RecentChats(ctx, u.ID, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"m3", "m4", "m5"}, []string{recent[0].Message, recent[1].Message, recent[2].Message})
}

func TestChatResponseAndClear(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	u := createUser(t, db, "sam")
	other := createUser(t, db, "kim")

	c := &Chat{UserID: u.ID, Message: "hi", IsFromUser: true}
	require.NoError(t, db.AppendChat(ctx, c))
	require.NoError(t, db.SetChatResponse(ctx, c.ID, "hello"))
	require.NoError(t, db.AppendChat(ctx, &Chat{UserID: other.ID, Message: "yo", IsFromUser: true}))

	chats, err := db.RecentChats(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.NotNil(t, chats[0].Response)
	require.Equal(t, "hello", *chats[0].Response)

	require.ErrorIs(t, db.SetChatResponse(ctx, 999, "x"), ErrNotFound)

	require.NoError(t, db.ClearChats(ctx, u.ID))
	chats, err = db.RecentChats(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Empty(t, chats)

	chats, err = db.RecentChats(ctx, other.ID, 10)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	require.NoError(t, db.Close())
	require.ErrorContains(t, db.ClearChats(ctx, u.ID), "delete chats")
}

func TestJournals(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	u := createUser(t, db, "sam")
	other := createUser(t, db, "kim")

	first := &Journal{UserID: u.ID, Title: "Monday", Content: "Went for a run"}
	second := &Journal{UserID: u.ID, Title: "Tuesday", Content: "Read a book"}
	require.NoError(t, db.CreateJournal(ctx, first))
	require.NoError(t, db.CreateJournal(ctx, second))

	list, total, pages, err := db.JournalPage(ctx, u.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, 1, pages)
	require.Equal(t, second.ID, list[0].ID)

	first.Content = "Went for a long RUN"
	require.NoError(t, db.UpdateJournal(ctx, first))
	got, err := db.GetJournal(ctx, u.ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, "Went for a long RUN", got.Content)

	found, err := db.SearchJournals(ctx, u.ID, "run")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, first.ID, found[0].ID)

	_, err = db.GetJournal(ctx, other.ID, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, db.DeleteJournal(ctx, other.ID, first.ID), ErrNotFound)

	require.NoError(t, db.DeleteJournal(ctx, u.ID, first.ID))
	_, err = db.GetJournal(ctx, u.ID, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
