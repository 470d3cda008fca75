package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/comigor/friendbot-go/internal/api"
	"github.com/comigor/friendbot-go/internal/llm"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/metrics"
	"github.com/comigor/friendbot-go/internal/session"
	"github.com/comigor/friendbot-go/internal/storage"
)

const invalidPreference = "Invalid gender preference! Choose from: male, female, neutral"

func toAPIChat(c storage.Chat) api.Chat {
	return api.Chat{
		ID:         c.ID,
		UserID:     c.UserID,
		Message:    c.Message,
		Response:   c.Response,
		Timestamp:  c.Timestamp,
		IsFromUser: c.IsFromUser,
	}
}

func turns(chats []storage.Chat) []llm.Turn {
	out := make([]llm.Turn, 0, len(chats))
	for _, c := range chats {
		t := llm.Turn{FromUser: c.IsFromUser, Text: c.Message}
		if !c.IsFromUser {
			if c.Response == nil {
				continue
			}
			t.Text = *c.Response
		}
		out = append(out, t)
	}
	return out
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in api.SendRequest
	if !decode(w, r, &in, "No message provided!") {
		return
	}
	text := strings.TrimSpace(in.Message)
	if text == "" {
		writeError(w, http.StatusBadRequest, "No message provided!")
		return
	}
	u := currentUser(r)
	ctx := r.Context()

	recent, err := s.db.RecentChats(ctx, u.ID, s.window)
	if err != nil {
		logger.L.Error("failed to load recent chats", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversation!")
		return
	}
	userChat := &storage.Chat{UserID: u.ID, Message: text, IsFromUser: true}
	if err := s.db.AppendChat(ctx, userChat); err != nil {
		logger.L.Error("failed to store message", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store message!")
		return
	}

	pref, err := session.ParsePreference(u.Preference)
	if err != nil {
		pref = session.PreferenceNeutral
	}
	start := time.Now()
	reply, err := s.generator.Generate(ctx, pref, turns(recent), text)
	metrics.ObserveReply(s.genName, string(pref), time.Since(start), err == nil)
	if err != nil {
		logger.L.Error("reply generation failed", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Error generating response: "+err.Error())
		return
	}

	if err := s.db.SetChatResponse(ctx, userChat.ID, reply); err != nil {
		logger.L.Warn("failed to attach response", "chat_id", userChat.ID, "error", err)
	}
	replyChat := &storage.Chat{UserID: u.ID, Message: text, Response: &reply, IsFromUser: false}
	if err := s.db.AppendChat(ctx, replyChat); err != nil {
		logger.L.Error("failed to store reply", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store reply!")
		return
	}

	writeJSON(w, http.StatusOK, api.SendResponse{
		Message:  "Message sent successfully!",
		Response: reply,
		ChatID:   userChat.ID,
		ReplyID:  replyChat.ID,
	})
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	page, perPage := pageParams(r, 20)
	chats, total, pages, err := s.db.ChatPage(r.Context(), u.ID, page, perPage)
	if err != nil {
		logger.L.Error("failed to load history", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load chat history!")
		return
	}
	out := api.HistoryResponse{Chats: make([]api.Chat, 0, len(chats)), Total: total, Pages: pages, CurrentPage: page}
	for _, c := range chats {
		out.Chats = append(out.Chats, toAPIChat(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	if err := s.db.ClearChats(r.Context(), u.ID); err != nil {
		logger.L.Error("failed to clear history", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear chat history!")
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Chat history cleared successfully!"})
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var in api.PreferencesRequest
	if !decode(w, r, &in, "No preference provided!") {
		return
	}
	if strings.TrimSpace(in.PreferredFriendGender) == "" {
		writeError(w, http.StatusBadRequest, "No preference provided!")
		return
	}
	p, err := session.ParsePreference(in.PreferredFriendGender)
	if err != nil {
		writeError(w, http.StatusBadRequest, invalidPreference)
		return
	}
	u := currentUser(r)
	if err := s.db.SetPreference(r.Context(), u.ID, string(p)); err != nil {
		logger.L.Error("failed to update preference", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update preference!")
		return
	}
	metrics.PreferenceUpdated(string(p))
	writeJSON(w, http.StatusOK, api.PreferencesResponse{
		Message:               "Chat preferences updated successfully!",
		PreferredFriendGender: string(p),
	})
}
