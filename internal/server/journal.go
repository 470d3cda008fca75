package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/friendbot-go/internal/api"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/metrics"
	"github.com/comigor/friendbot-go/internal/storage"
)

func toAPIJournal(j *storage.Journal) api.Journal {
	return api.Journal{
		ID:        j.ID,
		UserID:    j.UserID,
		Title:     j.Title,
		Content:   j.Content,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func toAPIJournals(js []storage.Journal) []api.Journal {
	out := make([]api.Journal, 0, len(js))
	for i := range js {
		out = append(out, toAPIJournal(&js[i]))
	}
	return out
}

// journalFor loads the entry named by the {id} URL parameter. It reports false after
// writing the error response.
func (s *Server) journalFor(w http.ResponseWriter, r *http.Request) (*storage.Journal, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Journal not found!")
		return nil, false
	}
	j, err := s.db.GetJournal(r.Context(), currentUser(r).ID, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Journal not found!")
		return nil, false
	}
	if err != nil {
		logger.L.Error("failed to load journal", "journal_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load journal!")
		return nil, false
	}
	return j, true
}

func (s *Server) createJournal(w http.ResponseWriter, r *http.Request) {
	var in api.JournalRequest
	if !decode(w, r, &in, "Missing title or content!") {
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		writeError(w, http.StatusBadRequest, "Missing title or content!")
		return
	}
	j := &storage.Journal{UserID: currentUser(r).ID, Title: strings.TrimSpace(in.Title), Content: in.Content}
	if err := s.db.CreateJournal(r.Context(), j); err != nil {
		logger.L.Error("failed to create journal", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create journal!")
		return
	}
	metrics.JournalOp("create")
	writeJSON(w, http.StatusCreated, api.JournalResponse{Message: "Journal created successfully!", Journal: toAPIJournal(j)})
}

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r, 10)
	js, total, pages, err := s.db.JournalPage(r.Context(), currentUser(r).ID, page, perPage)
	if err != nil {
		logger.L.Error("failed to list journals", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load journals!")
		return
	}
	writeJSON(w, http.StatusOK, api.JournalListResponse{
		Journals:    toAPIJournals(js),
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	})
}

func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	j, ok := s.journalFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, api.JournalResponse{Journal: toAPIJournal(j)})
}

func (s *Server) updateJournal(w http.ResponseWriter, r *http.Request) {
	j, ok := s.journalFor(w, r)
	if !ok {
		return
	}
	var in api.JournalRequest
	if !decode(w, r, &in, "No data provided!") {
		return
	}
	if v := strings.TrimSpace(in.Title); v != "" {
		j.Title = v
	}
	if strings.TrimSpace(in.Content) != "" {
		j.Content = in.Content
	}
	if err := s.db.UpdateJournal(r.Context(), j); err != nil {
		logger.L.Error("failed to update journal", "journal_id", j.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update journal!")
		return
	}
	metrics.JournalOp("update")
	writeJSON(w, http.StatusOK, api.JournalResponse{Message: "Journal updated successfully!", Journal: toAPIJournal(j)})
}

func (s *Server) deleteJournal(w http.ResponseWriter, r *http.Request) {
	j, ok := s.journalFor(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteJournal(r.Context(), j.UserID, j.ID); err != nil {
		logger.L.Error("failed to delete journal", "journal_id", j.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete journal!")
		return
	}
	metrics.JournalOp("delete")
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Journal deleted successfully!"})
}

func (s *Server) searchJournals(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "No search query provided!")
		return
	}
	js, err := s.db.SearchJournals(r.Context(), currentUser(r).ID, q)
	if err != nil {
		logger.L.Error("failed to search journals", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to search journals!")
		return
	}
	metrics.JournalOp("search")
	out := toAPIJournals(js)
	writeJSON(w, http.StatusOK, api.JournalListResponse{Journals: out, Count: len(out)})
}
