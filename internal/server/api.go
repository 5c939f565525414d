package server

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"aphorist/internal/content"
)

type randomResponse struct {
	Index  int           `json:"index"`
	ID     string        `json:"id"`
	Text   string        `json:"text"`
	Author string        `json:"author"`
	HTML   template.HTML `json:"html"`
	Seen   int           `json:"seen"`
	Total  int           `json:"total"`
	Reset  bool          `json:"reset"`
}

func (s *Server) apiRandom(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.List()
	if err != nil {
		slog.Error("list quotes", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load quotes"})
		return
	}

	visitor := s.visitorID(w, r)
	pick, ok := s.picker.PickNext(r.Context(), historyKey(visitor), len(quotes))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	quote := quotes[pick.Index]
	html, err := content.RenderHTML(quote)
	if err != nil {
		slog.Error("render quote", "id", quote.ID, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}

	s.writeJSON(w, http.StatusOK, randomResponse{
		Index:  pick.Index,
		ID:     quote.ID,
		Text:   quote.Text,
		Author: quote.Author,
		HTML:   html,
		Seen:   pick.Seen,
		Total:  len(quotes),
		Reset:  pick.Reset,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json", "error", err)
	}
}
