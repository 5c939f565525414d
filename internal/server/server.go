package server

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"aphorist/internal/config"
	"aphorist/internal/content"
	"aphorist/internal/sampler"
	"aphorist/internal/slug"
)

// Server 负责注册 HTTP 路由并处理请求。
type Server struct {
	cfg       config.Config
	store     *content.Store
	picker    *sampler.Picker
	mux       *http.ServeMux
	templates *template.Template
	sessions  *sessionStore
}

type quoteView struct {
	ID     string
	Text   string
	Author string
	HTML   template.HTML
	Hidden bool
}

type pageTemplateData struct {
	Title       string
	Quotes      []quoteView
	Sort        content.SortOrder
	ToggleURL   string
	ToggleLabel string
	Random      *randomInfo
}

type randomInfo struct {
	ID    string
	Seen  int
	Total int
	Reset bool
}

type adminListItem struct {
	ID        string
	Summary   string
	Author    string
	UpdatedAt string
}

type adminTemplateData struct {
	Title         string
	Quotes        []adminListItem
	SearchTerm    string
	TotalQuotes   int
	FilteredCount int
	HasFilter     bool
}

type editorTemplateData struct {
	Title     string
	Action    string
	ID        string
	Text      string
	Author    string
	CreatedAt string
	UpdatedAt string
}

// New 创建一个 Server 并加载模板。
func New(cfg config.Config, store *content.Store, picker *sampler.Picker, tplDir string) (*Server, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if picker == nil {
		return nil, errors.New("picker is required")
	}

	tpls, err := template.ParseGlob(filepath.Join(tplDir, "*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		picker:    picker,
		templates: tpls,
		mux:       http.NewServeMux(),
		sessions:  newSessionStore(),
	}
	s.registerRoutes()
	return s, nil
}

// ServeHTTP 实现 http.Handler。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.showPage)
	s.mux.HandleFunc("GET /random", s.showRandom)
	s.mux.HandleFunc("POST /random/reset", s.resetRandom)
	s.mux.HandleFunc("GET /api/random", s.apiRandom)
	s.mux.HandleFunc("GET /healthz", s.health)

	s.mux.HandleFunc("GET /login", s.showLogin)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /logout", s.requireAuth(s.handleLogout))

	s.mux.HandleFunc("GET /admin", s.requireAuth(s.showAdmin))
	s.mux.HandleFunc("POST /admin", s.requireAuth(s.createQuote))
	s.mux.HandleFunc("POST /admin/preview", s.requireAuth(s.previewQuote))
	s.mux.HandleFunc("GET /admin/{id}/edit", s.requireAuth(s.showEdit))
	s.mux.HandleFunc("POST /admin/{id}/edit", s.requireAuth(s.updateQuote))
	s.mux.HandleFunc("POST /admin/{id}/delete", s.requireAuth(s.deleteQuote))

	s.mux.HandleFunc("GET /{id}", s.showQuote)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) showPage(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.List()
	if err != nil {
		slog.Error("list quotes", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Failed to load quotes")
		return
	}

	order := content.ParseSortOrder(r.URL.Query().Get("sort"))
	views, err := buildQuoteViews(content.Sort(quotes, order), nil)
	if err != nil {
		slog.Error("render quotes", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Render Failed")
		return
	}

	s.renderTemplate(w, "page.tmpl", pageTemplateData{
		Title:       "Aphorisms",
		Quotes:      views,
		Sort:        order,
		ToggleURL:   "/?sort=" + string(order.Toggle()),
		ToggleLabel: order.Label(),
	})
}

func (s *Server) showRandom(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.List()
	if err != nil {
		slog.Error("list quotes", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Failed to load quotes")
		return
	}

	visitor := s.visitorID(w, r)
	pick, ok := s.picker.PickNext(r.Context(), historyKey(visitor), len(quotes))

	var (
		visible []bool
		info    *randomInfo
	)
	if ok {
		visible = sampler.Visibility(len(quotes), pick.Index)
		info = &randomInfo{
			ID:    quotes[pick.Index].ID,
			Seen:  pick.Seen,
			Total: len(quotes),
			Reset: pick.Reset,
		}
	}

	views, err := buildQuoteViews(quotes, visible)
	if err != nil {
		slog.Error("render quotes", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Render Failed")
		return
	}

	s.renderTemplate(w, "page.tmpl", pageTemplateData{
		Title:       "A random aphorism",
		Quotes:      views,
		ToggleURL:   "/?sort=" + string(content.SortNone.Toggle()),
		ToggleLabel: content.SortNone.Label(),
		Random:      info,
	})
}

func (s *Server) resetRandom(w http.ResponseWriter, r *http.Request) {
	visitor := s.visitorID(w, r)
	if err := s.picker.Clear(r.Context(), historyKey(visitor)); err != nil {
		slog.Warn("clear pick history", "visitor", visitor, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) showQuote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	quote, err := s.store.Get(id)
	if err != nil {
		if !errors.Is(err, content.ErrQuoteNotFound) {
			slog.Error("get quote", "id", id, "error", err)
		}
		s.renderError(w, http.StatusNotFound, "Not Found")
		return
	}

	html, err := content.RenderHTML(quote)
	if err != nil {
		slog.Error("render quote", "id", id, "error", err)
		s.renderError(w, http.StatusInternalServerError, "Render Failed")
		return
	}

	s.renderTemplate(w, "quote.tmpl", map[string]any{
		"Title":  quote.ID,
		"ID":     quote.ID,
		"HTML":   html,
		"Author": quote.Author,
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.authenticated(r); !ok {
			nextURL := url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, "/login?next="+nextURL, http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (s *Server) authenticated(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	if !s.sessions.Validate(cookie.Value) {
		return "", false
	}
	return cookie.Value, true
}

func (s *Server) setSession(w http.ResponseWriter) {
	token, expires := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  expires,
	})
}

func (s *Server) clearSession(w http.ResponseWriter, token string) {
	s.sessions.Remove(token)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
}

func (s *Server) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticated(r); ok {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	next := r.URL.Query().Get("next")
	s.renderTemplate(w, "login.tmpl", map[string]any{
		"Title": "Login",
		"Next":  next,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderTemplate(w, "login.tmpl", map[string]any{
			"Title": "Login",
			"Error": "Invalid form data",
			"Next":  r.FormValue("next"),
		})
		return
	}

	password := r.FormValue("password")
	if password != s.cfg.AdminPassword {
		s.renderTemplate(w, "login.tmpl", map[string]any{
			"Title": "Login",
			"Error": "Incorrect password",
			"Next":  r.FormValue("next"),
		})
		return
	}

	s.setSession(w)
	next := r.FormValue("next")
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/admin"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := s.authenticated(r)
	if ok {
		s.clearSession(w, token)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) showAdmin(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	items, total, err := s.buildAdminList(search)
	if err != nil {
		slog.Error("list quotes", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Failed to load quotes")
		return
	}

	s.renderTemplate(w, "admin.tmpl", adminTemplateData{
		Title:         "Quotes",
		Quotes:        items,
		SearchTerm:    search,
		TotalQuotes:   total,
		FilteredCount: len(items),
		HasFilter:     search != "",
	})
}

func (s *Server) createQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	quote, err := s.store.Create(r.FormValue("text"), r.FormValue("author"))
	if err != nil {
		slog.Error("create quote", "error", err)
		s.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("quote created", "id", quote.ID)
	http.Redirect(w, r, fmt.Sprintf("/admin/%s/edit", quote.ID), http.StatusFound)
}

func (s *Server) previewQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		s.renderError(w, http.StatusBadRequest, content.ErrEmptyText.Error())
		return
	}

	// Build a temporary quote for preview
	tempQuote := content.Quote{Text: text, Author: strings.TrimSpace(r.FormValue("author"))}
	slug.AssignIdentifiers([]*content.Quote{&tempQuote})

	html, err := content.RenderHTML(tempQuote)
	if err != nil {
		slog.Error("render preview", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Render Failed")
		return
	}

	s.renderTemplate(w, "preview.tmpl", map[string]any{
		"Title":       "Preview",
		"ID":          tempQuote.ID,
		"HTML":        html,
		"Author":      tempQuote.Author,
		"GeneratedAt": formatTime(time.Now()),
	})
}

func (s *Server) showEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	quote, err := s.store.Get(id)
	if err != nil {
		s.renderError(w, http.StatusNotFound, "Not Found")
		return
	}

	s.renderTemplate(w, "edit.tmpl", editorTemplateData{
		Title:     fmt.Sprintf("Edit %s", quote.ID),
		Action:    fmt.Sprintf("/admin/%s/edit", quote.ID),
		ID:        quote.ID,
		Text:      quote.Text,
		Author:    quote.Author,
		CreatedAt: formatTime(quote.CreatedAt),
		UpdatedAt: formatTime(quote.UpdatedAt),
	})
}

func (s *Server) updateQuote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	quote, err := s.store.Update(id, r.FormValue("text"), r.FormValue("author"))
	if err != nil {
		if errors.Is(err, content.ErrQuoteNotFound) {
			s.renderError(w, http.StatusNotFound, "Not Found")
			return
		}
		slog.Error("update quote", "id", id, "error", err)
		s.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/admin/%s/edit", quote.ID), http.StatusFound)
}

func (s *Server) deleteQuote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, content.ErrQuoteNotFound) {
			s.renderError(w, http.StatusNotFound, "Not Found")
			return
		}
		slog.Error("delete quote", "id", id, "error", err)
		s.renderError(w, http.StatusInternalServerError, "Delete Failed")
		return
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (s *Server) buildAdminList(searchTerm string) ([]adminListItem, int, error) {
	quotes, err := s.store.List()
	if err != nil {
		return nil, 0, err
	}

	total := len(quotes)
	search := strings.ToLower(strings.TrimSpace(searchTerm))
	items := make([]adminListItem, 0, total)
	for _, q := range quotes {
		if search != "" {
			if !strings.Contains(strings.ToLower(q.ID), search) &&
				!strings.Contains(strings.ToLower(q.Text), search) &&
				!strings.Contains(strings.ToLower(q.Author), search) {
				continue
			}
		}
		items = append(items, adminListItem{
			ID:        q.ID,
			Summary:   summarize(q.Text, 140),
			Author:    q.Author,
			UpdatedAt: formatTime(q.UpdatedAt),
		})
	}

	return items, total, nil
}

// buildQuoteViews 渲染引言；visible 为 nil 时全部可见。
func buildQuoteViews(quotes []content.Quote, visible []bool) ([]quoteView, error) {
	views := make([]quoteView, 0, len(quotes))
	for i, q := range quotes {
		html, err := content.RenderHTML(q)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", q.ID, err)
		}
		views = append(views, quoteView{
			ID:     q.ID,
			Text:   q.Text,
			Author: q.Author,
			HTML:   html,
			Hidden: visible != nil && !visible[i],
		})
	}
	return views, nil
}

func summarize(raw string, limit int) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	collapsed := strings.Join(strings.Fields(trimmed), " ")
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	return string(runes[:limit]) + "…"
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Template Error", http.StatusInternalServerError)
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}
