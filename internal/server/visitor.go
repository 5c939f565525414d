package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"aphorist/internal/history"
)

const (
	visitorCookieName = "aphorist_visitor"
	visitorTTL        = 365 * 24 * time.Hour
)

// visitorID 返回请求对应的访客标识，不存在或无效时生成新的并写入 cookie。
func (s *Server) visitorID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(visitorCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(visitorTTL),
	})
	return id
}

func historyKey(visitor string) string {
	return history.Key(visitor)
}
