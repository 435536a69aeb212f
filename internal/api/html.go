package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nsilverman/compete/internal/i18n"
	"github.com/nsilverman/compete/internal/view"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

const (
	contestantCookie = "contestant"
	langCookie       = "lang"
	cookieMaxAge     = int(365 * 24 * time.Hour / time.Second)
)

// htmlResponse renders a view, as a full page or as a bare fragment
func (s *Server) htmlResponse(w http.ResponseWriter, status int, page bool, viewName string, data interface{}) {
	render := s.renderer.Fragment
	if page {
		render = s.renderer.Page
	}

	var buf bytes.Buffer
	if err := render(&buf, viewName, data); err != nil {
		log.Printf("Template execute error for %s: %v", viewName, err)
		http.Error(w, "Rendering error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing %s: %v", viewName, err)
	}
}

// lang resolves the request locale from the lang query parameter, the lang
// cookie and Accept-Language, in that order
func (s *Server) lang(r *http.Request) i18n.Lang {
	candidates := []string{r.URL.Query().Get("lang")}
	if c, err := r.Cookie(langCookie); err == nil {
		candidates = append(candidates, c.Value)
	}
	if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil {
		for _, tag := range tags {
			candidates = append(candidates, tag.String())
		}
	}
	return s.getCatalog().Lang(candidates...)
}

// rememberLang stores an explicitly requested locale in a cookie
func (s *Server) rememberLang(w http.ResponseWriter, r *http.Request, lang i18n.Lang) {
	if r.URL.Query().Get("lang") == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     langCookie,
		Value:    lang.Locale(),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

func viewBase(lang i18n.Lang) view.Base {
	return view.Base{Lang: lang.Line, Locale: lang.Locale()}
}

// contestant returns the anonymous contestant ID of the request, issuing a
// new one when the cookie is missing or malformed
func (s *Server) contestant(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(contestantCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     contestantCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
