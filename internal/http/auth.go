package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"ecom/internal/core"
	applog "ecom/internal/log"
)

// adminOnly admits requests whose ?id= names an admin user.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			fail(w, r, httpError(http.StatusUnauthorized, "Please Login First"))
			return
		}

		u, err := s.store.GetUser(r.Context(), id)
		if errors.Is(err, core.ErrNotFound) {
			fail(w, r, httpError(http.StatusUnauthorized, "Invalid User ID"))
			return
		}
		if err != nil {
			fail(w, r, err)
			return
		}
		if u.Role != core.RoleAdmin {
			slog.WarnContext(r.Context(), "Non-admin request to admin route",
				applog.FieldUserID, id,
				applog.FieldPath, r.URL.Path)
			fail(w, r, httpError(http.StatusUnauthorized, "Unauthorized Access"))
			return
		}
		next(w, r)
	}
}
