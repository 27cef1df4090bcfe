package guard

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lumina-africa/lumina/internal/access"
	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/platform/httpx"
)

// RedirectCounter records guard denials for observability. *observability.Metrics
// satisfies it and is nil-receiver safe.
type RedirectCounter interface {
	AddGuardRedirect(reason string)
}

// Protect enforces the route table on a server route subtree. Browser
// navigations are redirected (login for anonymous callers, the role's landing
// route for a wrong-role identity); API clients get an RFC7807 problem
// instead of a redirect.
func Protect(table *access.Table, logger *slog.Logger, counter RedirectCounter) func(http.Handler) http.Handler {
	count := func(reason string) {
		if counter != nil {
			counter.AddGuardRedirect(reason)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := access.Anonymous
			if ident, ok := identity.FromContext(r.Context()); ok {
				role = ident.Role
			}
			if table.CanAccessPath(role, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if wantsJSON(r) {
				if role == access.Anonymous {
					count("login")
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
					return
				}
				count("landing")
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "role not permitted for this route")
				return
			}

			target := table.LoginRoute()
			reason := "login"
			if role != access.Anonymous {
				target = table.LandingRoute(role)
				reason = "landing"
			}
			count(reason)
			if logger != nil {
				logger.Info("route denied",
					slog.String("path", r.URL.Path),
					slog.String("role", role.String()),
					slog.String("target", target))
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
