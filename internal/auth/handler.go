package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/lumina-africa/lumina/internal/identity"
	"github.com/lumina-africa/lumina/internal/platform/httpx"
	"github.com/lumina-africa/lumina/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. Login and
// register carry their own tighter rate limit on top of the global one.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
	})
	r.Get("/me", h.Me)
	r.Post("/logout", h.Logout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=user venue_owner organizer"`
}

type sessionResponse struct {
	Identity *identity.Identity `json:"identity"`
	Token    string             `json:"token"`
}

// Login answers POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	ident, token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{Identity: ident, Token: token})
}

// Register answers POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	ident, token, err := h.service.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("account registered", slog.String("email", ident.Email), slog.String("role", ident.Role.String()))
	httpx.JSON(w, http.StatusCreated, sessionResponse{Identity: ident, Token: token})
}

// Me answers GET /auth/me for a bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "bearer token required")
		return
	}
	httpx.JSON(w, http.StatusOK, ident)
}

// Logout answers POST /auth/logout, revoking the presented token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := BearerToken(r)
	if raw != "" {
		if err := h.service.RevokeToken(r.Context(), raw); err != nil {
			h.logger.Warn("revoke token", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Authenticator resolves an optional bearer token into a request identity.
// A missing header continues anonymously; a present-but-invalid token is a
// hard 401, which the client treats as forced logout.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := BearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		ident, err := h.service.ResolveToken(r.Context(), raw)
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.ContextWithIdentity(r.Context(), ident)))
	})
}

// BearerToken extracts the Authorization bearer value, "" when absent.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func validationDetail(err error) string {
	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return "invalid fields: " + strings.Join(fields, ", ")
	}
	return "invalid request"
}
