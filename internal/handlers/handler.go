package handlers

import (
	"encoding/json"
	"html"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/api/middleware"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/auth"
	"github.com/23041450154/ruang-dengar-imadiksi/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db            store.DataStore
	secret        []byte
	inviteCodes   []string
	secureCookies bool
	logger        zerolog.Logger
}

// NewHandler creates a new Handler with the given store and session settings.
func NewHandler(db store.DataStore, secret []byte, inviteCodes []string, secureCookies bool, logger zerolog.Logger) *Handler {
	return &Handler{
		db:            db,
		secret:        secret,
		inviteCodes:   inviteCodes,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// Dependency sends a generic 500 and logs the underlying store failure.
// Collaborator errors never reach the response body.
func (h *Handler) Dependency(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("store failure")
	h.Error(w, http.StatusInternalServerError, "Internal server error")
}

// identity returns the verified caller identity, or writes a 401 and
// returns nil.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) *auth.Identity {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		h.Error(w, http.StatusUnauthorized, "Not authenticated")
		return nil
	}
	return id
}

// consentedIdentity returns the verified caller identity with consent
// recorded, or writes the appropriate 401/403 and returns nil. All chat,
// mood and journal operations require consent.
func (h *Handler) consentedIdentity(w http.ResponseWriter, r *http.Request) *auth.Identity {
	id := h.identity(w, r)
	if id == nil {
		return nil
	}
	if !id.HasConsented {
		h.Error(w, http.StatusForbidden, "Consent required")
		return nil
	}
	return id
}

// sanitizeInput trims surrounding whitespace and caps the input at
// maxLength characters. The cap counts runes, not bytes, so truncation
// never splits a multibyte character.
func sanitizeInput(input string, maxLength int) string {
	input = strings.TrimSpace(input)
	if utf8.RuneCountInString(input) > maxLength {
		input = string([]rune(input)[:maxLength])
	}
	return input
}

// escapeHTML escapes text for safe client-side rendering.
func escapeHTML(text string) string {
	return html.EscapeString(text)
}
