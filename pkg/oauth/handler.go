package oauth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/idkit/pkg/logger"
	"github.com/dmitrymomot/idkit/pkg/scopes"
)

// UserResolver extracts the authenticated resource owner from an incoming
// request. Session handling is outside this package; the resolver is how
// the surrounding application threads the current user in explicitly.
type UserResolver func(r *http.Request) (uuid.UUID, error)

// Handler exposes the RFC 6749 wire surface over a Service:
//
//	GET  /authorize   describe the pending consent for an external UI
//	POST /authorize   record the consent decision, redirect with a code
//	POST /token       exchange a code or refresh token for a token pair
//	GET  /revoke      invalidate a token pair
type Handler struct {
	svc         *Service
	resolveUser UserResolver
	logger      *slog.Logger
}

// HandlerOption configures a Handler during construction.
type HandlerOption func(*Handler)

// WithHandlerLogger sets a custom logger for the handler.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = log
	}
}

// NewHandler creates the HTTP surface over an OAuth2 service.
func NewHandler(svc *Service, resolveUser UserResolver, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:         svc,
		resolveUser: resolveUser,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Router mounts the endpoints on a fresh chi router, ready for
// r.Mount("/oauth", h.Router()).
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/authorize", h.authorizePreview)
	r.Post("/authorize", h.authorize)
	r.Post("/token", h.token)
	r.Get("/revoke", h.revoke)
	return r
}

// errorResponse is the RFC 6749 error body.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps service errors onto RFC 6749 error codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrInvalidClient):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid_client"})
	case errors.Is(err, ErrGrantExpired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_grant", Description: "authorization code expired"})
	case errors.Is(err, ErrGrantNotFound), errors.Is(err, ErrTokenNotFound):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_grant"})
	case errors.Is(err, ErrInvalidRedirectURI):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_grant", Description: "redirect_uri mismatch"})
	case errors.Is(err, ErrInvalidScope):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_scope"})
	case errors.Is(err, ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily_unavailable"})
	default:
		h.logger.Error("oauth endpoint failed", logger.Error(err), logger.Component("oauth"))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
	}
}

// clientCredentials reads client authentication from HTTP basic auth,
// falling back to form parameters for clients that post credentials in the
// body.
func clientCredentials(r *http.Request) (clientID, clientSecret string) {
	if id, secret, ok := r.BasicAuth(); ok {
		return id, secret
	}
	// FormValue also covers the query string, which the GET /revoke
	// endpoint relies on.
	return r.FormValue("client_id"), r.FormValue("client_secret")
}

// authorizePreview describes the consent being requested, for the external
// consent page to render. No state is created.
func (h *Handler) authorizePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	client, err := h.svc.clients.FindClient(r.Context(), q.Get("client_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	redirectURI := q.Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = client.DefaultRedirect()
	} else if !client.AllowsRedirect(redirectURI) {
		h.writeError(w, ErrInvalidRedirectURI)
		return
	}

	scope := scopes.ParseScopes(q.Get("scope"))
	if len(scope) == 0 {
		scope = client.Scopes
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"client_id":    client.ID,
		"redirect_uri": redirectURI,
		"scopes":       scope,
	})
}

// authorize records the consent decision. Approval mints a grant and
// redirects back to the client with the code; denial redirects with
// error=access_denied.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	state := r.PostFormValue("state")

	// The redirect target must be resolved against the client registration
	// before anything is sent there. Redirecting to an unvalidated URI,
	// even just to report access_denied, turns the endpoint into an open
	// redirector.
	client, err := h.svc.clients.FindClient(r.Context(), r.PostFormValue("client_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	redirectURI := r.PostFormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = client.DefaultRedirect()
	} else if !client.AllowsRedirect(redirectURI) {
		h.writeError(w, ErrInvalidRedirectURI)
		return
	}

	if r.PostFormValue("confirm") != "yes" {
		h.redirect(w, r, redirectURI, url.Values{"error": {"access_denied"}}, state)
		return
	}

	userID, err := h.resolveUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "access_denied", Description: "authentication required"})
		return
	}

	grant, err := h.svc.Authorize(r.Context(), AuthorizeRequest{
		ClientID:    r.PostFormValue("client_id"),
		UserID:      userID,
		RedirectURI: redirectURI,
		Scopes:      scopes.ParseScopes(r.PostFormValue("scope")),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.redirect(w, r, grant.RedirectURI, url.Values{"code": {grant.Code}}, state)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, redirectURI string, params url.Values, state string) {
	target, err := url.Parse(redirectURI)
	if err != nil || redirectURI == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Description: "missing redirect_uri"})
		return
	}

	q := target.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	if state != "" {
		q.Set("state", state)
	}
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// token is the RFC 6749 token endpoint, handling both grant types.
func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	clientID, clientSecret := clientCredentials(r)

	var (
		resp *TokenResponse
		err  error
	)

	switch r.PostFormValue("grant_type") {
	case "authorization_code":
		resp, err = h.svc.Exchange(r.Context(), ExchangeRequest{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Code:         r.PostFormValue("code"),
			RedirectURI:  r.PostFormValue("redirect_uri"),
		})
	case "refresh_token":
		resp, err = h.svc.Refresh(r.Context(), RefreshRequest{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RefreshToken: r.PostFormValue("refresh_token"),
		})
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported_grant_type"})
		return
	}

	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

// revoke invalidates the presented token. Per RFC 7009 an unknown token is
// not an error: the desired end state (token not valid) already holds.
func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	clientID, clientSecret := clientCredentials(r)

	err := h.svc.Revoke(r.Context(), clientID, clientSecret, r.URL.Query().Get("token"))
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{})
}
