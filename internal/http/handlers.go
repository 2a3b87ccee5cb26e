package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/connector-fudan/internal/cache"
	"github.com/dropDatabas3/connector-fudan/internal/connector"
	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
	"github.com/dropDatabas3/connector-fudan/internal/observability/logger"
	"github.com/dropDatabas3/connector-fudan/internal/rate"
)

// Deps are the collaborators of the host handlers.
type Deps struct {
	Registry *connector.Registry
	State    *StateSigner
	Nonces   cache.Client
	// Limiter guards authorize and callback. Nil disables limiting.
	Limiter rate.Limiter
	// DefaultRedirectURI is used when /authorize gets no redirect_uri.
	DefaultRedirectURI string
	// Metrics serves MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string
	Now         func() time.Time
}

type handler struct {
	Deps
}

func newHandler(d Deps) *handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &handler{Deps: d}
}

const noncePrefix = "state:"

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.Nonces.Ping(r.Context()); err != nil {
		logger.From(r.Context()).Warn("nonce store unavailable", logger.Err(err))
		status, code = "degraded", http.StatusServiceUnavailable
	}
	WriteJSON(w, code, map[string]string{"status": status})
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"connectors": h.Registry.Available()})
}

// lookup resolves {id}; it writes the 404 itself.
func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (string, connector.Social, bool) {
	id := chi.URLParam(r, "id")
	c, err := h.Registry.Get(id)
	if err != nil {
		if errors.Is(err, connector.ErrNotRegistered) {
			WriteError(w, http.StatusNotFound, "connector_not_found", "unknown connector "+id)
		} else {
			logger.From(r.Context()).Error("connector init failed", logger.Connector(id), logger.Err(err))
			WriteError(w, http.StatusInternalServerError, "connector_unavailable", "connector could not be initialized")
		}
		return "", nil, false
	}
	return id, c, true
}

func (h *handler) metadata(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, c.Metadata())
}

func (h *handler) authorize(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Connector(id))

	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = h.DefaultRedirectURI
	}

	nonce := uuid.NewString()
	if err := h.Nonces.Set(ctx, noncePrefix+nonce, id, h.State.TTL()); err != nil {
		log.Error("nonce store failed", logger.Err(err))
		WriteError(w, http.StatusServiceUnavailable, "state_store_unavailable", "could not start login")
		return
	}

	state, err := h.State.Sign(StateClaims{Connector: id, RedirectURI: redirectURI, Nonce: nonce})
	if err != nil {
		log.Error("state sign failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, "internal_error", "could not start login")
		return
	}

	uri, err := c.GetAuthorizationURI(ctx, connector.AuthorizationURIInput{State: state, RedirectURI: redirectURI})
	if err != nil {
		fail(w, log, "authorization uri failed", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, uri, http.StatusFound)
}

func (h *handler) callback(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Connector(id))
	q := r.URL.Query()

	claims, err := h.State.Parse(q.Get("state"))
	if err == nil && claims.Connector != id {
		err = ErrStateConnector
	}
	if err != nil {
		log.Info("state rejected", logger.Err(err))
		WriteError(w, http.StatusBadRequest, "invalid_state", err.Error())
		return
	}

	if _, err := h.Nonces.Take(ctx, noncePrefix+claims.Nonce); err != nil {
		if cache.IsNotFound(err) {
			WriteError(w, http.StatusBadRequest, "invalid_state", "state already used or expired")
			return
		}
		log.Error("nonce store failed", logger.Err(err))
		WriteError(w, http.StatusServiceUnavailable, "state_store_unavailable", "could not verify login")
		return
	}

	data := make(map[string]any, len(q))
	for k := range q {
		data[k] = q.Get(k)
	}

	info, err := c.GetUserInfo(ctx, data, claims.RedirectURI)
	if err != nil {
		fail(w, log, "user info failed", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, info)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}
	refreshToken := r.PostForm.Get("refresh_token")
	if refreshToken == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	resp, err := c.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		fail(w, logger.From(r.Context()).With(logger.Connector(id)), "refresh failed", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, resp.Token(h.Now()))
}

// fail logs a connector failure with its code and renders it.
func fail(w http.ResponseWriter, log *zap.Logger, msg string, err error) {
	fields := []zap.Field{logger.Err(err)}
	if code, ok := cerrors.CodeOf(err); ok {
		fields = append(fields, logger.Code(string(code)))
	}
	log.Info(msg, fields...)
	cerrors.WriteError(w, err)
}
