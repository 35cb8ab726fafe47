package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"arc/cmd/identity"
	"arc/cmd/internal/auth"
)

// Handler wires HTTP auth endpoints to auth.Service's six use-cases.
type Handler struct {
	log *slog.Logger
	cfg Config
	svc *auth.Service
}

// NewHandler constructs an auth Handler bound to svc.
func NewHandler(log *slog.Logger, svc *auth.Service, cfg Config) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, cfg: cfg, svc: svc}
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/signup", h.handleSignUp)
	mux.HandleFunc("/auth/signin", h.handleSignIn)
	mux.HandleFunc("/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/auth/me", h.handleMe)
	mux.HandleFunc("/auth/keys", h.handlePublicKey)
	mux.HandleFunc("/auth/rotate", h.handleRotateKeyPairs)
}

// ---- handlers ----

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req signUpRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	res, err := h.svc.SignUp(r.Context(), req.UserName, req.Password)
	signUpsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		h.writeUseCaseError(w, "auth.signup", err)
		return
	}

	writeJSON(w, http.StatusCreated, signUpResponse{
		User:              toUserResponse(res.User),
		Session:           toSessionResponse(res.Session),
		authTokenResponse: authTokenResponse{AccessToken: res.AccessToken},
	})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req signInRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	res, err := h.svc.SignIn(r.Context(), req.UserName, req.Password)
	signInsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		if errors.Is(err, auth.ErrWrongCredentials) {
			h.log.Warn("auth.signin.rejected", "ip", clientIP(r, h.cfg.TrustProxy))
		}
		h.writeUseCaseError(w, "auth.signin", err)
		return
	}

	writeJSON(w, http.StatusOK, signInResponse{
		Session:           toSessionResponse(res.Session),
		authTokenResponse: authTokenResponse{AccessToken: res.AccessToken},
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	res, err := h.svc.Refresh(r.Context(), req.SessionID)
	refreshesTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		h.writeUseCaseError(w, "auth.refresh", err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Session:           toSessionResponse(res.Session),
		authTokenResponse: authTokenResponse{AccessToken: res.AccessToken},
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, meResponse{Claims: toClaimsResponse(claims)})
}

func (h *Handler) handlePublicKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var kid identity.Identifier[identity.KeyPair]
	if raw := strings.TrimSpace(r.URL.Query().Get("kid")); raw != "" {
		parsed, err := identity.ParseIdentifier[identity.KeyPair](raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid kid")
			return
		}
		kid = parsed
	}

	pair, err := h.svc.GetPublicKey(r.Context(), kid)
	if err != nil {
		h.writeUseCaseError(w, "auth.get_public_key", err)
		return
	}

	pem, err := pair.Value().PublicKeyPEM()
	if err != nil {
		h.log.Error("auth.get_public_key.pem.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, publicKeyResponse{KeyPairID: pair.ID().String(), PublicKey: pem})
}

func (h *Handler) handleRotateKeyPairs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	res, err := h.svc.RotateKeyPairs(r.Context(), claims)
	keyPairRotationsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		h.writeUseCaseError(w, "auth.rotate_key_pairs", err)
		return
	}

	resp := rotateKeyPairsResponse{ActiveKeyPairID: res.ActiveNew.ID().String()}
	if res.ExpiringOld.IsExpiring() {
		resp.ExpiringKeyPairID = res.ExpiringOld.ID().String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- helpers ----

// requireAuth extracts and verifies the bearer token via Authorize. It
// writes a 401 response and returns ok=false on any failure.
func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (identity.UserClaims, bool) {
	tok := bearerToken(r)
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return identity.UserClaims{}, false
	}
	res, err := h.svc.Authorize(r.Context(), tok)
	authorizationsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		return identity.UserClaims{}, false
	}
	return res.Claims, true
}

// writeUseCaseError maps a Service error to an HTTP response. Unrecognized
// errors are logged with op context and surfaced as an opaque 500: callers
// never see infrastructure detail.
func (h *Handler) writeUseCaseError(w http.ResponseWriter, op string, err error) {
	var alreadyExists auth.ErrUserAlreadyExists
	var forbidden auth.ErrForbidden

	switch {
	case errors.As(err, &alreadyExists):
		writeError(w, http.StatusConflict, "already_exists", alreadyExists.Error())
	case errors.As(err, &forbidden):
		writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
	case errors.Is(err, auth.ErrWrongCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "wrong user name or password")
	case errors.Is(err, auth.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", "session not found")
	case errors.Is(err, auth.ErrSessionRevoked), errors.Is(err, auth.ErrSessionExpired), errors.Is(err, auth.ErrSessionUserGone):
		writeError(w, http.StatusUnauthorized, "session_not_active", "session not active")
	case errors.Is(err, auth.ErrKeyPairNotFound), errors.Is(err, auth.ErrActiveKeyPairNotFound):
		writeError(w, http.StatusNotFound, "not_found", "key pair not found")
	case errors.Is(err, auth.ErrKeyPairRevoked), errors.Is(err, auth.ErrKeyPairExpired),
		errors.Is(err, auth.ErrKeyPairIsRevoked), errors.Is(err, auth.ErrKeyPairIsExpired):
		writeError(w, http.StatusUnauthorized, "key_pair_not_active", "key pair not active")
	case identity.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
	default:
		h.log.Error(op+".fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
