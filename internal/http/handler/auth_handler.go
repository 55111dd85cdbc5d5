package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/http/response"
	"github.com/tricol/supplierchain/internal/observability"
	"github.com/tricol/supplierchain/internal/service"
)

type AuthHandler struct {
	idp      service.IdentityProvider
	validate *validator.Validate
}

func NewAuthHandler(idp service.IdentityProvider) *AuthHandler {
	return &AuthHandler{idp: idp, validate: validator.New()}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthProxyDuration(r.Context(), "login", time.Since(start))
	}()

	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		status = "failure"
		observability.RecordAuthProxy(r.Context(), "login", status)
		return
	}

	tokens, err := h.idp.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		status = "failure"
		observability.RecordAuthProxy(r.Context(), "login", status)
		h.writeProviderError(w, r, "auth.login.failed", err, "invalid credentials")
		return
	}
	observability.RecordAuthProxy(r.Context(), "login", status)
	observability.Audit(r, "auth.login.success", "username", req.Username)
	response.JSON(w, r, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthProxyDuration(r.Context(), "refresh", time.Since(start))
	}()

	var req refreshRequest
	if !h.decodeAndValidate(w, r, &req) {
		status = "failure"
		observability.RecordAuthProxy(r.Context(), "refresh", status)
		return
	}

	tokens, err := h.idp.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		status = "failure"
		observability.RecordAuthProxy(r.Context(), "refresh", status)
		h.writeProviderError(w, r, "auth.refresh.failed", err, "invalid refresh token")
		return
	}
	observability.RecordAuthProxy(r.Context(), "refresh", status)
	observability.Audit(r, "auth.refresh.success")
	response.JSON(w, r, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthProxyDuration(r.Context(), "logout", time.Since(start))
	}()

	var req logoutRequest
	if !h.decodeAndValidate(w, r, &req) {
		status = "failure"
		observability.RecordAuthProxy(r.Context(), "logout", status)
		return
	}

	if err := h.idp.Logout(r.Context(), req.RefreshToken); err != nil {
		status = "failure"
		observability.RecordAuthProxy(r.Context(), "logout", status)
		h.writeProviderError(w, r, "auth.logout.failed", err, "logout rejected")
		return
	}
	observability.RecordAuthProxy(r.Context(), "logout", status)
	observability.Audit(r, "auth.logout.success")
	response.JSON(w, r, http.StatusOK, nil)
}

func (h *AuthHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		details := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request payload", details)
		return false
	}
	return true
}

// writeProviderError distinguishes a provider that said no from a provider
// that could not be reached. Credentials never appear in the response.
func (h *AuthHandler) writeProviderError(w http.ResponseWriter, r *http.Request, event string, err error, unauthorizedMsg string) {
	if errors.Is(err, domain.ErrUnauthenticated) {
		observability.Audit(r, event, "reason", "rejected")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMsg, nil)
		return
	}
	if errors.Is(err, domain.ErrAuthProvider) {
		observability.Audit(r, event, "reason", "provider_unavailable")
		response.Error(w, r, http.StatusServiceUnavailable, "AUTH_PROVIDER_UNAVAILABLE", "authentication provider unavailable", nil)
		return
	}
	observability.Audit(r, event, "reason", "internal")
	response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "authentication failed", nil)
}
