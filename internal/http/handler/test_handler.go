package handler

import (
	"net/http"

	"github.com/tricol/supplierchain/internal/http/middleware"
	"github.com/tricol/supplierchain/internal/http/response"
)

// TestHandler backs the role-probe endpoints used to verify the
// authentication and authorization chain end to end.
type TestHandler struct{}

func NewTestHandler() *TestHandler {
	return &TestHandler{}
}

func (h *TestHandler) Public(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]string{
		"message": "public endpoint, no authentication required",
	})
}

// User echoes the caller's identity claims so clients can inspect what the
// token carries.
func (h *TestHandler) User(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"username":     claims.PreferredUsername,
		"email":        claims.Email,
		"realm_access": claims.RealmAccess,
	})
}

func (h *TestHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.roleProbe(w, r, "admin")
}

func (h *TestHandler) ResponsableAchats(w http.ResponseWriter, r *http.Request) {
	h.roleProbe(w, r, "responsable_achats")
}

func (h *TestHandler) Magasinier(w http.ResponseWriter, r *http.Request) {
	h.roleProbe(w, r, "magasinier")
}

func (h *TestHandler) ChefAtelier(w http.ResponseWriter, r *http.Request) {
	h.roleProbe(w, r, "chef_atelier")
}

func (h *TestHandler) roleProbe(w http.ResponseWriter, r *http.Request, scope string) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{
		"message":  "access granted to " + scope + " endpoint",
		"username": claims.PreferredUsername,
	})
}
