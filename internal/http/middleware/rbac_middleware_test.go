package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/security"
	"github.com/tricol/supplierchain/internal/service"
)

type staticResolver struct {
	perms []string
	err   error
}

func (s staticResolver) ResolvePermissions(context.Context, *security.Claims) ([]string, error) {
	return s.perms, s.err
}

func protectedByRole(role domain.RoleName) http.Handler {
	rbac := service.NewRBACService()
	return RequireRole(rbac, role)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func authedRequest(t *testing.T, verifier *security.TokenVerifier, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	wrapped := AuthMiddleware(verifier)(h)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	return rr
}

func TestRequireRoleGrantsMatchingRole(t *testing.T) {
	verifier := security.NewStaticTokenVerifier(testSecret, 0)
	rr := authedRequest(t, verifier, protectedByRole(domain.RoleMagasinier), userToken(t, "magasinier", "MAGASINIER"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireRoleDeniesOtherRole(t *testing.T) {
	verifier := security.NewStaticTokenVerifier(testSecret, 0)
	rr := authedRequest(t, verifier, protectedByRole(domain.RoleAdmin), userToken(t, "magasinier", "MAGASINIER"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequireRoleWithoutAuthContextIs401(t *testing.T) {
	h := protectedByRole(domain.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireAnyRoleGrantsOnSecondRole(t *testing.T) {
	verifier := security.NewStaticTokenVerifier(testSecret, 0)
	rbac := service.NewRBACService()
	h := RequireAnyRole(rbac, domain.RoleAdmin, domain.RoleResponsableAchats)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := authedRequest(t, verifier, h, userToken(t, "responsable", "RESPONSABLE_ACHATS"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequirePermissionGrantsResolvedPermission(t *testing.T) {
	verifier := security.NewStaticTokenVerifier(testSecret, 0)
	rbac := service.NewRBACService()
	resolver := staticResolver{perms: []string{string(domain.StockRead), string(domain.StockValorisation)}}
	h := RequirePermission(rbac, resolver, domain.StockValorisation)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := authedRequest(t, verifier, h, userToken(t, "magasinier", "MAGASINIER"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequirePermissionDeniesMissingPermission(t *testing.T) {
	verifier := security.NewStaticTokenVerifier(testSecret, 0)
	rbac := service.NewRBACService()
	resolver := staticResolver{perms: []string{string(domain.StockRead)}}
	h := RequirePermission(rbac, resolver, domain.UserManage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := authedRequest(t, verifier, h, userToken(t, "magasinier", "MAGASINIER"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequirePermissionResolverErrorIs403(t *testing.T) {
	verifier := security.NewStaticTokenVerifier(testSecret, 0)
	rbac := service.NewRBACService()
	resolver := staticResolver{err: errors.New("directory unavailable")}
	h := RequirePermission(rbac, resolver, domain.UserManage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := authedRequest(t, verifier, h, userToken(t, "admin", "ADMIN"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
