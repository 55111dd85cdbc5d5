package middleware

import (
	"net/http"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/http/response"
	"github.com/tricol/supplierchain/internal/observability"
	"github.com/tricol/supplierchain/internal/service"
)

func RequireRole(rbac service.RBACAuthorizer, role domain.RoleName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				observability.RecordAuthzDecision(r.Context(), "role", string(role), "unauthenticated")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			if !rbac.HasRole(claims.Roles(), role) {
				observability.RecordAuthzDecision(r.Context(), "role", string(role), "denied")
				observability.Audit(r, "authz.role.denied", "required_role", string(role), "username", claims.PreferredUsername)
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", map[string]string{"required": string(role)})
				return
			}
			observability.RecordAuthzDecision(r.Context(), "role", string(role), "granted")
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAnyRole(rbac service.RBACAuthorizer, roles ...domain.RoleName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				observability.RecordAuthzDecision(r.Context(), "role", "any", "unauthenticated")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			for _, role := range roles {
				if rbac.HasRole(claims.Roles(), role) {
					observability.RecordAuthzDecision(r.Context(), "role", string(role), "granted")
					next.ServeHTTP(w, r)
					return
				}
			}
			observability.RecordAuthzDecision(r.Context(), "role", "any", "denied")
			observability.Audit(r, "authz.role.denied", "username", claims.PreferredUsername)
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
		})
	}
}

// RequirePermission resolves permissions from the user directory rather than
// trusting token contents, so a revoked role takes effect on the next request.
func RequirePermission(rbac service.RBACAuthorizer, resolver service.PermissionResolver, permission domain.PermissionName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				observability.RecordAuthzDecision(r.Context(), "permission", string(permission), "unauthenticated")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			perms, err := resolver.ResolvePermissions(r.Context(), claims)
			if err != nil {
				observability.RecordAuthzDecision(r.Context(), "permission", string(permission), "error")
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "permission lookup failed", nil)
				return
			}
			if !rbac.HasPermission(perms, permission) {
				observability.RecordAuthzDecision(r.Context(), "permission", string(permission), "denied")
				observability.Audit(r, "authz.permission.denied", "required_permission", string(permission), "username", claims.PreferredUsername)
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permission", map[string]string{"required": string(permission)})
				return
			}
			observability.RecordAuthzDecision(r.Context(), "permission", string(permission), "granted")
			next.ServeHTTP(w, r)
		})
	}
}
