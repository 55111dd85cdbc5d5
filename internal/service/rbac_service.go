package service

import "github.com/tricol/supplierchain/internal/domain"

// RBACService evaluates role and permission membership. Roles and
// permissions arrive as flat claim/permission-name lists; the richer
// role→permission resolution happens in the PermissionResolver.
type RBACService struct{}

func NewRBACService() *RBACService { return &RBACService{} }

// PermissionsFromRole flattens a role's permission set to a deduplicated
// name list.
func (s *RBACService) PermissionsFromRole(role *domain.Role) []string {
	if role == nil {
		return nil
	}
	set := make(map[string]struct{}, len(role.Permissions))
	out := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		name := string(p.Name)
		if _, seen := set[name]; seen {
			continue
		}
		set[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// HasRole reports whether the caller's role claims contain the required
// role. This is the direct role-match check the protected test endpoints
// use.
func (s *RBACService) HasRole(roles []string, required domain.RoleName) bool {
	for _, r := range roles {
		if r == string(required) {
			return true
		}
	}
	return false
}

// HasPermission reports whether the caller's effective permission set
// contains the required permission.
func (s *RBACService) HasPermission(permissions []string, required domain.PermissionName) bool {
	for _, p := range permissions {
		if p == string(required) {
			return true
		}
	}
	return false
}
