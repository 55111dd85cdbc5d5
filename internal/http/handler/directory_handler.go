package handler

import (
	"net/http"

	"github.com/tricol/supplierchain/internal/http/response"
	"github.com/tricol/supplierchain/internal/repository"
)

// DirectoryHandler exposes read-only views of the seeded RBAC data: the
// permission catalog, the role registry, and the user directory.
type DirectoryHandler struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
}

func NewDirectoryHandler(users repository.UserRepository, roles repository.RoleRepository, permissions repository.PermissionRepository) *DirectoryHandler {
	return &DirectoryHandler{users: users, roles: roles, permissions: permissions}
}

func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list users", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"users": users, "total": len(users)})
}

func (h *DirectoryHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list roles", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"roles": roles, "total": len(roles)})
}

func (h *DirectoryHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.permissions.List()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list permissions", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"permissions": permissions, "total": len(permissions)})
}
