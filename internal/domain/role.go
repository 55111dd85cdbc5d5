package domain

import "time"

// RoleName identifies one of the fixed application roles.
type RoleName string

const (
	RoleAdmin             RoleName = "ADMIN"
	RoleResponsableAchats RoleName = "RESPONSABLE_ACHATS"
	RoleMagasinier        RoleName = "MAGASINIER"
	RoleChefAtelier       RoleName = "CHEF_ATELIER"
)

// Role is a named bundle of permissions assignable to users.
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        RoleName     `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// RoleDefinition is the build-time description of a seeded role.
type RoleDefinition struct {
	Name        RoleName
	Description string
	Permissions []PermissionName
}

// RoleCatalog returns the fixed role set in seeding order. ADMIN always
// carries the full permission catalog so that any entry added to the
// enumeration reaches it without a separate assignment.
func RoleCatalog() []RoleDefinition {
	admin := make([]PermissionName, 0, len(permissionCatalog))
	for _, def := range permissionCatalog {
		admin = append(admin, def.Name)
	}
	return []RoleDefinition{
		{
			Name:        RoleAdmin,
			Description: "Administrator with full access",
			Permissions: admin,
		},
		{
			Name:        RoleResponsableAchats,
			Description: "Purchasing manager",
			Permissions: []PermissionName{
				FournisseurCreate, FournisseurUpdate, FournisseurRead,
				ProduitRead, ProduitConfigureSeuil,
				CommandeCreate, CommandeUpdate, CommandeValidate, CommandeCancel, CommandeRead,
				StockRead, StockValorisation, StockHistorique,
			},
		},
		{
			Name:        RoleMagasinier,
			Description: "Warehouse keeper",
			Permissions: []PermissionName{
				ProduitRead,
				CommandeRead, CommandeReceive,
				StockRead, StockHistorique,
				BonSortieCreate, BonSortieValidate, BonSortieRead,
			},
		},
		{
			Name:        RoleChefAtelier,
			Description: "Workshop manager",
			Permissions: []PermissionName{
				ProduitRead, StockRead,
				BonSortieCreate, BonSortieRead,
			},
		},
	}
}

// ValidRoleName reports whether name is one of the fixed roles.
func ValidRoleName(name RoleName) bool {
	switch name {
	case RoleAdmin, RoleResponsableAchats, RoleMagasinier, RoleChefAtelier:
		return true
	}
	return false
}
