package domain

import "time"

// PermissionName identifies one entry of the closed permission catalog.
// The catalog is fixed at build time; values outside the enumeration are
// rejected at construction.
type PermissionName string

const (
	FournisseurCreate PermissionName = "FOURNISSEUR_CREATE"
	FournisseurUpdate PermissionName = "FOURNISSEUR_UPDATE"
	FournisseurDelete PermissionName = "FOURNISSEUR_DELETE"
	FournisseurRead   PermissionName = "FOURNISSEUR_READ"

	ProduitCreate         PermissionName = "PRODUIT_CREATE"
	ProduitUpdate         PermissionName = "PRODUIT_UPDATE"
	ProduitDelete         PermissionName = "PRODUIT_DELETE"
	ProduitRead           PermissionName = "PRODUIT_READ"
	ProduitConfigureSeuil PermissionName = "PRODUIT_CONFIGURE_SEUIL"

	CommandeCreate   PermissionName = "COMMANDE_CREATE"
	CommandeUpdate   PermissionName = "COMMANDE_UPDATE"
	CommandeValidate PermissionName = "COMMANDE_VALIDATE"
	CommandeCancel   PermissionName = "COMMANDE_CANCEL"
	CommandeReceive  PermissionName = "COMMANDE_RECEIVE"
	CommandeRead     PermissionName = "COMMANDE_READ"

	StockRead         PermissionName = "STOCK_READ"
	StockValorisation PermissionName = "STOCK_VALORISATION"
	StockHistorique   PermissionName = "STOCK_HISTORIQUE"

	BonSortieCreate   PermissionName = "BON_SORTIE_CREATE"
	BonSortieValidate PermissionName = "BON_SORTIE_VALIDATE"
	BonSortieCancel   PermissionName = "BON_SORTIE_CANCEL"
	BonSortieRead     PermissionName = "BON_SORTIE_READ"

	UserManage PermissionName = "USER_MANAGE"
	AuditRead  PermissionName = "AUDIT_READ"
)

// Permission is one persisted catalog entry.
type Permission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        PermissionName `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description"`
	Resource    string         `gorm:"size:32;not null;index" json:"resource"`
	Action      string         `gorm:"size:32;not null" json:"action"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PermissionDefinition is the build-time description of a catalog entry.
type PermissionDefinition struct {
	Name        PermissionName
	Description string
	Resource    string
	Action      string
}

var permissionCatalog = []PermissionDefinition{
	{FournisseurCreate, "Create supplier", "FOURNISSEUR", "CREATE"},
	{FournisseurUpdate, "Update supplier", "FOURNISSEUR", "UPDATE"},
	{FournisseurDelete, "Delete supplier", "FOURNISSEUR", "DELETE"},
	{FournisseurRead, "Read supplier", "FOURNISSEUR", "READ"},

	{ProduitCreate, "Create product", "PRODUIT", "CREATE"},
	{ProduitUpdate, "Update product", "PRODUIT", "UPDATE"},
	{ProduitDelete, "Delete product", "PRODUIT", "DELETE"},
	{ProduitRead, "Read product", "PRODUIT", "READ"},
	{ProduitConfigureSeuil, "Configure product threshold", "PRODUIT", "CONFIGURE_SEUIL"},

	{CommandeCreate, "Create order", "COMMANDE", "CREATE"},
	{CommandeUpdate, "Update order", "COMMANDE", "UPDATE"},
	{CommandeValidate, "Validate order", "COMMANDE", "VALIDATE"},
	{CommandeCancel, "Cancel order", "COMMANDE", "CANCEL"},
	{CommandeReceive, "Receive order", "COMMANDE", "RECEIVE"},
	{CommandeRead, "Read order", "COMMANDE", "READ"},

	{StockRead, "Read stock", "STOCK", "READ"},
	{StockValorisation, "Stock valuation", "STOCK", "VALORISATION"},
	{StockHistorique, "Stock history", "STOCK", "HISTORIQUE"},

	{BonSortieCreate, "Create exit voucher", "BON_SORTIE", "CREATE"},
	{BonSortieValidate, "Validate exit voucher", "BON_SORTIE", "VALIDATE"},
	{BonSortieCancel, "Cancel exit voucher", "BON_SORTIE", "CANCEL"},
	{BonSortieRead, "Read exit voucher", "BON_SORTIE", "READ"},

	{UserManage, "Manage users", "USER", "MANAGE"},
	{AuditRead, "Read audit logs", "AUDIT", "READ"},
}

var permissionIndex = func() map[PermissionName]PermissionDefinition {
	idx := make(map[PermissionName]PermissionDefinition, len(permissionCatalog))
	for _, def := range permissionCatalog {
		idx[def.Name] = def
	}
	return idx
}()

// PermissionCatalog returns the full build-time enumeration in declaration
// order. Callers must not mutate the returned slice.
func PermissionCatalog() []PermissionDefinition {
	out := make([]PermissionDefinition, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}

// LookupPermission resolves a name against the build-time catalog.
func LookupPermission(name PermissionName) (PermissionDefinition, bool) {
	def, ok := permissionIndex[name]
	return def, ok
}

// ValidPermissionName reports whether name belongs to the catalog.
func ValidPermissionName(name PermissionName) bool {
	_, ok := permissionIndex[name]
	return ok
}
