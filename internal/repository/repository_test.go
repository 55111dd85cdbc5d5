package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tricol/supplierchain/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Permission{}, &domain.Role{}, &domain.User{}, &domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPermissionRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewPermissionRepository(db)

	p := domain.Permission{Name: domain.StockRead, Description: "Read stock", Resource: "STOCK", Action: "READ"}
	if err := repo.Create(&p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByName(domain.StockRead)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Resource != "STOCK" || got.Action != "READ" {
		t.Fatalf("unexpected permission: %+v", got)
	}

	if _, err := repo.FindByName(domain.UserManage); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestRoleRepositoryPreloadsPermissions(t *testing.T) {
	db := newTestDB(t)
	perms := NewPermissionRepository(db)
	roles := NewRoleRepository(db)

	p1 := domain.Permission{Name: domain.StockRead, Resource: "STOCK", Action: "READ"}
	p2 := domain.Permission{Name: domain.StockValorisation, Resource: "STOCK", Action: "VALORISATION"}
	for _, p := range []*domain.Permission{&p1, &p2} {
		if err := perms.Create(p); err != nil {
			t.Fatalf("create permission: %v", err)
		}
	}

	role := domain.Role{Name: domain.RoleMagasinier, Description: "Warehouse keeper"}
	if err := roles.Create(&role, []domain.Permission{p1, p2}); err != nil {
		t.Fatalf("create role: %v", err)
	}

	got, err := roles.FindByName(domain.RoleMagasinier)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Permissions) != 2 {
		t.Fatalf("permissions = %d, want 2", len(got.Permissions))
	}
}

func TestUserRepositoryPreloadsRoleGrants(t *testing.T) {
	db := newTestDB(t)
	perms := NewPermissionRepository(db)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	p := domain.Permission{Name: domain.ProduitRead, Resource: "PRODUIT", Action: "READ"}
	if err := perms.Create(&p); err != nil {
		t.Fatalf("create permission: %v", err)
	}
	role := domain.Role{Name: domain.RoleChefAtelier}
	if err := roles.Create(&role, []domain.Permission{p}); err != nil {
		t.Fatalf("create role: %v", err)
	}

	u := domain.User{Username: "chef_atelier", Email: "chef.atelier@tricol.com", PasswordHash: "x", RoleID: role.ID, Enabled: true}
	if err := users.Create(&u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := users.FindByUsername("chef_atelier")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Role.Name != domain.RoleChefAtelier {
		t.Fatalf("role = %s, want %s", got.Role.Name, domain.RoleChefAtelier)
	}
	if len(got.Role.Permissions) != 1 || got.Role.Permissions[0].Name != domain.ProduitRead {
		t.Fatalf("unexpected role grants: %+v", got.Role.Permissions)
	}

	if _, err := users.FindByUsername("nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRepositoryListsByReference(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	for _, ref := range []string{"PRD-2001", "PRD-1001"} {
		if err := repo.Create(&domain.Product{Reference: ref, Name: ref}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	products, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 || products[0].Reference != "PRD-1001" {
		t.Fatalf("unexpected order: %+v", products)
	}

	exists, err := repo.ExistsByReference("PRD-2001")
	if err != nil || !exists {
		t.Fatalf("exists = %v, err = %v", exists, err)
	}

	if _, err := repo.FindByReference("PRD-9999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
