package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tricol/supplierchain/internal/database"
	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/repository"
	"github.com/tricol/supplierchain/internal/security"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestSeeder(t *testing.T, db *gorm.DB) *Seeder {
	t.Helper()
	return New(
		repository.NewPermissionRepository(db),
		repository.NewRoleRepository(db),
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
		security.NewPasswordHasher(),
		slog.New(slog.DiscardHandler),
	)
}

func TestSeedFreshStore(t *testing.T) {
	db := newTestDB(t)
	s := newTestSeeder(t, db)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	permRepo := repository.NewPermissionRepository(db)
	catalog := domain.PermissionCatalog()
	n, err := permRepo.Count()
	if err != nil {
		t.Fatalf("count permissions: %v", err)
	}
	if n != int64(len(catalog)) {
		t.Fatalf("expected %d permissions, got %d", len(catalog), n)
	}
	for _, def := range catalog {
		p, err := permRepo.FindByName(def.Name)
		if err != nil {
			t.Fatalf("lookup %s: %v", def.Name, err)
		}
		if p.Resource != def.Resource || p.Action != def.Action {
			t.Fatalf("permission %s persisted as %s/%s, want %s/%s",
				def.Name, p.Resource, p.Action, def.Resource, def.Action)
		}
	}

	roleRepo := repository.NewRoleRepository(db)
	if n, _ := roleRepo.Count(); n != 4 {
		t.Fatalf("expected 4 roles, got %d", n)
	}
	userRepo := repository.NewUserRepository(db)
	if n, _ := userRepo.Count(); n != 4 {
		t.Fatalf("expected 4 users, got %d", n)
	}
	productRepo := repository.NewProductRepository(db)
	if n, _ := productRepo.Count(); n != 5 {
		t.Fatalf("expected 5 products, got %d", n)
	}
	vis, err := productRepo.FindByReference("PRD-1001")
	if err != nil {
		t.Fatalf("find PRD-1001: %v", err)
	}
	if vis.Name != "Vis M8" || vis.Description != "Vis M8 zincée" {
		t.Fatalf("unexpected product data: %+v", vis)
	}
}

func TestAdminRoleOwnsFullCatalog(t *testing.T) {
	db := newTestDB(t)
	if err := newTestSeeder(t, db).Run(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	admin, err := repository.NewRoleRepository(db).FindByName(domain.RoleAdmin)
	if err != nil {
		t.Fatalf("find admin role: %v", err)
	}
	catalog := domain.PermissionCatalog()
	if len(admin.Permissions) != len(catalog) {
		t.Fatalf("admin owns %d permissions, want %d", len(admin.Permissions), len(catalog))
	}
	owned := make(map[domain.PermissionName]struct{}, len(admin.Permissions))
	for _, p := range admin.Permissions {
		owned[p.Name] = struct{}{}
	}
	for _, def := range catalog {
		if _, ok := owned[def.Name]; !ok {
			t.Fatalf("admin missing permission %s", def.Name)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := newTestSeeder(t, db)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if n, _ := repository.NewPermissionRepository(db).Count(); n != int64(len(domain.PermissionCatalog())) {
		t.Fatalf("permission count changed after re-run: %d", n)
	}
	if n, _ := repository.NewRoleRepository(db).Count(); n != 4 {
		t.Fatalf("role count changed after re-run: %d", n)
	}
	if n, _ := repository.NewUserRepository(db).Count(); n != 4 {
		t.Fatalf("user count changed after re-run: %d", n)
	}
	if n, _ := repository.NewProductRepository(db).Count(); n != 5 {
		t.Fatalf("product count changed after re-run: %d", n)
	}
}

func TestSeedResumesUnfinishedPhases(t *testing.T) {
	db := newTestDB(t)
	s := newTestSeeder(t, db)

	// Simulate a crash after permission seeding: only the catalog exists.
	permRepo := repository.NewPermissionRepository(db)
	for _, def := range domain.PermissionCatalog() {
		p := domain.Permission{Name: def.Name, Description: def.Description, Resource: def.Resource, Action: def.Action}
		if err := permRepo.Create(&p); err != nil {
			t.Fatalf("pre-populate permission: %v", err)
		}
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("resume run failed: %v", err)
	}
	if n, _ := permRepo.Count(); n != int64(len(domain.PermissionCatalog())) {
		t.Fatalf("permission phase re-ran: %d rows", n)
	}
	if n, _ := repository.NewRoleRepository(db).Count(); n != 4 {
		t.Fatalf("role phase did not resume: %d rows", n)
	}
	if n, _ := repository.NewUserRepository(db).Count(); n != 4 {
		t.Fatalf("user phase did not resume: %d rows", n)
	}
}

// missingPermissionRepo hides one catalog entry to exercise best-effort
// resolution.
type missingPermissionRepo struct {
	repository.PermissionRepository
	hidden domain.PermissionName
}

func (r *missingPermissionRepo) FindByName(name domain.PermissionName) (*domain.Permission, error) {
	if name == r.hidden {
		return nil, domain.ErrNotFound
	}
	return r.PermissionRepository.FindByName(name)
}

func TestRoleSeedingDegradesOnMissingPermission(t *testing.T) {
	db := newTestDB(t)
	perms := &missingPermissionRepo{
		PermissionRepository: repository.NewPermissionRepository(db),
		hidden:               domain.StockValorisation,
	}
	s := New(
		perms,
		repository.NewRoleRepository(db),
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
		security.NewPasswordHasher(),
		slog.New(slog.DiscardHandler),
	)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	admin, err := repository.NewRoleRepository(db).FindByName(domain.RoleAdmin)
	if err != nil {
		t.Fatalf("find admin role: %v", err)
	}
	want := len(domain.PermissionCatalog()) - 1
	if len(admin.Permissions) != want {
		t.Fatalf("expected degraded admin with %d permissions, got %d", want, len(admin.Permissions))
	}
}

// emptyRoleRepo reports a populated registry that resolves nothing, forcing
// the fatal path during user seeding.
type emptyRoleRepo struct {
	repository.RoleRepository
}

func (r *emptyRoleRepo) Count() (int64, error) { return 4, nil }
func (r *emptyRoleRepo) FindByName(domain.RoleName) (*domain.Role, error) {
	return nil, domain.ErrNotFound
}

func TestUserSeedingFatalOnMissingRole(t *testing.T) {
	db := newTestDB(t)
	s := New(
		repository.NewPermissionRepository(db),
		&emptyRoleRepo{RoleRepository: repository.NewRoleRepository(db)},
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
		security.NewPasswordHasher(),
		slog.New(slog.DiscardHandler),
	)
	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error for missing role")
	}
	if n, _ := repository.NewUserRepository(db).Count(); n != 0 {
		t.Fatalf("no user may reference a missing role, got %d rows", n)
	}
}

func TestSeedPasswordsAreHashed(t *testing.T) {
	db := newTestDB(t)
	if err := newTestSeeder(t, db).Run(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	admin, err := repository.NewUserRepository(db).FindByUsername("admin")
	if err != nil {
		t.Fatalf("find admin user: %v", err)
	}
	if strings.Contains(admin.PasswordHash, "admin123") {
		t.Fatal("plaintext password persisted")
	}
	hasher := security.NewPasswordHasher()
	ok, err := hasher.Verify(admin.PasswordHash, "admin123")
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify original password: ok=%v err=%v", ok, err)
	}
	ok, _ = hasher.Verify(admin.PasswordHash, "admin1234")
	if ok {
		t.Fatal("stored hash verified a wrong password")
	}
}

func TestSeedUsersCarrySingleRole(t *testing.T) {
	db := newTestDB(t)
	if err := newTestSeeder(t, db).Run(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	expectations := map[string]domain.RoleName{
		"admin":        domain.RoleAdmin,
		"responsable":  domain.RoleResponsableAchats,
		"magasinier":   domain.RoleMagasinier,
		"chef_atelier": domain.RoleChefAtelier,
	}
	for username, role := range expectations {
		u, err := userRepo.FindByUsername(username)
		if err != nil {
			t.Fatalf("find %s: %v", username, err)
		}
		if u.Role.Name != role {
			t.Fatalf("user %s has role %s, want %s", username, u.Role.Name, role)
		}
		if !u.Enabled || u.Locked {
			t.Fatalf("user %s not active after seeding", username)
		}
	}
}
