package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/observability"
	"github.com/tricol/supplierchain/internal/repository"
	"github.com/tricol/supplierchain/internal/security"
)

// SeedAccount is one bootstrap user. Passwords are plaintext here only;
// they are hashed before anything reaches the store.
type SeedAccount struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     domain.RoleName
}

func seedAccounts() []SeedAccount {
	return []SeedAccount{
		{Username: "admin", Email: "admin@tricol.com", Password: "admin123", FullName: "System Administrator", Role: domain.RoleAdmin},
		{Username: "responsable", Email: "responsable@tricol.com", Password: "responsable123", FullName: "Jean Dupont", Role: domain.RoleResponsableAchats},
		{Username: "magasinier", Email: "magasinier@tricol.com", Password: "magasinier123", FullName: "Marie Martin", Role: domain.RoleMagasinier},
		{Username: "chef_atelier", Email: "chef.atelier@tricol.com", Password: "chef123", FullName: "Pierre Bernard", Role: domain.RoleChefAtelier},
	}
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{Reference: "PRD-1001", Name: "Vis M8", Description: "Vis M8 zincée", CurrentStock: 150, ReorderPoint: 20, UnitOfMeasure: "pcs", Category: "Fixation"},
		{Reference: "PRD-1002", Name: "Écrou M8", Description: "Écrou hexagonal M8", CurrentStock: 300, ReorderPoint: 50, UnitOfMeasure: "pcs", Category: "Fixation"},
		{Reference: "PRD-2001", Name: "Plaque acier 200x100", Description: "Plaque en acier galvanisé", CurrentStock: 25, ReorderPoint: 5, UnitOfMeasure: "pcs", Category: "Matériaux"},
		{Reference: "PRD-3001", Name: "Bidon huile 5L", Description: "Huile hydraulique 5 litres", CurrentStock: 40, ReorderPoint: 10, UnitOfMeasure: "L", Category: "Consommables"},
		{Reference: "PRD-4001", Name: "Fil électrique 2.5mm²", Description: "Rouleau de fil électrique 100m", CurrentStock: 10, ReorderPoint: 2, UnitOfMeasure: "roll", Category: "Électrique"},
	}
}

// Seeder establishes the initial security posture and sample catalog data.
// It runs once, synchronously, before the server accepts requests, and is
// safe to re-run on every start: each phase is skipped when its store is
// already populated, so a partial failure resumes with only the unfinished
// phases on the next start.
type Seeder struct {
	permissions repository.PermissionRepository
	roles       repository.RoleRepository
	users       repository.UserRepository
	products    repository.ProductRepository
	hasher      *security.PasswordHasher
	logger      *slog.Logger
}

func New(
	permissions repository.PermissionRepository,
	roles repository.RoleRepository,
	users repository.UserRepository,
	products repository.ProductRepository,
	hasher *security.PasswordHasher,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		permissions: permissions,
		roles:       roles,
		users:       users,
		products:    products,
		hasher:      hasher,
		logger:      logger,
	}
}

// Run executes the seeding phases in strict order: permissions, then roles,
// then users, then products. Role seeding resolves permission names
// best-effort; user seeding treats a missing role as fatal.
func (s *Seeder) Run(ctx context.Context) error {
	runID := uuid.NewString()
	start := time.Now()
	s.logger.InfoContext(ctx, "seeding started", "run_id", runID)

	if err := s.seedPermissions(ctx); err != nil {
		observability.RecordSeederPhase(ctx, "permissions", "error")
		return fmt.Errorf("seed permissions: %w", err)
	}
	if err := s.seedRoles(ctx); err != nil {
		observability.RecordSeederPhase(ctx, "roles", "error")
		return fmt.Errorf("seed roles: %w", err)
	}
	if err := s.seedUsers(ctx); err != nil {
		observability.RecordSeederPhase(ctx, "users", "error")
		return fmt.Errorf("seed users: %w", err)
	}
	if err := s.seedProducts(ctx); err != nil {
		observability.RecordSeederPhase(ctx, "products", "error")
		return fmt.Errorf("seed products: %w", err)
	}

	observability.RecordSeederDuration(ctx, time.Since(start))
	s.logger.InfoContext(ctx, "seeding completed", "run_id", runID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *Seeder) seedPermissions(ctx context.Context) error {
	count, err := s.permissions.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "permissions already seeded, skipping", "count", count)
		observability.RecordSeederPhase(ctx, "permissions", "skipped")
		return nil
	}

	for _, def := range domain.PermissionCatalog() {
		p := domain.Permission{
			Name:        def.Name,
			Description: def.Description,
			Resource:    def.Resource,
			Action:      def.Action,
		}
		if err := s.permissions.Create(&p); err != nil {
			return fmt.Errorf("create permission %s: %w", def.Name, err)
		}
	}
	s.logger.InfoContext(ctx, "permissions seeded", "count", len(domain.PermissionCatalog()))
	observability.RecordSeederPhase(ctx, "permissions", "seeded")
	return nil
}

func (s *Seeder) seedRoles(ctx context.Context) error {
	count, err := s.roles.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "roles already seeded, skipping", "count", count)
		observability.RecordSeederPhase(ctx, "roles", "skipped")
		return nil
	}

	for _, def := range domain.RoleCatalog() {
		resolved, missing, err := s.resolvePermissions(def.Permissions)
		if err != nil {
			return fmt.Errorf("resolve permissions for role %s: %w", def.Name, err)
		}
		if len(missing) > 0 {
			// Best-effort policy: an unresolved permission degrades the
			// role's grants instead of aborting startup.
			s.logger.WarnContext(ctx, "role references permissions absent from catalog",
				"role", def.Name, "missing", missing)
			observability.RecordSeederPhase(ctx, "roles", "degraded")
		}
		role := domain.Role{Name: def.Name, Description: def.Description}
		if err := s.roles.Create(&role, resolved); err != nil {
			return fmt.Errorf("create role %s: %w", def.Name, err)
		}
	}
	s.logger.InfoContext(ctx, "roles seeded", "count", len(domain.RoleCatalog()))
	observability.RecordSeederPhase(ctx, "roles", "seeded")
	return nil
}

// resolvePermissions maps permission names to persisted catalog entries.
// Unknown names are returned in missing rather than raised as errors;
// store failures other than a lookup miss abort the run.
func (s *Seeder) resolvePermissions(names []domain.PermissionName) ([]domain.Permission, []domain.PermissionName, error) {
	resolved := make([]domain.Permission, 0, len(names))
	var missing []domain.PermissionName
	for _, name := range names {
		p, err := s.permissions.FindByName(name)
		if errors.Is(err, domain.ErrNotFound) {
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		resolved = append(resolved, *p)
	}
	return resolved, missing, nil
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	count, err := s.users.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "users already seeded, skipping", "count", count)
		observability.RecordSeederPhase(ctx, "users", "skipped")
		return nil
	}

	for _, account := range seedAccounts() {
		role, err := s.roles.FindByName(account.Role)
		if err != nil {
			// A user pointing at a nonexistent role must never reach the
			// store; abort startup instead.
			return fmt.Errorf("role %s for user %s: %w", account.Role, account.Username, err)
		}
		hash, err := s.hasher.Hash(account.Password)
		if err != nil {
			return fmt.Errorf("hash password for user %s: %w", account.Username, err)
		}
		user := domain.User{
			Username:     account.Username,
			Email:        account.Email,
			PasswordHash: hash,
			FullName:     account.FullName,
			RoleID:       role.ID,
			Enabled:      true,
			Locked:       false,
		}
		if err := s.users.Create(&user); err != nil {
			return fmt.Errorf("create user %s: %w", account.Username, err)
		}
		s.logger.InfoContext(ctx, "seed user created", "username", account.Username, "role", account.Role)
	}
	observability.RecordSeederPhase(ctx, "users", "seeded")
	return nil
}

func (s *Seeder) seedProducts(ctx context.Context) error {
	count, err := s.products.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "products already seeded, skipping", "count", count)
		observability.RecordSeederPhase(ctx, "products", "skipped")
		return nil
	}

	for _, p := range seedProducts() {
		exists, err := s.products.ExistsByReference(p.Reference)
		if err != nil {
			return err
		}
		if exists {
			s.logger.InfoContext(ctx, "product already exists, skipping", "reference", p.Reference)
			continue
		}
		product := p
		if err := s.products.Create(&product); err != nil {
			return fmt.Errorf("create product %s: %w", p.Reference, err)
		}
	}
	s.logger.InfoContext(ctx, "products seeded", "count", len(seedProducts()))
	observability.RecordSeederPhase(ctx, "products", "seeded")
	return nil
}
