package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tricol/supplierchain/internal/config"
	"github.com/tricol/supplierchain/internal/database"
	"github.com/tricol/supplierchain/internal/di"
	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/repository"
	"github.com/tricol/supplierchain/internal/tools/common"
)

type options struct {
	envFile string
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts), newVerifyCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply the bootstrap catalog, roles, users and sample products",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				if err := common.LoadEnvFile(opts.envFile); err != nil {
					return nil, err
				}
				runner, err := di.InitializeSeeder()
				if err != nil {
					return nil, err
				}
				if err := runner.Run(ctx); err != nil {
					return nil, err
				}
				return []string{
					fmt.Sprintf("ensured %d permissions", len(domain.PermissionCatalog())),
					fmt.Sprintf("ensured %d roles", len(domain.RoleCatalog())),
					"ensured bootstrap users and sample products",
				}, nil
			})
			finish(opts, "seed apply", details, err)
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would ensure, without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				details := []string{
					fmt.Sprintf("would ensure %d permissions in the catalog", len(domain.PermissionCatalog())),
				}
				for _, role := range domain.RoleCatalog() {
					details = append(details, fmt.Sprintf("would ensure role %s with %d permissions", role.Name, len(role.Permissions)))
				}
				details = append(details,
					"would ensure one bootstrap user per role",
					"would ensure the sample product references",
				)
				return details, nil
			})
			finish(opts, "seed dry-run", details, err)
			return nil
		},
	}
}

func newVerifyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report what the database currently holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed verify", func(ctx context.Context) ([]string, error) {
				if err := common.LoadEnvFile(opts.envFile); err != nil {
					return nil, err
				}
				cfg, err := config.Load()
				if err != nil {
					return nil, err
				}
				db, err := database.Open(cfg)
				if err != nil {
					return nil, err
				}
				counts := []struct {
					name  string
					count func() (int64, error)
				}{
					{"permissions", repository.NewPermissionRepository(db).Count},
					{"roles", repository.NewRoleRepository(db).Count},
					{"users", repository.NewUserRepository(db).Count},
					{"products", repository.NewProductRepository(db).Count},
				}
				var details []string
				for _, c := range counts {
					n, err := c.count()
					if err != nil {
						return nil, fmt.Errorf("count %s: %w", c.name, err)
					}
					details = append(details, fmt.Sprintf("%s=%d", c.name, n))
				}
				return details, nil
			})
			finish(opts, "seed verify", details, err)
			return nil
		},
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	details, err := fn(ctx)
	if !opts.ci {
		fmt.Println(title)
		for _, d := range details {
			fmt.Println("  " + d)
		}
		if err != nil {
			fmt.Println("  error: " + err.Error())
		}
	}
	return details, err
}

func finish(opts *options, title string, details []string, err error) {
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
	}
	if err != nil {
		os.Exit(3)
	}
}
