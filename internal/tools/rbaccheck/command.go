package rbaccheck

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/tools/common"
)

type options struct {
	ci bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "rbaccheck", Short: "Verify the RBAC catalog and role matrix"}
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newCatalogCommand(opts), newMatrixCommand(opts), newProbeCommand(opts))
	return cmd
}

func newCatalogCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Check the permission catalog for duplicates and naming drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := checkCatalog()
			finish(opts, "rbaccheck catalog", details, err)
			return nil
		},
	}
}

func newMatrixCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Check that every role references only catalog permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := checkMatrix()
			finish(opts, "rbaccheck matrix", details, err)
			return nil
		},
	}
}

func newProbeCommand(opts *options) *cobra.Command {
	probe := &probeOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe a running server's role endpoints with a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), probe.timeout)
			defer cancel()
			details, err := runProbe(ctx, probe)
			finish(opts, "rbaccheck probe", details, err)
			return nil
		},
	}
	cmd.Flags().StringVar(&probe.baseURL, "base-url", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&probe.token, "token", "", "bearer token to present, empty for anonymous")
	cmd.Flags().StringVar(&probe.expectRole, "expect-role", "", "role the token should resolve to: ADMIN|RESPONSABLE_ACHATS|MAGASINIER|CHEF_ATELIER")
	cmd.Flags().DurationVar(&probe.timeout, "timeout", 30*time.Second, "overall probe timeout")
	return cmd
}

func checkCatalog() ([]string, error) {
	catalog := domain.PermissionCatalog()
	seen := make(map[domain.PermissionName]bool, len(catalog))
	perResource := make(map[string]int)
	var problems []string
	for _, def := range catalog {
		if seen[def.Name] {
			problems = append(problems, fmt.Sprintf("duplicate permission: %s", def.Name))
		}
		seen[def.Name] = true
		if def.Resource == "" || def.Action == "" {
			problems = append(problems, fmt.Sprintf("permission %s missing resource or action", def.Name))
		}
		perResource[def.Resource]++
	}

	details := []string{fmt.Sprintf("catalog entries: %d", len(catalog))}
	resources := make([]string, 0, len(perResource))
	for r := range perResource {
		resources = append(resources, r)
	}
	sort.Strings(resources)
	for _, r := range resources {
		details = append(details, fmt.Sprintf("%s: %d", r, perResource[r]))
	}
	details = append(details, problems...)
	if len(problems) > 0 {
		return details, fmt.Errorf("catalog check found %d problems", len(problems))
	}
	return details, nil
}

func checkMatrix() ([]string, error) {
	known := make(map[domain.PermissionName]bool)
	for _, def := range domain.PermissionCatalog() {
		known[def.Name] = true
	}

	var details []string
	var problems int
	for _, role := range domain.RoleCatalog() {
		missing := 0
		for _, name := range role.Permissions {
			if !known[name] {
				details = append(details, fmt.Sprintf("role %s references unknown permission %s", role.Name, name))
				missing++
			}
		}
		problems += missing
		details = append(details, fmt.Sprintf("role %s: %d permissions, %d unknown", role.Name, len(role.Permissions), missing))
		if role.Name == domain.RoleAdmin && len(role.Permissions) != len(known) {
			details = append(details, fmt.Sprintf("role ADMIN holds %d of %d catalog permissions", len(role.Permissions), len(known)))
			problems++
		}
	}
	if problems > 0 {
		return details, fmt.Errorf("matrix check found %d problems", problems)
	}
	return details, nil
}

func finish(opts *options, title string, details []string, err error) {
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
	} else {
		fmt.Println(title)
		for _, d := range details {
			fmt.Println("  " + d)
		}
		if err != nil {
			fmt.Println("  error: " + err.Error())
		}
	}
	if err != nil {
		os.Exit(4)
	}
}
