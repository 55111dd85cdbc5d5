package rbaccheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tricol/supplierchain/internal/domain"
)

type probeOptions struct {
	baseURL    string
	token      string
	expectRole string
	timeout    time.Duration
}

// roleEndpoints maps each role to the test endpoint only that role may reach.
var roleEndpoints = map[domain.RoleName]string{
	domain.RoleAdmin:             "/api/test/admin",
	domain.RoleResponsableAchats: "/api/test/responsable",
	domain.RoleMagasinier:        "/api/test/magasinier",
	domain.RoleChefAtelier:       "/api/test/chef",
}

// runProbe exercises the test endpoints of a running server. Anonymous
// probes expect 401 on every protected endpoint; a token with an expected
// role must be allowed on exactly its own endpoint and denied on the rest.
func runProbe(ctx context.Context, opts *probeOptions) ([]string, error) {
	base := strings.TrimRight(opts.baseURL, "/")
	client := &http.Client{Timeout: 5 * time.Second}

	var details []string
	var problems int

	record := func(path string, want int) error {
		status, err := fetch(ctx, client, base+path, opts.token)
		if err != nil {
			return err
		}
		ok := status == want
		details = append(details, fmt.Sprintf("%s: %d (want %d)", path, status, want))
		if !ok {
			problems++
		}
		return nil
	}

	if err := record("/api/test/public", http.StatusOK); err != nil {
		return details, err
	}

	for role, path := range roleEndpoints {
		if opts.token != "" && opts.expectRole == "" {
			// Without an expected role we cannot tell allow from deny,
			// so only a server error counts against the probe.
			status, err := fetch(ctx, client, base+path, opts.token)
			if err != nil {
				return details, err
			}
			details = append(details, fmt.Sprintf("%s: %d", path, status))
			if status >= 500 {
				problems++
			}
			continue
		}
		want := http.StatusUnauthorized
		if opts.token != "" {
			want = http.StatusForbidden
			if domain.RoleName(opts.expectRole) == role {
				want = http.StatusOK
			}
		}
		if err := record(path, want); err != nil {
			return details, err
		}
	}

	if problems > 0 {
		return details, fmt.Errorf("probe found %d unexpected responses", problems)
	}
	return details, nil
}

func fetch(ctx context.Context, client *http.Client, url, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
