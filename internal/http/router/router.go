package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/health"
	"github.com/tricol/supplierchain/internal/http/handler"
	"github.com/tricol/supplierchain/internal/http/middleware"
	"github.com/tricol/supplierchain/internal/http/response"
	"github.com/tricol/supplierchain/internal/security"
	"github.com/tricol/supplierchain/internal/service"
)

type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	TestHandler        *handler.TestHandler
	ProductHandler     *handler.ProductHandler
	DirectoryHandler   *handler.DirectoryHandler
	TokenVerifier      *security.TokenVerifier
	RBACService        service.RBACAuthorizer
	PermissionResolver service.PermissionResolver
	CORSOrigins        []string
	AuthRateLimitRPM   int
	APIRateLimitRPM    int
	BodyLimit          int64
	GlobalRateLimiter  GlobalRateLimiterFunc
	AuthRateLimiter    AuthRateLimiterFunc
	Readiness          *health.ProbeRunner
	EnableOTelHTTP     bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	bodyLimit := dep.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	r.Use(middleware.BodyLimit(bodyLimit))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api").Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute, "auth").Middleware()
	}

	authn := middleware.AuthMiddleware(dep.TokenVerifier)
	requireRole := func(role domain.RoleName) func(http.Handler) http.Handler {
		return middleware.RequireRole(dep.RBACService, role)
	}
	requirePermission := func(p domain.PermissionName) func(http.Handler) http.Handler {
		return middleware.RequirePermission(dep.RBACService, dep.PermissionResolver, p)
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter)
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/refresh", dep.AuthHandler.Refresh)
			r.Post("/logout", dep.AuthHandler.Logout)
		})

		r.Route("/test", func(r chi.Router) {
			r.Get("/public", dep.TestHandler.Public)
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/user", dep.TestHandler.User)
				r.With(requireRole(domain.RoleAdmin)).Get("/admin", dep.TestHandler.Admin)
				r.With(requireRole(domain.RoleResponsableAchats)).Get("/responsable", dep.TestHandler.ResponsableAchats)
				r.With(requireRole(domain.RoleMagasinier)).Get("/magasinier", dep.TestHandler.Magasinier)
				r.With(requireRole(domain.RoleChefAtelier)).Get("/chef", dep.TestHandler.ChefAtelier)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(authn)
			r.Use(requirePermission(domain.ProduitRead))
			r.Get("/", dep.ProductHandler.List)
			r.Get("/{reference}", dep.ProductHandler.GetByReference)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authn)
			r.With(requirePermission(domain.UserManage)).Get("/users", dep.DirectoryHandler.ListUsers)
			r.With(requirePermission(domain.UserManage)).Get("/roles", dep.DirectoryHandler.ListRoles)
			r.With(requirePermission(domain.UserManage)).Get("/permissions", dep.DirectoryHandler.ListPermissions)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
