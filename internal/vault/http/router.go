package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/moltenlabs/credvault/internal/vault/service"
	"github.com/moltenlabs/credvault/internal/vault/store"
	"github.com/moltenlabs/credvault/pkg/httpx"
	"github.com/moltenlabs/credvault/pkg/jwtx"
	"github.com/moltenlabs/credvault/pkg/slogx"

	_ "github.com/moltenlabs/credvault/api/vault" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	UserService       *service.UserService
	CredentialService *service.CredentialService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerCredentials()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			CredVault API
//	@version		0.1.0
//	@description	HTTP backend for user accounts and per-user stored credentials.
//	@description
//	@description				Access tokens are HMAC-signed JWTs; every account may only act on its own resources.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	// POST /users - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /users/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/users/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	h := &UsersHandler{UserService: r.UserService}

	// GET /users/me - authenticated, no self guard needed (id comes from the token)
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier, r.UserService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Account operations on an explicit id: the token subject must match it.
	r.Mux.Handle("GET /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier, r.UserService),
			httpx.RequireSelf("id"),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandlePatch),
			httpx.AuthnMiddleware(r.verifier, r.UserService),
			httpx.RequireSelf("id"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier, r.UserService),
			httpx.RequireSelf("id"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCredentials() {
	h := &CredentialsHandler{CredentialService: r.CredentialService}

	secured := func(handler http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier, r.UserService),
			httpx.RequireSelf("id"),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/users/{id}/credentials", secured(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/users/{id}/credentials", secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/users/{id}/credentials/{credID}", secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/users/{id}/credentials/{credID}", secured(h.HandlePatch, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/users/{id}/credentials/{credID}", secured(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
