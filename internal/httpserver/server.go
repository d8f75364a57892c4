// internal/httpserver/server.go
//
// HTTP server wiring for the mini-game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, metrics).
//   - Public endpoints: "/", "/health", "/metrics", "/debug/catalog".
//   - Round endpoints (optional auth): POST /games/{game}/round,
//     GET /games/food/items/{id}.
//   - Result endpoints (require auth): POST /games/{game}/results.
//   - Auth + profile endpoints: /auth/*, /profile/me.
//   - Daily challenge leaderboard: /daily/leaderboard.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every request draws rounds from its own generator; none is shared
//     between goroutines.

package httpserver

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	mrand "math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Caliovent/korean-party-functions/internal/catalog"
	"github.com/Caliovent/korean-party-functions/internal/daily"
	"github.com/Caliovent/korean-party-functions/internal/game"
	"github.com/Caliovent/korean-party-functions/internal/store"
)

// Options are the tunables read from the environment by main.
type Options struct {
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	Production     bool // Secure + SameSite=None cookies
	ClientOrigin   string
	DailySalt      string
	StartingMana   int64
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Catalog  catalog.Provider
	Profiles store.Store
	Accounts *store.Accounts
	Daily    *daily.Store

	// Rand builds the generator for one request; defaults to a
	// crypto-seeded PCG.
	Rand func() game.Rand
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server bundles router, content and persistence.
type Server struct {
	r    *chi.Mux
	opts Options

	catalog  catalog.Provider
	profiles store.Store
	accounts *store.Accounts
	daily    *daily.Store

	newRand func() game.Rand
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options, deps Deps) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "kp_token"
	}
	if opts.JWTExpiresDays <= 0 {
		opts.JWTExpiresDays = 14
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}

	s := &Server{
		r:        chi.NewRouter(),
		opts:     opts,
		catalog:  deps.Catalog,
		profiles: deps.Profiles,
		accounts: deps.Accounts,
		daily:    deps.Daily,
		newRand:  deps.Rand,
		now:      deps.Now,
	}
	if s.newRand == nil {
		s.newRand = cryptoRand
	}
	if s.now == nil {
		s.now = time.Now
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(instrument)                      // request counters
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service": "korean-party-functions",
			"games":   game.Games,
			"endpoints": []string{
				"/health",
				"POST /games/{game}/round",
				"POST /games/{game}/results",
				"GET /games/food/items/{id}",
				"/auth/*",
				"/profile/me",
				"/daily/leaderboard",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Handle("/metrics", promhttp.Handler())
	s.r.Get("/debug/catalog", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{
			game.Market: len(s.catalog.MarketItems()),
			game.Food:   len(s.catalog.FoodItems()),
			game.Poem:   len(s.catalog.Poems()),
			game.Color:  len(s.catalog.Colors()),
		})
	})

	s.mountGames()
	s.mountAuthRoutes()
	s.mountDaily()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cryptoRand returns a PCG generator seeded from the OS entropy source.
func cryptoRand() game.Rand {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return mrand.New(mrand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}
