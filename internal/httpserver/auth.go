package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/Caliovent/korean-party-functions/internal/game"
	"github.com/Caliovent/korean-party-functions/internal/store"
)

// Request payload for signup/login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers /auth/* and /profile/me.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(currentUser(r))
	})
	s.r.With(s.requireAuth()).Get("/profile/me", s.handleProfile)
}

// handleSignup creates a player and its starting profile, then signs a JWT
// and sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}
	p, err := s.accounts.Create(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username_taken", "")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_signup", err.Error())
		return
	}
	if err := s.profiles.Save(r.Context(), p.ID, game.NewProfile(s.opts.StartingMana)); err != nil {
		log.Error().Err(err).Str("player", p.ID).Msg("create profile")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return
	}
	if !s.issueToken(w, p.ID, p.Username) {
		return
	}
	log.Info().Str("player", p.ID).Str("username", p.Username).Msg("player signed up")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// handleLogin authenticates a player and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}
	p, err := s.accounts.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		if !errors.Is(err, store.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("authenticate")
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}
	if !s.issueToken(w, p.ID, p.Username) {
		return
	}
	_ = json.NewEncoder(w).Encode(authUser{ID: p.ID, Username: p.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Time{}, -1)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// profileRes is the stored profile plus its derived level.
type profileRes struct {
	game.Profile
	Level game.Level `json:"level"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	p, err := s.profiles.Get(r.Context(), me.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile_not_found", "")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("player", me.ID).Msg("load profile")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	_ = json.NewEncoder(w).Encode(profileRes{Profile: p, Level: p.Level()})
}

// ------------------------------ JWT & cookies ------------------------------

func (s *Server) issueToken(w http.ResponseWriter, id, username string) bool {
	tok, exp, err := s.signJWT(id, username)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		writeError(w, http.StatusInternalServerError, "sign_failed", "")
		return false
	}
	s.setAuthCookie(w, tok, exp, 0)
	return true
}

// signJWT creates an HS256 JWT with id/username and the configured expiry.
// Tokens use the wall clock; jwt validates exp against it.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.opts.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// setAuthCookie writes (maxAge 0) or deletes (maxAge -1) the auth cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// authenticate resolves the request's token to a live player.
func (s *Server) authenticate(r *http.Request) (*authUser, bool) {
	tokenStr := s.bearerOrCookie(r)
	if tokenStr == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, false
	}
	// Ensure player still exists
	p, err := s.accounts.ByID(r.Context(), id)
	if err != nil {
		return nil, false
	}
	return &authUser{ID: p.ID, Username: p.Username}, true
}

// ---------------------------- auth middleware ------------------------------

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := s.authenticate(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := s.authenticate(r); ok {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}
