package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPlayerNotFound     = errors.New("player not found")
)

// Player is a registered account.
type Player struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Accounts manages the players table.
type Accounts struct {
	db *sql.DB
}

func NewAccounts(db *sql.DB) *Accounts { return &Accounts{db: db} }

// ValidateSignup checks username and password shape.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return errors.New("password must be 8-72 chars")
	}
	return nil
}

// Create registers a new player. Usernames are unique case-insensitively.
func (a *Accounts) Create(ctx context.Context, username, password string) (*Player, error) {
	username = strings.TrimSpace(username)
	if err := ValidateSignup(username, password); err != nil {
		return nil, err
	}

	var exists int
	err := a.db.QueryRowContext(ctx, `SELECT 1 FROM players WHERE username=?`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	p := &Player{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO players (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		p.ID, p.Username, p.PasswordHash, p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Authenticate returns the player when the password matches.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (*Player, error) {
	p, err := a.scan(a.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM players WHERE username=?`,
		strings.TrimSpace(username)))
	if errors.Is(err, ErrPlayerNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// ByID loads a player by id.
func (a *Accounts) ByID(ctx context.Context, id string) (*Player, error) {
	return a.scan(a.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM players WHERE id=?`, id))
}

func (a *Accounts) scan(row *sql.Row) (*Player, error) {
	var p Player
	var created string
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &p, nil
}
