package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalog-cli/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotLoggedIn = errors.New("not logged in; run `catalog login --token <token>` or pass --token")

type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Session is the credential + identity passed explicitly to every API call.
type Session struct {
	Token     string    `json:"token" yaml:"-"`
	User      User      `json:"user" yaml:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// FromToken builds a session from a bearer token.
//
// JWTs are decoded without verification (the server verifies); the user id comes from
// user_id or sub. Opaque tokens fall back to userID.
func FromToken(token, userID string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrNotLoggedIn
	}
	s := Session{Token: token, User: User{ID: strings.TrimSpace(userID)}}

	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil {
		id := strings.TrimSpace(claims.UserID)
		if id == "" {
			id = strings.TrimSpace(claims.Subject)
		}
		if s.User.ID == "" {
			s.User.ID = id
		}
		s.User.Name = claims.Name
		s.User.Email = claims.Email
		s.User.Role = claims.Role
		if claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return s, nil
}

func (s Session) Valid() bool { return strings.TrimSpace(s.Token) != "" }

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Authorize sets the bearer credential on req.
func (s Session) Authorize(req *http.Request) error {
	if !s.Valid() {
		return ErrNotLoggedIn
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	return nil
}

func path() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// Load reads the saved session. A missing file yields ErrNotLoggedIn.
func Load() (Session, error) {
	p, err := path()
	if err != nil {
		return Session{}, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNotLoggedIn
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("session: decode %s: %w", p, err)
	}
	if !s.Valid() {
		return Session{}, ErrNotLoggedIn
	}
	return s, nil
}

func Save(s Session) error {
	if !s.Valid() {
		return ErrNotLoggedIn
	}
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(p, b, 0o600)
}

func Clear() error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
