package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/diagrams/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// Scopes granted to author tokens.
const (
	// ScopeLibrary saves, edits and deletes diagrams in the library.
	ScopeLibrary = "library"
	// ScopePreview joins live preview rooms under the author's name instead of
	// as an anonymous viewer.
	ScopePreview = "preview"
)

const issuer = "diagrams"

// Claims carry the author's display name so preview rooms can label a presenter
// without a database round trip.
type Claims struct {
	jwt.RegisteredClaims
	Name   string   `json:"name"`
	Scopes []string `json:"scp"`
}

// Author is the public view of an account.
type Author struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Session is handed out on register and login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Author    Author    `json:"author"`
}

// Principal is the verified caller behind a token.
type Principal struct {
	AuthorID    string
	DisplayName string
	Scopes      []string
}

// Can reports whether the token granted scope.
func (p Principal) Can(scope string) bool {
	return slices.Contains(p.Scopes, scope)
}

// Service signs lesson authors in. Viewers of rendered pages never need an
// account; saving diagrams and presenting in preview rooms do.
type Service struct {
	users     UserStore
	jwtSecret []byte
	cost      int
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewService(users UserStore, jwtSecret string) *Service {
	return &Service{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		cost:      12,
		tokenTTL:  24 * time.Hour,
		now:       time.Now,
	}
}

func authorOf(rec UserRecord) Author {
	return Author{ID: rec.ID, Email: rec.Email, DisplayName: rec.DisplayName}
}

func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	rec, err := s.users.CreateUser(ctx, UserRecord{
		ID:          typeid.NewUserID(),
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
	})
	switch {
	case errors.Is(err, ErrEmailTaken):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, fmt.Errorf("create author: %w", err)
	}
	return s.session(rec)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	rec, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("find author: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(rec)
}

// Author loads the account behind an author ID.
func (s *Service) Author(ctx context.Context, id string) (*Author, error) {
	rec, err := s.users.GetUserByID(ctx, id)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("find author: %w", err)
	}
	a := authorOf(rec)
	return &a, nil
}

// Verify checks a token issued by this service and returns its principal. Only
// HS256 tokens with our issuer, an expiry and an author subject are accepted.
func (s *Service) Verify(token string) (Principal, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := typeid.Validate(c.Subject, typeid.PrefixUser); err != nil {
		return Principal{}, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	return Principal{AuthorID: c.Subject, DisplayName: c.Name, Scopes: c.Scopes}, nil
}

func (s *Service) session(rec UserRecord) (*Session, error) {
	now := s.now()
	expires := now.Add(s.tokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   rec.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Name:   rec.DisplayName,
		Scopes: []string{ScopeLibrary, ScopePreview},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expires.UTC().Truncate(time.Second), Author: authorOf(rec)}, nil
}
