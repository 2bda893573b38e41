package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inamate/diagrams/internal/typeid"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]UserRecord
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]UserRecord{}} }

func (m *memUsers) CreateUser(_ context.Context, u UserRecord) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return UserRecord{}, ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return UserRecord{}, ErrUserNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func newTestService() *Service {
	s := NewService(newMemUsers(), "test-secret")
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	res, err := s.Register(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.Author.DisplayName)
	assert.Regexp(t, `^user_`, res.Author.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)

	_, err = s.Register(ctx, "ada@example.com", "another one", "Ada Again")
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := s.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	p, err := s.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Author.ID, p.AuthorID)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.True(t, p.Can(ScopeLibrary))
	assert.True(t, p.Can(ScopePreview))
	assert.False(t, p.Can("admin"))

	_, err = s.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	a, err := s.Author(ctx, res.Author.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", a.Email)
	_, err = s.Author(ctx, "user_missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	s := newTestService()
	author := typeid.NewUserID()
	valid := func() Claims {
		return Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   author,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
	}
	sign := func(c Claims, method jwt.SigningMethod, key any) string {
		tok, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return tok
	}

	_, err := s.Verify(sign(valid(), jwt.SigningMethodHS256, s.jwtSecret))
	require.NoError(t, err)

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := valid()
	noExpiry.ExpiresAt = nil
	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"
	diagramSubject := valid()
	diagramSubject.Subject = typeid.NewDiagramID()

	tests := map[string]string{
		"other secret":     sign(valid(), jwt.SigningMethodHS256, []byte("other-secret")),
		"hs512":            sign(valid(), jwt.SigningMethodHS512, s.jwtSecret),
		"expired":          sign(expired, jwt.SigningMethodHS256, s.jwtSecret),
		"no expiry":        sign(noExpiry, jwt.SigningMethodHS256, s.jwtSecret),
		"other issuer":     sign(otherIssuer, jwt.SigningMethodHS256, s.jwtSecret),
		"not an author id": sign(diagramSubject, jwt.SigningMethodHS256, s.jwtSecret),
		"garbage":          "nope",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyUsesServiceClock(t *testing.T) {
	s := newTestService()
	res, err := s.Register(context.Background(), "clock@example.com", "password1", "Clock")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = s.Verify(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func post(h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b)))
	return rec
}

func TestHandlerValidation(t *testing.T) {
	h := NewHandler(newTestService())

	tests := []struct {
		name   string
		body   credentials
		status int
	}{
		{"missing name", credentials{Email: "a@b.co", Password: "longenough"}, http.StatusBadRequest},
		{"bad email", credentials{Email: "not-an-email", Password: "longenough", DisplayName: "A"}, http.StatusBadRequest},
		{"short password", credentials{Email: "a@b.co", Password: "short", DisplayName: "A"}, http.StatusBadRequest},
		{"ok", credentials{Email: " A@B.co ", Password: "longenough", DisplayName: "A"}, http.StatusCreated},
		{"duplicate after normalising", credentials{Email: "a@b.co", Password: "longenough", DisplayName: "B"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, post(h.Register, tt.body).Code)
		})
	}

	rec := post(h.Login, credentials{Email: "A@b.co", Password: "longenough"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = post(h.Login, credentials{Email: "a@b.co", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware(t *testing.T) {
	s := newTestService()
	res, err := s.Register(context.Background(), "m@example.com", "password1", "M")
	require.NoError(t, err)
	previewOnly, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   res.Author.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scopes: []string{ScopePreview},
	}).SignedString(s.jwtSecret)
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = AuthorIDFromContext(r.Context())
	})

	tests := []struct {
		name     string
		header   string
		query    string
		required int
		optional string
	}{
		{"no token", "", "", http.StatusUnauthorized, ""},
		{"bearer", "Bearer " + res.Token, "", http.StatusOK, res.Author.ID},
		{"query token", "", "?token=" + res.Token, http.StatusOK, res.Author.ID},
		{"wrong scheme", "Basic " + res.Token, "", http.StatusUnauthorized, ""},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized, ""},
		{"missing scope", "Bearer " + previewOnly, "", http.StatusForbidden, res.Author.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			seen = ""
			rec := httptest.NewRecorder()
			s.RequireScope(ScopeLibrary)(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.required, rec.Code)

			seen = "unset"
			rec = httptest.NewRecorder()
			s.OptionalAuth(next).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.optional, seen)
		})
	}
}

func TestMe(t *testing.T) {
	s := newTestService()
	res, err := s.Register(context.Background(), "me@example.com", "password1", "Me")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rec := httptest.NewRecorder()
	s.RequireScope(ScopeLibrary)(http.HandlerFunc(NewHandler(s).Me)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body meResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Author)
	assert.Equal(t, "me@example.com", body.Author.Email)
	assert.ElementsMatch(t, []string{ScopeLibrary, ScopePreview}, body.Scopes)
}
