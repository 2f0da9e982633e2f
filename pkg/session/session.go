package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultCookieName = "faucet_session"

var ErrNoSession = errors.New("no session cookie found")

type Claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Session identifies one browser's form.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Issuer signs session cookies with an HMAC key.
type Issuer struct {
	signingKey   []byte
	ttl          time.Duration
	cookieName   string
	cookieDomain string
	secure       bool
	now          func() time.Time
}

type Option func(*Issuer)

func WithCookieName(name string) Option {
	return func(i *Issuer) {
		if name != "" {
			i.cookieName = name
		}
	}
}

func WithCookieDomain(domain string) Option {
	return func(i *Issuer) {
		i.cookieDomain = domain
	}
}

// WithSecureCookie marks the cookie Secure, required when serving over https.
func WithSecureCookie(secure bool) Option {
	return func(i *Issuer) {
		i.secure = secure
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func NewIssuer(signingKey []byte, ttl time.Duration, opts ...Option) Issuer {
	i := Issuer{
		signingKey: signingKey,
		ttl:        ttl,
		cookieName: DefaultCookieName,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(&i)
	}

	return i
}

func (i Issuer) TTL() time.Duration {
	return i.ttl
}

// New starts a session and returns it with its signed token.
func (i Issuer) New() (*Session, string, error) {
	now := i.now()
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(i.ttl),
	}

	claims := Claims{
		SID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session token: %w", err)
	}
	return session, token, nil
}

// Verify checks the token signature and expiry and returns its session.
func (i Issuer) Verify(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.signingKey, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SID == "" {
		return nil, errors.New("invalid session token")
	}

	return &Session{
		ID:        claims.SID,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// FromRequest verifies the session cookie on r.
func (i Issuer) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(i.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return i.Verify(cookie.Value)
}

func (i Issuer) WriteCookie(w http.ResponseWriter, session *Session, token string) {
	cookie := &http.Cookie{
		Name:     i.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		Secure:   i.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if i.cookieDomain != "" {
		cookie.Domain = i.cookieDomain
	}

	http.SetCookie(w, cookie)
}
