package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yukikurage/enterprise-core-api/internal/config"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
)

var (
	// ErrInvalidToken is the only credential failure a presenter ever sees.
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrExpired         = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrBadSignature    = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrMalformedClaims = fmt.Errorf("%w: malformed claims", ErrInvalidToken)
)

// Claims is the access token payload. Subject is the user id.
type Claims struct {
	TenantID    string   `json:"tenant_id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permission"`
	jwt.RegisteredClaims
}

// Subject identifies whom a credential is issued to.
type Subject struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
}

// Credential is an access token plus its companion refresh token. Only
// RefreshTokenHash is persisted.
type Credential struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenHash      string
	RefreshTokenExpiresAt time.Time
}

type CodecOption func(*Codec)

// WithClock overrides the codec's time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// Codec issues and verifies HS256 access tokens and mints refresh tokens.
// It is immutable after construction.
type Codec struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

func NewCodec(cfg config.JWTConfig, opts ...CodecOption) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Codec{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Issue signs an access token for subject carrying permissions and mints a
// fresh refresh token.
func (c *Codec) Issue(subject Subject, permissions []string) (*Credential, error) {
	if subject.UserID == uuid.Nil || subject.TenantID == uuid.Nil {
		return nil, errors.New("auth: subject requires user and tenant ids")
	}
	now := c.now()
	accessExp := now.Add(c.accessTTL)

	perms := make([]string, len(permissions))
	copy(perms, permissions)

	claims := Claims{
		TenantID:    subject.TenantID.String(),
		Email:       subject.Email,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	return &Credential{
		AccessToken:           signed,
		AccessTokenExpiresAt:  claims.ExpiresAt.Time,
		RefreshToken:          refresh,
		RefreshTokenHash:      HashRefreshToken(refresh),
		RefreshTokenExpiresAt: now.Add(c.refreshTTL),
	}, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry and returns
// the caller the token describes.
func (c *Codec) Verify(token string) (tenancy.Caller, error) {
	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return tenancy.Caller{}, classify(err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return tenancy.Caller{}, ErrMalformedClaims
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return tenancy.Caller{}, ErrMalformedClaims
	}

	caller := tenancy.ForUser(userID, tenantID)
	caller.Email = claims.Email
	caller.Permissions = claims.Permissions
	if caller.Permissions == nil {
		caller.Permissions = []string{}
	}
	return caller, nil
}

// RefreshExpired reports whether a refresh token expiring at exp is no
// longer usable.
func (c *Codec) RefreshExpired(exp *time.Time) bool {
	return exp == nil || !c.now().Before(*exp)
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	default:
		return ErrMalformedClaims
	}
}

func newRefreshToken() (string, error) {
	buf := make([]byte, constants.RefreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashRefreshToken returns the value stored server-side for a refresh token.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
