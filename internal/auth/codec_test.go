package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/enterprise-core-api/internal/config"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             testSecret,
		Issuer:             "EnterpriseCore",
		Audience:           "EnterpriseCore",
		AccessTokenMinutes: 60,
		RefreshTokenDays:   7,
	}
}

func newTestCodec(t *testing.T, now time.Time, mutate ...func(*config.JWTConfig)) *Codec {
	t.Helper()
	cfg := testJWTConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewCodec(cfg, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return c
}

func testSubject() Subject {
	return Subject{UserID: uuid.New(), TenantID: uuid.New(), Email: "u@example.com"}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)
	subject := testSubject()
	perms := []string{"projects.create", "tasks.view"}

	cred, err := codec.Issue(subject, perms)
	require.NoError(t, err)
	require.NotEmpty(t, cred.AccessToken)
	require.WithinDuration(t, now.Add(time.Hour), cred.AccessTokenExpiresAt, time.Second)
	require.WithinDuration(t, now.Add(7*24*time.Hour), cred.RefreshTokenExpiresAt, time.Second)

	caller, err := codec.Verify(cred.AccessToken)
	require.NoError(t, err)
	require.Equal(t, subject.UserID, caller.UserID)
	require.Equal(t, subject.TenantID, caller.TenantID)
	require.Equal(t, subject.Email, caller.Email)
	require.Equal(t, perms, caller.Permissions)
}

func TestIssueWithNoPermissions(t *testing.T) {
	codec := newTestCodec(t, time.Now())

	cred, err := codec.Issue(testSubject(), nil)
	require.NoError(t, err)

	caller, err := codec.Verify(cred.AccessToken)
	require.NoError(t, err)
	require.Empty(t, caller.Permissions)
	require.False(t, caller.HasPermission("tasks.view"))
}

func TestIssueRequiresSubjectIDs(t *testing.T) {
	codec := newTestCodec(t, time.Now())

	_, err := codec.Issue(Subject{UserID: uuid.New()}, nil)
	require.Error(t, err)
}

func TestRefreshTokenShape(t *testing.T) {
	codec := newTestCodec(t, time.Now())

	first, err := codec.Issue(testSubject(), nil)
	require.NoError(t, err)
	second, err := codec.Issue(testSubject(), nil)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(first.RefreshToken)
	require.NoError(t, err)
	require.Len(t, raw, constants.RefreshTokenBytes)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, HashRefreshToken(first.RefreshToken), first.RefreshTokenHash)
	require.NotContains(t, first.RefreshTokenHash, first.RefreshToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-3 * time.Hour)
	cred, err := newTestCodec(t, issuedAt).Issue(testSubject(), []string{"tasks.view"})
	require.NoError(t, err)

	_, err = newTestCodec(t, issuedAt.Add(61*time.Minute)).Verify(cred.AccessToken)
	require.ErrorIs(t, err, ErrExpired)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = newTestCodec(t, issuedAt.Add(59*time.Minute)).Verify(cred.AccessToken)
	require.NoError(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	now := time.Now()
	cred, err := newTestCodec(t, now, func(c *config.JWTConfig) {
		c.Secret = strings.Repeat("z", 40)
	}).Issue(testSubject(), nil)
	require.NoError(t, err)

	_, err = newTestCodec(t, now).Verify(cred.AccessToken)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	cred, err := codec.Issue(testSubject(), []string{"tasks.view"})
	require.NoError(t, err)

	parts := strings.Split(cred.AccessToken, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), "tasks.view", "tasks.edit", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = codec.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)
	subject := testSubject()
	claims := Claims{
		TenantID: subject.TenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			Issuer:    "EnterpriseCore",
			Audience:  jwt.ClaimStrings{"EnterpriseCore"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = codec.Verify(hs512)
	require.ErrorIs(t, err, ErrBadSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Verify(none)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingClaims(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)

	sign := func(claims Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	registered := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "EnterpriseCore",
		Audience:  jwt.ClaimStrings{"EnterpriseCore"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	_, err := codec.Verify(sign(Claims{RegisteredClaims: registered}))
	require.ErrorIs(t, err, ErrMalformedClaims)

	noExpiry := registered
	noExpiry.ExpiresAt = nil
	_, err = codec.Verify(sign(Claims{TenantID: uuid.NewString(), RegisteredClaims: noExpiry}))
	require.ErrorIs(t, err, ErrMalformedClaims)

	wrongAudience := registered
	wrongAudience.Audience = jwt.ClaimStrings{"SomeoneElse"}
	_, err = codec.Verify(sign(Claims{TenantID: uuid.NewString(), RegisteredClaims: wrongAudience}))
	require.ErrorIs(t, err, ErrMalformedClaims)

	wrongIssuer := registered
	wrongIssuer.Issuer = "SomeoneElse"
	_, err = codec.Verify(sign(Claims{TenantID: uuid.NewString(), RegisteredClaims: wrongIssuer}))
	require.ErrorIs(t, err, ErrMalformedClaims)

	_, err = codec.Verify("not-a-token")
	require.ErrorIs(t, err, ErrMalformedClaims)
}

func TestNewCodecValidatesConfig(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = "short"
	_, err := NewCodec(cfg)
	require.ErrorIs(t, err, config.ErrSigningKeyTooShort)

	cfg = testJWTConfig()
	cfg.Secret = ""
	_, err = NewCodec(cfg)
	require.ErrorIs(t, err, config.ErrMissingSigningKey)
}

func TestRefreshExpired(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)

	past := now.Add(-time.Second)
	future := now.Add(time.Minute)
	require.True(t, codec.RefreshExpired(nil))
	require.True(t, codec.RefreshExpired(&past))
	require.False(t, codec.RefreshExpired(&future))
}
