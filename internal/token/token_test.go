package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-microblog/internal/config"
)

var (
	keysOnce sync.Once
	keyA     *rsa.PrivateKey
	keyB     *rsa.PrivateKey
)

// testKeys генерирует две RSA-пары один раз на весь пакет.
func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		var err error
		keyA, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		keyB, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return keyA, keyB
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 500_000_000, time.UTC)

func fixedClock(ts time.Time) func() time.Time { return func() time.Time { return ts } }

func newCodec(t *testing.T, now time.Time) *Codec {
	t.Helper()
	a, _ := testKeys(t)
	c, err := NewCodec(a, &a.PublicKey, "RS256", WithClock(fixedClock(now)))
	require.NoError(t, err)
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newCodec(t, t0)
	in := Payload{Subject: uuid.NewString(), Username: "alice", Kind: KindAccess}

	tok, err := c.Encode(in, 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(tok, "."))

	got, err := c.Decode(tok)
	require.NoError(t, err)

	iat := t0.Truncate(time.Second)
	want := in
	want.IssuedAt = iat
	want.ExpiresAt = iat.Add(15 * time.Minute)
	require.Equal(t, want, got)
}

func TestCodec_Expired(t *testing.T) {
	t.Parallel()

	tok, err := newCodec(t, t0).Encode(Payload{Subject: "u1", Username: "bob"}, time.Minute)
	require.NoError(t, err)

	_, err = newCodec(t, t0.Add(2*time.Minute)).Decode(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_InvalidInputs(t *testing.T) {
	t.Parallel()

	a, b := testKeys(t)
	c := newCodec(t, t0)

	good, err := c.Encode(Payload{Subject: "u1", Username: "bob"}, time.Minute)
	require.NoError(t, err)

	other, err := NewCodec(b, nil, "RS256", WithClock(fixedClock(t0)))
	require.NoError(t, err)
	foreign, err := other.Encode(Payload{Subject: "u1", Username: "bob"}, time.Minute)
	require.NoError(t, err)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"iat": t0.Unix(),
		"exp": t0.Add(time.Minute).Unix(),
	}).SignedString(x509.MarshalPKCS1PublicKey(&a.PublicKey))
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iat": t0.Unix(),
		"exp": t0.Add(time.Minute).Unix(),
	}).SignedString(a)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":         "not-a-token",
		"empty":           "",
		"tampered":        tampered,
		"foreign_key":     foreign,
		"hmac_alg":        hs,
		"missing_subject": noSub,
		"truncated_parts": parts[0] + "." + parts[1],
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := c.Decode(tok)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewCodec_RejectsNonRSA(t *testing.T) {
	t.Parallel()

	a, _ := testKeys(t)

	_, err := NewCodec(a, nil, "HS256")
	require.Error(t, err)

	_, err = NewCodec(nil, nil, "RS256")
	require.Error(t, err)
}

func TestCodec_VerifyOnlyCannotEncode(t *testing.T) {
	t.Parallel()

	a, _ := testKeys(t)
	c, err := NewCodec(nil, &a.PublicKey, "RS256")
	require.NoError(t, err)

	_, err = c.Encode(Payload{Subject: "u1"}, time.Minute)
	require.Error(t, err)
}

func newIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	return NewIssuer(newCodec(t, now), 15*time.Minute, 30*24*time.Hour)
}

// TestIssuer_RefreshIgnoresOverride — refresh-токен всегда живёт refreshTTL,
// access-токен берёт override, если он задан.
func TestIssuer_RefreshIgnoresOverride(t *testing.T) {
	t.Parallel()

	iss := newIssuer(t, t0)
	p := Payload{Subject: "u1", Username: "bob"}

	rt, err := iss.CreateToken(p, KindRefresh, time.Minute)
	require.NoError(t, err)
	rp, err := iss.codec.Decode(rt)
	require.NoError(t, err)
	require.Equal(t, 30*24*time.Hour, rp.ExpiresAt.Sub(rp.IssuedAt))
	require.Equal(t, KindRefresh, rp.Kind)

	at, err := iss.CreateToken(p, KindAccess, 2*time.Minute)
	require.NoError(t, err)
	ap, err := iss.codec.Decode(at)
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, ap.ExpiresAt.Sub(ap.IssuedAt))

	at, err = iss.CreateToken(p, KindAccess, 0)
	require.NoError(t, err)
	ap, err = iss.codec.Decode(at)
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, ap.ExpiresAt.Sub(ap.IssuedAt))

	_, err = iss.CreateToken(p, Kind("session"), 0)
	require.Error(t, err)
}

func TestIssuer_KindDiscrimination(t *testing.T) {
	t.Parallel()

	iss := newIssuer(t, t0)
	pair, err := iss.IssuePair(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = iss.Verify(pair.RefreshToken, KindAccess)
	require.ErrorIs(t, err, ErrKindMismatch)

	_, err = iss.Verify(pair.AccessToken, KindRefresh)
	require.ErrorIs(t, err, ErrKindMismatch)

	p, err := iss.Verify(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	require.Equal(t, KindAccess, p.Kind)
	require.Empty(t, p.WithoutKind().Kind)
}

func TestIssuer_IssuePair_SharesBasePayload(t *testing.T) {
	t.Parallel()

	iss := newIssuer(t, t0)
	uid := uuid.New()

	pair, err := iss.IssuePair(uid, "alice")
	require.NoError(t, err)

	iat := t0.Truncate(time.Second)
	require.Equal(t, iat.Add(15*time.Minute), pair.AccessExpiresAt)
	require.Equal(t, iat.Add(30*24*time.Hour), pair.RefreshExpiresAt)

	ap, err := iss.Verify(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	rp, err := iss.Verify(pair.RefreshToken, KindRefresh)
	require.NoError(t, err)

	require.Equal(t, uid.String(), ap.Subject)
	require.Equal(t, ap.Subject, rp.Subject)
	require.Equal(t, ap.Username, rp.Username)
	require.Equal(t, ap.IssuedAt, rp.IssuedAt)
}

func TestIssuer_VerifyExpiredRefresh(t *testing.T) {
	t.Parallel()

	pair, err := newIssuer(t, t0).IssuePair(uuid.New(), "alice")
	require.NoError(t, err)

	late := newIssuer(t, t0.Add(31*24*time.Hour))
	_, err = late.Verify(pair.RefreshToken, KindRefresh)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func writePEM(t *testing.T, dir, name, typ string, der []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der}), 0o600))
	return path
}

func TestLoadKeys_AndNewFromConfig(t *testing.T) {
	t.Parallel()

	a, b := testKeys(t)
	dir := t.TempDir()

	privPath := writePEM(t, dir, "private.pem", "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(a))
	pubDER, err := x509.MarshalPKIXPublicKey(&a.PublicKey)
	require.NoError(t, err)
	pubPath := writePEM(t, dir, "public.pem", "PUBLIC KEY", pubDER)

	priv, pub, err := LoadKeys(privPath, pubPath)
	require.NoError(t, err)
	require.True(t, priv.Equal(a))
	require.True(t, pub.Equal(&a.PublicKey))

	iss, err := NewFromConfig(config.AuthConfig{
		PrivateKeyPath:  privPath,
		PublicKeyPath:   pubPath,
		Algorithm:       "RS256",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	pair, err := iss.IssuePair(uuid.New(), "alice")
	require.NoError(t, err)
	_, err = iss.Verify(pair.AccessToken, KindAccess)
	require.NoError(t, err)

	otherDER, err := x509.MarshalPKIXPublicKey(&b.PublicKey)
	require.NoError(t, err)
	otherPath := writePEM(t, dir, "other.pem", "PUBLIC KEY", otherDER)

	_, _, err = LoadKeys(privPath, otherPath)
	require.Error(t, err)

	_, _, err = LoadKeys(filepath.Join(dir, "missing.pem"), pubPath)
	require.Error(t, err)
}
