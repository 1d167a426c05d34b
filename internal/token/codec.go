package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Username string `json:"username"`
	Kind     Kind   `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Codec подписывает и проверяет токены. Безопасен для конкурентного использования.
type Codec struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	method  jwt.SigningMethod
	leeway  time.Duration
	now     func() time.Time
}

// Option настраивает Codec.
type Option func(*Codec)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithLeeway задаёт допуск рассинхронизации часов при проверке exp/iat.
func WithLeeway(d time.Duration) Option {
	return func(c *Codec) { c.leeway = d }
}

// NewCodec создаёт Codec для RSA-алгоритма alg (RS256/RS384/RS512).
// private может быть nil — тогда Codec умеет только проверять.
func NewCodec(private *rsa.PrivateKey, public *rsa.PublicKey, alg string, opts ...Option) (*Codec, error) {
	const op = "token.codec.NewCodec"

	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodRSA)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported algorithm %q", op, alg)
	}

	if public == nil {
		if private == nil {
			return nil, fmt.Errorf("%s: no keys provided", op)
		}
		public = &private.PublicKey
	}

	c := &Codec{
		private: private,
		public:  public,
		method:  method,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Encode дополняет payload claim'ами iat=now (UTC) и exp=iat+expiry и подписывает
// его приватным ключом.
func (c *Codec) Encode(p Payload, expiry time.Duration) (string, error) {
	tok, _, err := c.encode(p, expiry)
	return tok, err
}

func (c *Codec) encode(p Payload, expiry time.Duration) (string, Payload, error) {
	const op = "token.codec.Encode"

	if c.private == nil {
		return "", Payload{}, fmt.Errorf("%s: codec has no private key", op)
	}

	if expiry <= 0 {
		return "", Payload{}, fmt.Errorf("%s: non-positive expiry %s", op, expiry)
	}

	iat := jwt.NewNumericDate(c.now().UTC())
	exp := jwt.NewNumericDate(iat.Add(expiry))

	cl := claims{
		Username: p.Username,
		Kind:     p.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(c.method, cl).SignedString(c.private)
	if err != nil {
		return "", Payload{}, fmt.Errorf("%s: %w", op, err)
	}

	p.IssuedAt = iat.UTC()
	p.ExpiresAt = exp.UTC()

	return signed, p, nil
}

// Decode проверяет подпись, алгоритм и срок действия и возвращает payload.
// Ошибки: ErrTokenExpired — срок истёк; ErrInvalidToken — всё остальное.
func (c *Codec) Decode(tokenStr string) (Payload, error) {
	const op = "token.codec.Decode"

	cl := &claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, cl,
		func(*jwt.Token) (any, error) { return c.public, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Payload{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return Payload{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if !parsed.Valid || cl.Subject == "" || cl.IssuedAt == nil {
		return Payload{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return Payload{
		Subject:   cl.Subject,
		Username:  cl.Username,
		Kind:      cl.Kind,
		IssuedAt:  cl.IssuedAt.UTC(),
		ExpiresAt: cl.ExpiresAt.UTC(),
	}, nil
}
