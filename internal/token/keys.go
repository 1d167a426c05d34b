package token

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/go-microblog/internal/config"
)

// LoadKeys читает PEM-пару ключей с диска.
func LoadKeys(privatePath, publicPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	const op = "token.keys.LoadKeys"

	privPEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: private key: %w", op, err)
	}

	pubPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: public key: %w", op, err)
	}

	if priv.PublicKey.N.Cmp(pub.N) != 0 || priv.PublicKey.E != pub.E {
		return nil, nil, fmt.Errorf("%s: public key does not match private key", op)
	}

	return priv, pub, nil
}

// NewFromConfig загружает ключи и собирает Issuer по секции auth конфига.
func NewFromConfig(cfg config.AuthConfig) (*Issuer, error) {
	const op = "token.keys.NewFromConfig"

	priv, pub, err := LoadKeys(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	codec, err := NewCodec(priv, pub, cfg.Algorithm, WithLeeway(cfg.Leeway))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewIssuer(codec, cfg.AccessTokenTTL, cfg.RefreshTokenTTL), nil
}
