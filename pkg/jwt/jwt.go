// Package jwt firma y verifica los tokens de sesión (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired el token fue válido pero venció.
	ErrExpired = errors.New("jwt: token expirado")
	// ErrInvalid firma, emisor, algoritmo o formato incorrectos.
	ErrInvalid = errors.New("jwt: token inválido")
)

// Config parámetros de firma.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Identity lo que el middleware necesita del token: sujeto y rol.
type Identity struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Signer emite y verifica tokens de un único emisor.
type Signer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner valida la configuración. TTL <= 0 usa una hora.
func NewSigner(cfg Config) (*Signer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &Signer{key: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: cfg.TTL, now: time.Now}, nil
}

// Sign emite un token para el usuario con su rol; devuelve también el vencimiento.
func (s *Signer) Sign(userID, role string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: firmar: %w", err)
	}
	return signed, exp, nil
}

// Verify comprueba firma, algoritmo, emisor y vencimiento.
func (s *Signer) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) { return s.key, nil }, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrExpired
	case err != nil:
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	case c.Subject == "":
		return Identity{}, fmt.Errorf("%w: sin sujeto", ErrInvalid)
	}
	return Identity{UserID: c.Subject, Role: c.Role, ExpiresAt: c.ExpiresAt.Time}, nil
}
