package config

import (
	"crypto/rand"
	"math/big"
)

// TokenSource produces a fresh secret when SECRET_KEY is absent.
type TokenSource func() (string, error)

const (
	secretLength   = 50
	secretAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"
)

// RandomToken returns 50 characters drawn uniformly from a 50-symbol
// alphabet with crypto/rand, roughly 282 bits of entropy.
func RandomToken() (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	buf := make([]byte, secretLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return string(buf), nil
}
