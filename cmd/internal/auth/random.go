package auth

import "crypto/ed25519"

// CryptoRandomService is the default RandomService, backed by
// crypto/ed25519's own key generation (which reads from crypto/rand).
type CryptoRandomService struct{}

// Ed25519Seed returns a fresh CSPRNG-sourced 32-byte seed.
func (CryptoRandomService) Ed25519Seed() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return priv.Seed(), nil
}
