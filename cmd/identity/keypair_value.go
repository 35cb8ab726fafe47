package identity

import (
	"crypto/ed25519"
	"encoding/pem"
)

const pemBlockType = "PRIVATE KEY"

// KeyPairValue wraps an Ed25519 private key expanded from a 32-byte
// signing seed. The verifying
// (public) key is derived on demand; private material never leaves this
// type except transiently, for signing or PEM materialization.
type KeyPairValue struct {
	seed ed25519.PrivateKey // ed25519.NewKeyFromSeed output, len == ed25519.PrivateKeySize
}

// NewKeyPairValue wraps a 32-byte Ed25519 seed freshly produced by a
// RandomService-equivalent CSPRNG.
func NewKeyPairValue(seed []byte) (KeyPairValue, error) {
	if len(seed) != ed25519.SeedSize {
		return KeyPairValue{}, OpError{Op: "identity.NewKeyPairValue", Kind: ErrInvalidInput, Msg: "invalid_private_key_format"}
	}
	return KeyPairValue{seed: ed25519.NewKeyFromSeed(seed)}, nil
}

// KeyPairValueFromPEM parses a PKCS#8 PEM block wrapping an Ed25519 private
// key, as produced by PEM(). Fails with InvalidPrivateKeyFormat.
func KeyPairValueFromPEM(s string) (KeyPairValue, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != pemBlockType {
		return KeyPairValue{}, OpError{Op: "identity.KeyPairValueFromPEM", Kind: ErrInvalidInput, Msg: "invalid_private_key_format"}
	}
	priv, err := parsePKCS8Ed25519(block.Bytes)
	if err != nil {
		return KeyPairValue{}, OpError{Op: "identity.KeyPairValueFromPEM", Kind: ErrInvalidInput, Msg: "invalid_private_key_format"}
	}
	return KeyPairValue{seed: priv}, nil
}

// PEM materializes the private key as a PKCS#8 PEM block. This should only
// ever be called transiently, for signing/verification handoff; callers
// must not log or persist the result.
func (v KeyPairValue) PEM() (string, error) {
	der, err := marshalPKCS8Ed25519(v.seed)
	if err != nil {
		return "", OpError{Op: "identity.KeyPairValue.PEM", Kind: ErrInvalidInput, Msg: "encoding"}
	}
	block := &pem.Block{Type: pemBlockType, Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// PrivateKey exposes the raw Ed25519 private key for signing.
func (v KeyPairValue) PrivateKey() ed25519.PrivateKey { return v.seed }

// PublicKey derives the Ed25519 verifying key.
func (v KeyPairValue) PublicKey() ed25519.PublicKey {
	return v.seed.Public().(ed25519.PublicKey)
}

const pubPEMBlockType = "PUBLIC KEY"

// PublicKeyPEM materializes the verifying key alone as a PKIX/SPKI PEM
// block, safe to hand to callers of GetPublicKey: it never exposes the
// private seed.
func (v KeyPairValue) PublicKeyPEM() (string, error) {
	der, err := marshalPKIXEd25519(v.PublicKey())
	if err != nil {
		return "", OpError{Op: "identity.KeyPairValue.PublicKeyPEM", Kind: ErrInvalidInput, Msg: "encoding"}
	}
	block := &pem.Block{Type: pubPEMBlockType, Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}
