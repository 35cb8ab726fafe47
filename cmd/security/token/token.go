package token

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Claims is the access-token payload: aud, iss, exp, sub, name, role.
type Claims struct {
	Audience string
	Issuer   string
	Expiry   time.Time
	Subject  string
	Name     string
	Role     string
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// Sign encodes header+claims and signs with priv, stamping header.kid=kid.
func Sign(priv ed25519.PrivateKey, kid string, c Claims) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", ErrInvalidPrivateKeyFormat
	}

	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{c.Audience},
			Issuer:    c.Issuer,
			Subject:   c.Subject,
			ExpiresAt: jwt.NewNumericDate(c.Expiry),
		},
		Name: c.Name,
		Role: c.Role,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tok.Header["kid"] = kid

	signed, err := tok.SignedString(priv)
	if err != nil {
		return "", ErrEncoding
	}
	return signed, nil
}

// ExtractKeyID parses the header only and returns the kid as a ULID string.
// It does not verify the signature: callers use the result to look up the
// verifying key before calling Verify.
func ExtractKeyID(signed string) (string, error) {
	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		return "", ErrHeaderDecoding
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrHeaderDecoding
	}

	var header struct {
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", ErrHeaderDecoding
	}
	if header.Kid == "" {
		return "", ErrKeyIDMissing
	}
	if _, err := ulid.ParseStrict(header.Kid); err != nil {
		return "", ErrWrongKeyIDFormat
	}
	return header.Kid, nil
}

// Verify checks alg=EdDSA, exact audience/issuer, exp>now, the signature
// against pub, and that the token's kid equals expectedKid. Returns the
// parsed Claims on success.
func Verify(signed string, pub ed25519.PublicKey, expectedKid, audience, issuer string, now time.Time) (Claims, error) {
	kid, err := ExtractKeyID(signed)
	if err != nil {
		return Claims{}, err
	}
	if kid != expectedKid {
		return Claims{}, ErrKeyPairIDsDoNotMatch
	}

	var claims jwtClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	_, err = parser.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		return pub, nil
	})
	if err != nil {
		return Claims{}, ErrDecoding
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalidClaims
	}
	if claims.Subject == "" || claims.Name == "" || claims.Role == "" {
		return Claims{}, ErrInvalidClaims
	}

	return Claims{
		Audience: audience,
		Issuer:   issuer,
		Expiry:   exp.Time,
		Subject:  claims.Subject,
		Name:     claims.Name,
		Role:     claims.Role,
	}, nil
}
