package identity

import (
	"errors"
	"time"

	"arc/cmd/security/token"
)

// tokenAudience and tokenIssuer are the fixed aud/iss values every access
// token carries. They are process-wide settings (see ConfigureTokenAudience)
// rather than per-token fields: Arc issues tokens for exactly one audience
// and one issuer.
var (
	tokenAudience = "arc"
	tokenIssuer   = "arc"
)

// ConfigureTokenAudience overrides the fixed audience/issuer used by Sign
// and verification. Called once at process start from configuration.
func ConfigureTokenAudience(audience, issuer string) {
	if audience != "" {
		tokenAudience = audience
	}
	if issuer != "" {
		tokenIssuer = issuer
	}
}

// AccessToken is the in-memory representation of a short-lived bearer
// credential. It carries no id of its own: the bearer proves identity via
// the signature, keyed by the signing key-pair's id (kid).
type AccessToken struct {
	claims    UserClaims
	expiresAt time.Time
}

// NewAccessToken constructs an in-memory token bound to claims, expiring at expiresAt.
func NewAccessToken(claims UserClaims, expiresAt time.Time) AccessToken {
	return AccessToken{claims: claims, expiresAt: expiresAt}
}

// Claims returns the token's embedded user claims.
func (t AccessToken) Claims() UserClaims { return t.claims }

// ExpiresAt returns the token's expiry instant.
func (t AccessToken) ExpiresAt() time.Time { return t.expiresAt }

// Sign encodes and signs this token with active's private key, stamping
// header.kid = active.ID().
func (t AccessToken) Sign(active KeyPair) (string, error) {
	if !active.IsActive() {
		return "", OpError{Op: "identity.AccessToken.Sign", Kind: ErrNotActive}
	}
	signed, err := token.Sign(active.Value().PrivateKey(), active.ID().String(), token.Claims{
		Audience: tokenAudience,
		Issuer:   tokenIssuer,
		Expiry:   t.expiresAt,
		Subject:  t.claims.ID.String(),
		Name:     t.claims.Name.String(),
		Role:     t.claims.Role.String(),
	})
	if err != nil {
		return "", mapTokenErr("identity.AccessToken.Sign", err)
	}
	return signed, nil
}

// ExtractAccessTokenKeyID parses the header only and returns the signing
// key-pair's id. It must not verify the signature: callers use this value
// to fetch the key-pair before verification.
func ExtractAccessTokenKeyID(signed string) (Identifier[KeyPair], error) {
	kid, err := token.ExtractKeyID(signed)
	if err != nil {
		return Identifier[KeyPair]{}, mapTokenErr("identity.ExtractAccessTokenKeyID", err)
	}
	return ParseIdentifier[KeyPair](kid)
}

// VerifyAccessToken verifies signed against pair's public key, requiring
// the token's kid to equal pair's id, alg=EdDSA, exact audience/issuer, and
// exp > now. Valid for both Active and Expiring key-pairs: the caller is
// responsible for rejecting Expired/Revoked before calling this.
func VerifyAccessToken(signed string, pair KeyPair, now time.Time) (UserClaims, error) {
	claims, err := token.Verify(signed, pair.Value().PublicKey(), pair.ID().String(), tokenAudience, tokenIssuer, now)
	if err != nil {
		return UserClaims{}, mapTokenErr("identity.VerifyAccessToken", err)
	}

	userID, err := ParseIdentifier[User](claims.Subject)
	if err != nil {
		return UserClaims{}, OpError{Op: "identity.VerifyAccessToken", Kind: ErrInvalidInput, Msg: "invalid_claims"}
	}
	name, err := NewUserName(claims.Name)
	if err != nil {
		return UserClaims{}, OpError{Op: "identity.VerifyAccessToken", Kind: ErrInvalidInput, Msg: "invalid_claims"}
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return UserClaims{}, OpError{Op: "identity.VerifyAccessToken", Kind: ErrInvalidInput, Msg: "invalid_claims"}
	}

	return UserClaims{ID: userID, Name: name, Role: role}, nil
}

func mapTokenErr(op string, err error) error {
	switch {
	case errors.Is(err, token.ErrInvalidPrivateKeyFormat):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid_private_key_format"}
	case errors.Is(err, token.ErrEncoding):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "encoding"}
	case errors.Is(err, token.ErrHeaderDecoding):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "header_decoding"}
	case errors.Is(err, token.ErrKeyIDMissing):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "key_id_missing"}
	case errors.Is(err, token.ErrWrongKeyIDFormat):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "wrong_key_id_format"}
	case errors.Is(err, token.ErrKeyPairIDsDoNotMatch):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "key_pair_ids_do_not_match"}
	case errors.Is(err, token.ErrDecoding):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "decoding"}
	case errors.Is(err, token.ErrInvalidClaims):
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid_claims"}
	default:
		return err
	}
}
