package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrInvalidPrivateKeyFormat is returned by Sign when the signing key
	// material cannot be used to produce a signature.
	ErrInvalidPrivateKeyFormat = errors.New("invalid private key format")
	// ErrEncoding is returned by Sign when header/claims cannot be encoded.
	ErrEncoding = errors.New("token encoding failed")

	// ErrHeaderDecoding is returned by ExtractKeyID when the header
	// segment is not valid base64url JSON.
	ErrHeaderDecoding = errors.New("token header decoding failed")
	// ErrKeyIDMissing is returned by ExtractKeyID when the header has no kid.
	ErrKeyIDMissing = errors.New("token missing kid")
	// ErrWrongKeyIDFormat is returned by ExtractKeyID when kid is not a valid ulid.
	ErrWrongKeyIDFormat = errors.New("token kid is not a valid identifier")

	// ErrKeyPairIDsDoNotMatch is returned by Verify when the token's kid
	// does not match the verifying key supplied by the caller.
	ErrKeyPairIDsDoNotMatch = errors.New("token kid does not match supplied key")
	// ErrDecoding covers signature mismatch, tampering, expiry, and
	// audience/issuer mismatch surfaced by the underlying JWT library.
	ErrDecoding = errors.New("token decoding failed")
	// ErrInvalidClaims is returned when the payload decodes but its
	// fields don't parse into domain types.
	ErrInvalidClaims = errors.New("token claims invalid")
)
