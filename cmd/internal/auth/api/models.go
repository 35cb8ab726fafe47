package authapi

import "arc/cmd/identity"

type signUpRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

type signInRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

type refreshRequest struct {
	SessionID string `json:"session_id"`
}

type userResponse struct {
	ID   string `json:"id"`
	Name string `json:"user_name"`
	Role string `json:"role"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{ID: u.ID().String(), Name: u.Name().String(), Role: u.Role().String()}
}

type sessionResponse struct {
	ID        string `json:"id"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func toSessionResponse(s identity.Session) sessionResponse {
	resp := sessionResponse{ID: s.ID().String()}
	if s.IsActive() {
		resp.ExpiresAt = s.ExpiresAt().UTC().Format(rfc3339Milli)
	}
	return resp
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

type authTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type signUpResponse struct {
	User    userResponse    `json:"user"`
	Session sessionResponse `json:"session"`
	authTokenResponse
}

type signInResponse struct {
	Session sessionResponse `json:"session"`
	authTokenResponse
}

type refreshResponse struct {
	Session sessionResponse `json:"session"`
	authTokenResponse
}

type meResponse struct {
	Claims claimsResponse `json:"claims"`
}

type claimsResponse struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

func toClaimsResponse(c identity.UserClaims) claimsResponse {
	return claimsResponse{UserID: c.ID.String(), UserName: c.Name.String(), Role: c.Role.String()}
}

type publicKeyResponse struct {
	KeyPairID string `json:"key_pair_id"`
	PublicKey string `json:"public_key_pem"`
}

type rotateKeyPairsResponse struct {
	ExpiringKeyPairID string `json:"expiring_key_pair_id,omitempty"`
	ActiveKeyPairID   string `json:"active_key_pair_id"`
}
