package identity

import "time"

// Session is a tagged union over the three states a session may be in.
// Exactly one of the Active/Revoked/Expired pointers is non-nil.
type Session struct {
	id       Identifier[Session]
	active   *sessionActive
	revoked  *sessionRevoked
	expired  *sessionExpired
}

type sessionActive struct {
	claims    UserClaims
	expiresAt time.Time
}

type sessionRevoked struct {
	revokedAt time.Time
}

type sessionExpired struct {
	expiredAt time.Time
}

// NewActiveSession mints a brand-new Active session for claims, expiring
// session_ttl from now.
func NewActiveSession(now time.Time, claims UserClaims, sessionTTL time.Duration) (Session, error) {
	id, err := NewIdentifier[Session](now)
	if err != nil {
		return Session{}, err
	}
	return Session{
		id:     id,
		active: &sessionActive{claims: claims, expiresAt: now.Add(sessionTTL)},
	}, nil
}

// RestoreSession reconstructs a session from storage. revokedAt, if non-nil,
// dominates: a session with a non-null revoked_at is Revoked regardless of
// expires_at. Otherwise the session is Active if expiresAt is strictly in
// the future, else Expired. Reconstruction is total: it never errors.
func RestoreSession(id Identifier[Session], claims UserClaims, expiresAt time.Time, revokedAt *time.Time, now time.Time) Session {
	if revokedAt != nil {
		return Session{id: id, revoked: &sessionRevoked{revokedAt: *revokedAt}}
	}
	if expiresAt.After(now) {
		return Session{id: id, active: &sessionActive{claims: claims, expiresAt: expiresAt}}
	}
	return Session{id: id, expired: &sessionExpired{expiredAt: expiresAt}}
}

// ID returns the session's identifier; it never changes across revoke, and
// refresh mints a different one for the new Active half.
func (s Session) ID() Identifier[Session] { return s.id }

// IsActive reports whether this session is in the Active state.
func (s Session) IsActive() bool { return s.active != nil }

// IsRevoked reports whether this session is in the Revoked state.
func (s Session) IsRevoked() bool { return s.revoked != nil }

// IsExpired reports whether this session is in the Expired state.
func (s Session) IsExpired() bool { return s.expired != nil }

// Claims returns the session's user claims. Valid only when IsActive.
func (s Session) Claims() UserClaims {
	if s.active == nil {
		return UserClaims{}
	}
	return s.active.claims
}

// ExpiresAt returns the Active session's expiry instant. Valid only when IsActive.
func (s Session) ExpiresAt() time.Time {
	if s.active == nil {
		return time.Time{}
	}
	return s.active.expiresAt
}

// RevokedAt returns the instant this session was revoked. Valid only when IsRevoked.
func (s Session) RevokedAt() time.Time {
	if s.revoked == nil {
		return time.Time{}
	}
	return s.revoked.revokedAt
}

// ExpiredAt returns the instant this session expired. Valid only when IsExpired.
func (s Session) ExpiredAt() time.Time {
	if s.expired == nil {
		return time.Time{}
	}
	return s.expired.expiredAt
}

// Revoke transitions an Active session to Revoked, stamping revoked_at =
// now. Returns ErrNotActive if the session is not Active.
func (s Session) Revoke(now time.Time) (Session, error) {
	if s.active == nil {
		return Session{}, OpError{Op: "identity.Session.Revoke", Kind: ErrNotActive}
	}
	return Session{id: s.id, revoked: &sessionRevoked{revokedAt: now}}, nil
}

// Refresh revokes the current Active session and returns a newly-minted
// Active session with a fresh id, the same user claims, and
// expires_at = now + sessionTTL. The two returned sessions must be
// persisted atomically by the caller.
func (s Session) Refresh(now time.Time, sessionTTL time.Duration) (revokedOld Session, activeNew Session, err error) {
	if s.active == nil {
		return Session{}, Session{}, OpError{Op: "identity.Session.Refresh", Kind: ErrNotActive}
	}
	revokedOld = Session{id: s.id, revoked: &sessionRevoked{revokedAt: now}}
	activeNew, err = NewActiveSession(now, s.active.claims, sessionTTL)
	if err != nil {
		return Session{}, Session{}, err
	}
	return revokedOld, activeNew, nil
}

// GenerateAccessToken returns a new AccessToken bound to this session's
// user claims, expiring access_ttl from now. Valid only when IsActive.
func (s Session) GenerateAccessToken(now time.Time, accessTTL time.Duration) (AccessToken, error) {
	if s.active == nil {
		return AccessToken{}, OpError{Op: "identity.Session.GenerateAccessToken", Kind: ErrNotActive}
	}
	return NewAccessToken(s.active.claims, now.Add(accessTTL)), nil
}
