package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arc/cmd/identity"
)

// Service wires the repository contracts and supporting services into
// Arc's six use-cases. It holds no per-request state.
type Service struct {
	db    Transactor
	users UserRepository
	sess  SessionRepository
	keys  KeyPairRepository
	clock TimeService
	rng   RandomService

	sessionTTL time.Duration
	accessTTL  time.Duration
}

// NewService constructs a Service. sessionTTL and accessTTL must be positive.
func NewService(db Transactor, users UserRepository, sess SessionRepository, keys KeyPairRepository, clock TimeService, rng RandomService, sessionTTL, accessTTL time.Duration) *Service {
	return &Service{
		db: db, users: users, sess: sess, keys: keys, clock: clock, rng: rng,
		sessionTTL: sessionTTL, accessTTL: accessTTL,
	}
}

// withTx runs fn against a fresh transaction, committing on success and
// rolling back otherwise. The rollback-after-commit call that pgx
// documents as a no-op is what makes the unconditional defer safe.
func (s *Service) withTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("auth: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("auth: commit tx: %w", err)
	}
	return nil
}

// issueAccessToken loads the current Active key-pair and signs a token for
// session under q. It is always called from inside the caller's
// transaction, so the signing key and the entities it accompanies are
// read/written in one atomic unit.
func (s *Service) issueAccessToken(ctx context.Context, q Querier, now time.Time, session identity.Session) (string, error) {
	active, err := s.keys.GetActive(ctx, q)
	if err != nil {
		return "", err
	}
	tok, err := session.GenerateAccessToken(now, s.accessTTL)
	if err != nil {
		return "", err
	}
	return tok.Sign(active)
}

// SignUpResult is returned by SignUp.
type SignUpResult struct {
	User        identity.User
	Session     identity.Session
	AccessToken string
}

// SignUp creates a new user with the given name and password, then mints
// an initial Active session and signed access token for it. Fails with
// ErrUserAlreadyExists if the name is taken, or ErrActiveKeyPairNotFound
// if no signing key has ever been provisioned.
func (s *Service) SignUp(ctx context.Context, rawName, rawPassword string) (SignUpResult, error) {
	name, err := identity.NewUserName(rawName)
	if err != nil {
		return SignUpResult{}, err
	}
	pw, err := identity.NewPassword(rawPassword)
	if err != nil {
		return SignUpResult{}, err
	}

	now := s.clock.Now()
	hash, err := identity.HashPassword(pw)
	if err != nil {
		return SignUpResult{}, err
	}
	user, err := identity.NewUser(now, name, hash)
	if err != nil {
		return SignUpResult{}, err
	}
	session, err := identity.NewActiveSession(now, user.Claims(), s.sessionTTL)
	if err != nil {
		return SignUpResult{}, err
	}

	var accessToken string
	err = s.withTx(ctx, func(ctx context.Context, q Querier) error {
		if _, getErr := s.users.GetByName(ctx, q, name); getErr == nil {
			return ErrUserAlreadyExists{UserName: name.String()}
		}
		if err := s.users.Save(ctx, q, user); err != nil {
			return err
		}
		if err := s.sess.Save(ctx, q, session); err != nil {
			return err
		}
		accessToken, err = s.issueAccessToken(ctx, q, now, session)
		return err
	})
	if err != nil {
		return SignUpResult{}, err
	}
	return SignUpResult{User: user, Session: session, AccessToken: accessToken}, nil
}

// SignInResult is returned by SignIn.
type SignInResult struct {
	Session     identity.Session
	AccessToken string
}

// SignIn verifies user_name/password and mints a new Active session plus a
// signed access token. "No such user" and "wrong password" are
// indistinguishable: both return ErrWrongCredentials, so a caller cannot
// enumerate valid user names.
func (s *Service) SignIn(ctx context.Context, rawName, rawPassword string) (SignInResult, error) {
	name, err := identity.NewUserName(rawName)
	if err != nil {
		return SignInResult{}, ErrWrongCredentials
	}
	pw, err := identity.NewPassword(rawPassword)
	if err != nil {
		return SignInResult{}, ErrWrongCredentials
	}

	now := s.clock.Now()
	var session identity.Session
	var accessToken string

	err = s.withTx(ctx, func(ctx context.Context, q Querier) error {
		user, err := s.users.GetByName(ctx, q, name)
		if err != nil {
			return ErrWrongCredentials
		}
		if !user.PasswordHash().Verify(pw) {
			return ErrWrongCredentials
		}
		session, err = identity.NewActiveSession(now, user.Claims(), s.sessionTTL)
		if err != nil {
			return err
		}
		if err := s.sess.Save(ctx, q, session); err != nil {
			return err
		}
		accessToken, err = s.issueAccessToken(ctx, q, now, session)
		return err
	})
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{Session: session, AccessToken: accessToken}, nil
}

// RefreshResult is returned by Refresh.
type RefreshResult struct {
	Session     identity.Session
	AccessToken string
}

// Refresh exchanges a live session id for a fresh one: the presented
// session is revoked and a new Active session with the same user claims
// is minted in the same transaction. A session id that is not a valid
// identifier fails validation before any repository call; a well-formed id
// fails with ErrSessionNotFound, ErrSessionRevoked, ErrSessionExpired, or
// ErrSessionUserGone.
func (s *Service) Refresh(ctx context.Context, rawSessionID string) (RefreshResult, error) {
	id, err := identity.ParseIdentifier[identity.Session](rawSessionID)
	if err != nil {
		return RefreshResult{}, err
	}

	now := s.clock.Now()
	var activeNew identity.Session
	var accessToken string

	err = s.withTx(ctx, func(ctx context.Context, q Querier) error {
		session, err := s.sess.GetByID(ctx, q, id)
		if err != nil {
			return err
		}
		switch {
		case session.IsRevoked():
			return ErrSessionRevoked
		case session.IsExpired():
			return ErrSessionExpired
		}

		if _, err := s.users.GetByID(ctx, q, session.Claims().ID); err != nil {
			return ErrSessionUserGone
		}

		revokedOld, fresh, err := session.Refresh(now, s.sessionTTL)
		if err != nil {
			return err
		}
		if err := s.sess.Save(ctx, q, revokedOld); err != nil {
			return err
		}
		if err := s.sess.Save(ctx, q, fresh); err != nil {
			return err
		}
		activeNew = fresh
		accessToken, err = s.issueAccessToken(ctx, q, now, fresh)
		return err
	})
	if err != nil {
		return RefreshResult{}, err
	}
	return RefreshResult{Session: activeNew, AccessToken: accessToken}, nil
}

// AuthorizeResult is returned by Authorize.
type AuthorizeResult struct {
	Claims identity.UserClaims
}

// Authorize verifies a signed access token end to end: it extracts the
// kid from the token header (without trusting it), loads that key-pair,
// rejects Expired/Revoked key-pairs, then verifies the signature,
// audience, issuer, and expiry against the key-pair's public half.
// Both Active and Expiring key-pairs verify successfully, so a token
// signed moments before a rotation still authorizes its bearer.
func (s *Service) Authorize(ctx context.Context, signedToken string) (AuthorizeResult, error) {
	kid, err := identity.ExtractAccessTokenKeyID(signedToken)
	if err != nil {
		return AuthorizeResult{}, err
	}

	var claims identity.UserClaims
	now := s.clock.Now()

	err = s.withTx(ctx, func(ctx context.Context, q Querier) error {
		pair, err := s.keys.GetByID(ctx, q, kid)
		if err != nil {
			return err
		}
		switch {
		case pair.IsRevoked():
			return ErrKeyPairRevoked
		case pair.IsExpired():
			return ErrKeyPairExpired
		}
		claims, err = identity.VerifyAccessToken(signedToken, pair, now)
		return err
	})
	if err != nil {
		return AuthorizeResult{}, err
	}
	return AuthorizeResult{Claims: claims}, nil
}

// GetPublicKey returns the requested key-pair, or the current Active
// key-pair when kid is the zero Identifier. It fails with
// ErrKeyPairIsRevoked or ErrKeyPairIsExpired when the key-pair can no
// longer be used to verify anything; callers extract the public PEM via
// identity.KeyPairValue.PublicKeyPEM, never private key material.
func (s *Service) GetPublicKey(ctx context.Context, kid identity.Identifier[identity.KeyPair]) (identity.KeyPair, error) {
	var pair identity.KeyPair
	err := s.withTx(ctx, func(ctx context.Context, q Querier) error {
		var err error
		if kid.IsZero() {
			pair, err = s.keys.GetActive(ctx, q)
		} else {
			pair, err = s.keys.GetByID(ctx, q, kid)
		}
		if err != nil {
			return err
		}
		switch {
		case pair.IsRevoked():
			return ErrKeyPairIsRevoked
		case pair.IsExpired():
			return ErrKeyPairIsExpired
		}
		return nil
	})
	if err != nil {
		return identity.KeyPair{}, err
	}
	return pair, nil
}

// RotateKeyPairsResult is returned by RotateKeyPairs.
type RotateKeyPairsResult struct {
	ExpiringOld identity.KeyPair
	ActiveNew   identity.KeyPair
}

// RotateKeyPairs retires the current Active key-pair to Expiring and
// mints a fresh Active key-pair, in one transaction. Requires the caller
// to hold RoleAdmin; any other role fails with ErrForbidden.
func (s *Service) RotateKeyPairs(ctx context.Context, caller identity.UserClaims) (RotateKeyPairsResult, error) {
	if caller.Role != identity.RoleAdmin {
		return RotateKeyPairsResult{}, ErrForbidden{Have: caller.Role, Want: identity.RoleAdmin}
	}

	now := s.clock.Now()
	seed, err := s.rng.Ed25519Seed()
	if err != nil {
		return RotateKeyPairsResult{}, fmt.Errorf("auth: generate key seed: %w", err)
	}
	newValue, err := identity.NewKeyPairValue(seed)
	if err != nil {
		return RotateKeyPairsResult{}, err
	}

	var result RotateKeyPairsResult
	err = s.withTx(ctx, func(ctx context.Context, q Querier) error {
		if err := s.keys.LockForRotate(ctx, q); err != nil {
			return err
		}
		active, err := s.keys.GetActive(ctx, q)
		if err != nil {
			if errors.Is(err, ErrActiveKeyPairNotFound) {
				fresh, err := identity.NewKeyPair(now, newValue)
				if err != nil {
					return err
				}
				if err := s.keys.Save(ctx, q, fresh); err != nil {
					return err
				}
				result = RotateKeyPairsResult{ActiveNew: fresh}
				return nil
			}
			return err
		}

		expiringOld, activeNew, err := active.Rotate(now, newValue, s.accessTTL)
		if err != nil {
			return err
		}
		if err := s.keys.Save(ctx, q, expiringOld); err != nil {
			return err
		}
		if err := s.keys.Save(ctx, q, activeNew); err != nil {
			return err
		}
		result = RotateKeyPairsResult{ExpiringOld: expiringOld, ActiveNew: activeNew}
		return nil
	})
	if err != nil {
		return RotateKeyPairsResult{}, err
	}
	return result, nil
}
