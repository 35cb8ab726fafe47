package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arc/cmd/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// PostgresUserRepository stores users in arc.users.
type PostgresUserRepository struct{}

func NewPostgresUserRepository() PostgresUserRepository { return PostgresUserRepository{} }

func (PostgresUserRepository) GetByID(ctx context.Context, q Querier, id identity.Identifier[identity.User]) (identity.User, error) {
	const query = `SELECT id, user_name, role, password_hash FROM arc.users WHERE id = $1`
	return scanUser(q.QueryRow(ctx, query, id.String()))
}

func (PostgresUserRepository) GetByName(ctx context.Context, q Querier, name identity.UserName) (identity.User, error) {
	const query = `SELECT id, user_name, role, password_hash FROM arc.users WHERE user_name = $1`
	return scanUser(q.QueryRow(ctx, query, name.String()))
}

func scanUser(row pgx.Row) (identity.User, error) {
	var (
		id, userName, role, passwordHash string
	)
	if err := row.Scan(&id, &userName, &role, &passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.User{}, ErrUserNotFound{}
		}
		return identity.User{}, fmt.Errorf("auth: scan user: %w", err)
	}
	uid, err := identity.ParseIdentifier[identity.User](id)
	if err != nil {
		return identity.User{}, fmt.Errorf("auth: parse user id: %w", err)
	}
	uname, err := identity.NewUserName(userName)
	if err != nil {
		return identity.User{}, fmt.Errorf("auth: restore user name: %w", err)
	}
	r, err := identity.ParseRole(role)
	if err != nil {
		return identity.User{}, fmt.Errorf("auth: restore role: %w", err)
	}
	return identity.RestoreUser(uid, uname, r, identity.RestorePasswordHash(passwordHash)), nil
}

func (PostgresUserRepository) Save(ctx context.Context, q Querier, u identity.User) error {
	const query = `
		INSERT INTO arc.users (id, user_name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash`
	_, err := q.Exec(ctx, query, u.ID().String(), u.Name().String(), string(u.Role()), u.PasswordHash().String())
	if isUniqueViolation(err) {
		return ErrUserAlreadyExists{UserName: u.Name().String()}
	}
	if err != nil {
		return fmt.Errorf("auth: save user: %w", err)
	}
	return nil
}

// PostgresSessionRepository stores sessions in arc.sessions.
type PostgresSessionRepository struct{}

func NewPostgresSessionRepository() PostgresSessionRepository { return PostgresSessionRepository{} }

func (PostgresSessionRepository) GetByID(ctx context.Context, q Querier, id identity.Identifier[identity.Session]) (identity.Session, error) {
	const query = `
		SELECT id, user_id, user_name, role, expires_at, revoked_at
		FROM arc.sessions
		WHERE id = $1`
	return scanSession(q.QueryRow(ctx, query, id.String()))
}

func scanSession(row pgx.Row) (identity.Session, error) {
	var (
		id, userID, userName, role string
		expiresAt                  time.Time
		revokedAt                  *time.Time
	)
	if err := row.Scan(&id, &userID, &userName, &role, &expiresAt, &revokedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Session{}, ErrSessionNotFound
		}
		return identity.Session{}, fmt.Errorf("auth: scan session: %w", err)
	}
	sid, err := identity.ParseIdentifier[identity.Session](id)
	if err != nil {
		return identity.Session{}, fmt.Errorf("auth: parse session id: %w", err)
	}
	uid, err := identity.ParseIdentifier[identity.User](userID)
	if err != nil {
		return identity.Session{}, fmt.Errorf("auth: parse session user id: %w", err)
	}
	uname, err := identity.NewUserName(userName)
	if err != nil {
		return identity.Session{}, fmt.Errorf("auth: restore session user name: %w", err)
	}
	r, err := identity.ParseRole(role)
	if err != nil {
		return identity.Session{}, fmt.Errorf("auth: restore session role: %w", err)
	}
	claims := identity.UserClaims{ID: uid, Name: uname, Role: r}
	return identity.RestoreSession(sid, claims, expiresAt, revokedAt, time.Now().UTC()), nil
}

// Save persists s. Active sessions carry the full row; Revoked sessions
// only stamp revoked_at on the row their Active insert created (user_id,
// user_name, and expires_at stay as written, per the preserve-on-revoke
// policy). Expired is derived on read and never written back.
func (PostgresSessionRepository) Save(ctx context.Context, q Querier, s identity.Session) error {
	if s.IsRevoked() {
		const query = `UPDATE arc.sessions SET revoked_at = $2 WHERE id = $1`
		revokedAt := s.RevokedAt()
		if _, err := q.Exec(ctx, query, s.ID().String(), revokedAt); err != nil {
			return fmt.Errorf("auth: save session: %w", err)
		}
		return nil
	}
	if !s.IsActive() {
		return nil
	}

	const query = `
		INSERT INTO arc.sessions (id, user_id, user_name, role, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			expires_at = EXCLUDED.expires_at`
	claims := s.Claims()
	_, err := q.Exec(ctx, query, s.ID().String(), claims.ID.String(), claims.Name.String(), string(claims.Role), s.ExpiresAt())
	if err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	return nil
}

// PostgresKeyPairRepository stores signing key-pairs in arc.key_pairs.
type PostgresKeyPairRepository struct{}

func NewPostgresKeyPairRepository() PostgresKeyPairRepository { return PostgresKeyPairRepository{} }

func (PostgresKeyPairRepository) GetByID(ctx context.Context, q Querier, id identity.Identifier[identity.KeyPair]) (identity.KeyPair, error) {
	const query = `SELECT id, private_key_pem, expires_at, revoked_at FROM arc.key_pairs WHERE id = $1`
	return scanKeyPair(q.QueryRow(ctx, query, id.String()))
}

// LockForRotate takes an EXCLUSIVE table lock on arc.key_pairs for the rest
// of q's transaction. EXCLUSIVE blocks every other writer (and every other
// rotation) while leaving plain SELECTs free, so Authorize keeps verifying
// tokens during a rotation.
func (PostgresKeyPairRepository) LockForRotate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, `LOCK TABLE arc.key_pairs IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("auth: lock key pairs: %w", err)
	}
	return nil
}

func (PostgresKeyPairRepository) GetActive(ctx context.Context, q Querier) (identity.KeyPair, error) {
	const query = `
		SELECT id, private_key_pem, expires_at, revoked_at
		FROM arc.key_pairs
		WHERE expires_at IS NULL AND revoked_at IS NULL
		ORDER BY id DESC
		LIMIT 1`
	kp, err := scanKeyPair(q.QueryRow(ctx, query))
	if errors.Is(err, ErrKeyPairNotFound) {
		return identity.KeyPair{}, ErrActiveKeyPairNotFound
	}
	return kp, err
}

func scanKeyPair(row pgx.Row) (identity.KeyPair, error) {
	var (
		id, pemStr string
		expiresAt  *time.Time
		revokedAt  *time.Time
	)
	if err := row.Scan(&id, &pemStr, &expiresAt, &revokedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.KeyPair{}, ErrKeyPairNotFound
		}
		return identity.KeyPair{}, fmt.Errorf("auth: scan key pair: %w", err)
	}
	kid, err := identity.ParseIdentifier[identity.KeyPair](id)
	if err != nil {
		return identity.KeyPair{}, fmt.Errorf("auth: parse key pair id: %w", err)
	}
	value, err := identity.KeyPairValueFromPEM(pemStr)
	if err != nil {
		return identity.KeyPair{}, fmt.Errorf("auth: restore key pair value: %w", err)
	}
	return identity.RestoreKeyPair(kid, value, expiresAt, revokedAt, time.Now().UTC()), nil
}

// Save upserts k. Active and Expiring key-pairs still carry their private
// key material, so those states write private_key_pem when the row is first
// inserted (an existing row keeps its stored PEM; only expires_at/revoked_at
// are updated); Expired and Revoked carry none (they exist only to stamp a
// terminal timestamp on a row the Active/Expiring insert already created),
// so those states only touch expires_at/revoked_at and leave the stored PEM
// untouched.
func (PostgresKeyPairRepository) Save(ctx context.Context, q Querier, k identity.KeyPair) error {
	var expiresAt *time.Time
	if k.IsExpiring() {
		t := k.ExpiresAt()
		expiresAt = &t
	}
	if k.IsExpired() {
		t := k.ExpiredAt()
		expiresAt = &t
	}
	var revokedAt *time.Time
	if k.IsRevoked() {
		t := k.RevokedAt()
		revokedAt = &t
	}

	if k.IsExpired() || k.IsRevoked() {
		const query = `UPDATE arc.key_pairs SET expires_at = $2, revoked_at = $3 WHERE id = $1`
		if _, err := q.Exec(ctx, query, k.ID().String(), expiresAt, revokedAt); err != nil {
			return fmt.Errorf("auth: save key pair: %w", err)
		}
		return nil
	}

	const query = `
		INSERT INTO arc.key_pairs (id, private_key_pem, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			expires_at = EXCLUDED.expires_at,
			revoked_at = EXCLUDED.revoked_at`
	pemStr, err := k.Value().PEM()
	if err != nil {
		return fmt.Errorf("auth: marshal key pair: %w", err)
	}
	if _, err := q.Exec(ctx, query, k.ID().String(), pemStr, expiresAt, revokedAt); err != nil {
		return fmt.Errorf("auth: save key pair: %w", err)
	}
	return nil
}
