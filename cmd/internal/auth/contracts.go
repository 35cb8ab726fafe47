// Package auth orchestrates Arc's six authentication use-cases on top of
// the identity domain (cmd/identity): SignUp, SignIn, Refresh, Authorize,
// GetPublicKey, and RotateKeyPairs.
package auth

import (
	"context"
	"time"

	"arc/cmd/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx: repository methods
// take one explicitly so a use-case can run a sequence of repository calls
// either directly against the pool or inside a single transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor opens a transaction. Its only implementation is *pgxpool.Pool;
// use-cases defer tx.Rollback(ctx) immediately after Begin so that any
// return path before an explicit Commit rolls back (pgx's Rollback after
// Commit is a documented no-op, which is what makes that defer safe).
type Transactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserRepository is the storage boundary for User entities.
type UserRepository interface {
	GetByID(ctx context.Context, q Querier, id identity.Identifier[identity.User]) (identity.User, error)
	GetByName(ctx context.Context, q Querier, name identity.UserName) (identity.User, error)
	Save(ctx context.Context, q Querier, u identity.User) error
}

// SessionRepository is the storage boundary for Session entities.
type SessionRepository interface {
	GetByID(ctx context.Context, q Querier, id identity.Identifier[identity.Session]) (identity.Session, error)
	Save(ctx context.Context, q Querier, s identity.Session) error
}

// KeyPairRepository is the storage boundary for KeyPair entities.
type KeyPairRepository interface {
	GetByID(ctx context.Context, q Querier, id identity.Identifier[identity.KeyPair]) (identity.KeyPair, error)
	// GetActive returns the unique Active key-pair, or ErrActiveKeyPairNotFound if none exists.
	GetActive(ctx context.Context, q Querier) (identity.KeyPair, error)
	Save(ctx context.Context, q Querier, k identity.KeyPair) error
	// LockForRotate serializes concurrent rotations. q must be a transaction:
	// the lock is held until that transaction commits or rolls back, which is
	// what keeps "exactly one Active key-pair" true under concurrent rotates.
	LockForRotate(ctx context.Context, q Querier) error
}

// TimeService supplies wall-clock time. The core only consumes wall-clock
// semantics; implementations may layer a monotonic source underneath.
type TimeService interface {
	Now() time.Time
}

// RandomService supplies cryptographically random material.
type RandomService interface {
	// Ed25519Seed returns 32 fresh random bytes suitable for KeyPairValue.
	Ed25519Seed() ([]byte, error)
}

// SystemClock is the default TimeService, backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
