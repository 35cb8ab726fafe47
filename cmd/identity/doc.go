// Package identity implements Arc's authentication domain: the value
// objects and tagged-union entities that model users, sessions, and
// signing key-pairs, plus the access-token protocol built on top of them.
//
// It is intentionally dependency-light: no HTTP, no SQL. Persistence and
// transport live in sibling packages that depend on identity, never the
// other way around.
package identity
