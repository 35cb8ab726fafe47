package identity

import "time"

// User is Arc's account record. Its id is immutable after creation; its
// name is immutable and globally unique; its role may change; it is never
// hard-deleted.
type User struct {
	id           Identifier[User]
	name         UserName
	role         Role
	passwordHash PasswordHash
}

// NewUser creates a brand-new user with a freshly minted id and RoleDefault.
func NewUser(now time.Time, name UserName, hash PasswordHash) (User, error) {
	id, err := NewIdentifier[User](now)
	if err != nil {
		return User{}, err
	}
	return User{id: id, name: name, role: RoleDefault, passwordHash: hash}, nil
}

// RestoreUser reconstructs a User from storage. Reconstruction is total.
func RestoreUser(id Identifier[User], name UserName, role Role, hash PasswordHash) User {
	return User{id: id, name: name, role: role, passwordHash: hash}
}

// ID returns the user's identifier.
func (u User) ID() Identifier[User] { return u.id }

// Name returns the user's immutable handle.
func (u User) Name() UserName { return u.name }

// Role returns the user's current authorization tier.
func (u User) Role() Role { return u.role }

// PasswordHash returns the stored credential hash.
func (u User) PasswordHash() PasswordHash { return u.passwordHash }

// Claims projects this user into the (id, name, role) triple embedded in
// sessions and access tokens.
func (u User) Claims() UserClaims {
	return UserClaims{ID: u.id, Name: u.name, Role: u.role}
}
