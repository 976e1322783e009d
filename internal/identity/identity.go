// Package identity carries the authenticated principal of a request as an
// explicit, optional value.
package identity

// Caller is the principal invoking an operation. The zero value is anonymous.
type Caller struct {
	email string
}

// Anonymous returns a Caller with no identity.
func Anonymous() Caller {
	return Caller{}
}

// Of returns the Caller identified by email. An empty email yields Anonymous.
func Of(email string) Caller {
	return Caller{email: email}
}

// Present reports whether the caller carries an identity.
func (c Caller) Present() bool {
	return c.email != ""
}

// Email returns the identity key, empty for an anonymous caller.
func (c Caller) Email() string {
	return c.email
}

// Is reports whether the caller is present and exactly equals email.
// No case folding is applied.
func (c Caller) Is(email string) bool {
	return c.Present() && c.email == email
}
