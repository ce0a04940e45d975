package user

import "time"

// User represents a user account record.
type User struct {
	ID           int64     // ID is the unique identifier, assigned at creation
	Username     string    // Username is unique and immutable after creation
	Email        string    // Email is optional contact information
	FirstName    string    // FirstName is optional
	LastName     string    // LastName is optional
	City         string    // City is optional
	Country      string    // Country is optional
	PasswordHash string    // PasswordHash is the bcrypt hash used for basic auth; never serialized
	IsStaff      bool      // IsStaff grants administrative privilege
	IsSuperuser  bool      // IsSuperuser grants full privilege
	IsActive     bool      // IsActive marks the account as usable
	IsVerified   bool      // IsVerified gates balance mutation
	Balance      int64     // Balance is a plain integer; may go negative
	Created      time.Time // Created is set once at insertion
	Updated      time.Time // Updated is refreshed on every mutation
}
