package user

// CreateUserRequest represents the input for creating a new user.
// Username is a pointer so a missing field and a blank field produce
// different validation messages. Password is optional and never echoed.
type CreateUserRequest struct {
	Username  *string
	Email     string
	FirstName string
	LastName  string
	City      string
	Country   string
	Password  string
}

// UpdateUserRequest represents the input for updating an existing user.
// Nil fields are left untouched on a partial update and overwritten with the
// empty string on a full update. Username is immutable and not accepted.
type UpdateUserRequest struct {
	Email     *string
	FirstName *string
	LastName  *string
	City      *string
	Country   *string
	Partial   bool
}

// ListUsersRequest represents the optional exact-match list filters.
type ListUsersRequest struct {
	Username   *string
	IsVerified *bool
}

// UserView is the projection returned by create, get and update:
// identity and profile fields only.
type UserView struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	City      string
	Country   string
}

// UserListItem is the projection returned by list; it additionally exposes
// the verification flag and the balance.
type UserListItem struct {
	ID         int64
	Username   string
	Email      string
	FirstName  string
	LastName   string
	City       string
	Country    string
	IsVerified bool
	Balance    int64
}
