package user

// ListFilter holds the optional exact-match predicates for the list
// operation. Nil fields are not applied.
type ListFilter struct {
	Username   *string
	IsVerified *bool
}
