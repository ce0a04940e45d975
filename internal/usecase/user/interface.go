package user

import (
	"context"

	domain "fuser-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
// A nil caller means the request is anonymous.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*UserView, error)
	ListUsers(ctx context.Context, caller *domain.Caller, in ListUsersRequest) ([]UserListItem, error)
	GetUser(ctx context.Context, caller *domain.Caller, id int64) (*UserView, error)
	UpdateUser(ctx context.Context, caller *domain.Caller, id int64, in UpdateUserRequest) (*UserView, error)
	DeleteUser(ctx context.Context, caller *domain.Caller, id int64) error
	SetVerification(ctx context.Context, caller *domain.Caller, id int64, value bool) (bool, error)
	AdjustBalance(ctx context.Context, caller *domain.Caller, id, delta int64) (int64, error)

	// Authenticate resolves a caller from basic-auth credentials.
	// It returns nil without error when the credentials do not match.
	Authenticate(ctx context.Context, username, password string) (*domain.Caller, error)
}
