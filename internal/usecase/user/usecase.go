package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "fuser-service/internal/domain/user"
	pkgerrors "fuser-service/pkg/errors"
)

// Validation messages matching the wire contract.
const (
	msgFieldRequired   = "This field is required."
	msgFieldBlank      = "This field may not be blank."
	msgUsernameTaken   = "user with this Username already exists."
	msgInvalidEmail    = "Enter a valid email address."
	msgUserNotVerified = "User not verified"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., plain PostgreSQL, cached) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)                // Insert a new user
	GetByID(ctx context.Context, id int64) (*domain.User, error)                     // Retrieve user by ID
	GetByUsername(ctx context.Context, username string) (*domain.User, error)        // Retrieve user by exact username
	List(ctx context.Context, filter domain.ListFilter) ([]domain.User, error)       // List users with optional filters
	Update(ctx context.Context, u *domain.User) (*domain.User, error)                // Update existing user
	Delete(ctx context.Context, id int64) error                                      // Delete user by ID
	AdjustBalance(ctx context.Context, id, delta int64) (int64, error)               // Locked read-modify-write on balance
}

// Service implements the business logic for user account operations:
// permission enforcement, validation and projections.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for field format checks
}

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	v := validator.New()
	// Report errors under the json field name, not the Go field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{repo: r, log: log, validate: v}
}

// fieldRules carries the format constraints shared by create and update.
type fieldRules struct {
	Username  string `json:"username" validate:"max=50"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name" validate:"max=50"`
	City      string `json:"city" validate:"max=50"`
	Country   string `json:"country" validate:"max=50"`
}

// checkFieldFormats validates field formats and folds any violations into
// verr, one message per offending field.
func (s *Service) checkFieldFormats(rules fieldRules, verr *pkgerrors.ValidationError) {
	err := s.validate.Struct(rules)
	if err == nil {
		return
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return
	}
	for _, e := range validationErrors {
		switch e.Tag() {
		case "email":
			verr.AddField(e.Field(), msgInvalidEmail)
		case "max":
			verr.AddField(e.Field(), fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param()))
		default:
			verr.AddField(e.Field(), "This field is invalid.")
		}
	}
}

func toView(u *domain.User) *UserView {
	return &UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		City:      u.City,
		Country:   u.Country,
	}
}

// CreateUser validates the input, enforces username uniqueness and inserts a
// new user. Anyone may create, including anonymous callers.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*UserView, error) {
	verr := &pkgerrors.ValidationError{}

	var username string
	switch {
	case in.Username == nil:
		verr.AddField("username", msgFieldRequired)
	case strings.TrimSpace(*in.Username) == "":
		verr.AddField("username", msgFieldBlank)
	default:
		username = strings.TrimSpace(*in.Username)
	}

	s.checkFieldFormats(fieldRules{
		Username:  username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		City:      in.City,
		Country:   in.Country,
	}, verr)

	if username != "" {
		existing, err := s.repo.GetByUsername(ctx, username)
		if err != nil {
			s.log.Error("failed to check username uniqueness", zap.String("username", username), zap.Error(err))
			return nil, pkgerrors.NewInternalError("failed to validate username uniqueness", err)
		}
		if existing != nil {
			verr.AddField("username", msgUsernameTaken)
		}
	}

	if len(verr.Fields) > 0 {
		s.log.Warn("create user validation failed", zap.Any("fields", verr.Fields))
		return nil, verr
	}

	u := &domain.User{
		Username:  username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		City:      in.City,
		Country:   in.Country,
		IsActive:  true,
	}

	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			s.log.Error("failed to hash password", zap.Error(err))
			return nil, pkgerrors.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = string(hash)
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		// A concurrent create with the same username lost the race against
		// the unique index; report it as the same field error.
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, pkgerrors.NewFieldError("username", msgUsernameTaken)
		}
		s.log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	s.log.Info("user created", zap.Int64("id", created.ID), zap.String("username", created.Username))
	return toView(created), nil
}

// ListUsers returns the list projection of all users matching the filters.
// Staff only.
func (s *Service) ListUsers(ctx context.Context, caller *domain.Caller, in ListUsersRequest) ([]UserListItem, error) {
	if err := domain.Authorize(caller, nil, domain.ActionList); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx, domain.ListFilter{
		Username:   in.Username,
		IsVerified: in.IsVerified,
	})
	if err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	items := make([]UserListItem, len(users))
	for i, u := range users {
		items[i] = UserListItem{
			ID:         u.ID,
			Username:   u.Username,
			Email:      u.Email,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			City:       u.City,
			Country:    u.Country,
			IsVerified: u.IsVerified,
			Balance:    u.Balance,
		}
	}
	return items, nil
}

// GetUser returns a single user's profile projection. Staff only.
func (s *Service) GetUser(ctx context.Context, caller *domain.Caller, id int64) (*UserView, error) {
	if err := domain.Authorize(caller, nil, domain.ActionViewOne); err != nil {
		return nil, err
	}

	target, err := s.loadTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(target), nil
}

// UpdateUser overwrites (full) or merges (partial) the target's profile
// fields. Username is immutable and never touched. Staff or owner.
func (s *Service) UpdateUser(ctx context.Context, caller *domain.Caller, id int64, in UpdateUserRequest) (*UserView, error) {
	// Anonymous callers are rejected before the target is even loaded
	if caller == nil {
		return nil, pkgerrors.NewUnauthenticatedError()
	}

	target, err := s.loadTarget(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(caller, target, domain.ActionUpdate); err != nil {
		s.log.Warn("update denied", zap.Int64("caller_id", caller.ID), zap.Int64("target_id", id))
		return nil, err
	}

	verr := &pkgerrors.ValidationError{}
	rules := fieldRules{Username: target.Username}
	if in.Email != nil {
		rules.Email = *in.Email
	}
	if in.FirstName != nil {
		rules.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		rules.LastName = *in.LastName
	}
	if in.City != nil {
		rules.City = *in.City
	}
	if in.Country != nil {
		rules.Country = *in.Country
	}
	s.checkFieldFormats(rules, verr)
	if len(verr.Fields) > 0 {
		s.log.Warn("update user validation failed", zap.Int64("id", id), zap.Any("fields", verr.Fields))
		return nil, verr
	}

	applyField := func(dst *string, src *string) {
		switch {
		case src != nil:
			*dst = *src
		case !in.Partial:
			*dst = ""
		}
	}
	applyField(&target.Email, in.Email)
	applyField(&target.FirstName, in.FirstName)
	applyField(&target.LastName, in.LastName)
	applyField(&target.City, in.City)
	applyField(&target.Country, in.Country)

	updated, err := s.repo.Update(ctx, target)
	if err != nil {
		s.log.Error("failed to update user", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to update user", err)
	}

	s.log.Info("user updated", zap.Int64("id", id), zap.Bool("partial", in.Partial))
	return toView(updated), nil
}

// DeleteUser removes the target permanently. Staff only.
func (s *Service) DeleteUser(ctx context.Context, caller *domain.Caller, id int64) error {
	if err := domain.Authorize(caller, nil, domain.ActionDelete); err != nil {
		return err
	}

	if _, err := s.loadTarget(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return pkgerrors.NewNotFoundError("user")
		}
		s.log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return pkgerrors.NewInternalError("failed to delete user", err)
	}

	s.log.Info("user deleted", zap.Int64("id", id))
	return nil
}

// SetVerification sets the target's verification flag. Staff only.
func (s *Service) SetVerification(ctx context.Context, caller *domain.Caller, id int64, value bool) (bool, error) {
	if err := domain.Authorize(caller, nil, domain.ActionSetVerification); err != nil {
		return false, err
	}

	target, err := s.loadTarget(ctx, id)
	if err != nil {
		return false, err
	}

	target.IsVerified = value
	if _, err := s.repo.Update(ctx, target); err != nil {
		s.log.Error("failed to set verification", zap.Int64("id", id), zap.Error(err))
		return false, pkgerrors.NewInternalError("failed to set verification", err)
	}

	s.log.Info("verification updated", zap.Int64("id", id), zap.Bool("value", value))
	return value, nil
}

// AdjustBalance applies delta to the target's balance under the repository's
// per-row lock and returns the new balance. Staff only; the target must be
// verified at the instant the adjustment is applied.
func (s *Service) AdjustBalance(ctx context.Context, caller *domain.Caller, id, delta int64) (int64, error) {
	if err := domain.Authorize(caller, nil, domain.ActionAdjustBalance); err != nil {
		return 0, err
	}

	balance, err := s.repo.AdjustBalance(ctx, id, delta)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return 0, pkgerrors.NewNotFoundError("user")
		case errors.Is(err, domain.ErrNotVerified):
			s.log.Warn("balance adjustment rejected, user not verified", zap.Int64("id", id))
			return 0, pkgerrors.NewDetailError(msgUserNotVerified)
		default:
			s.log.Error("failed to adjust balance", zap.Int64("id", id), zap.Error(err))
			return 0, pkgerrors.NewInternalError("failed to adjust balance", err)
		}
	}

	s.log.Info("balance adjusted", zap.Int64("id", id), zap.Int64("delta", delta), zap.Int64("balance", balance))
	return balance, nil
}

// Authenticate resolves a caller from basic-auth credentials. Unknown
// usernames, inactive accounts, unset passwords and mismatches all resolve
// to an anonymous caller without error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.Caller, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		s.log.Error("failed to look up user for authentication", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to authenticate", err)
	}
	if u == nil || !u.IsActive || u.PasswordHash == "" {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.log.Warn("password mismatch", zap.String("username", username))
		return nil, nil
	}
	return &domain.Caller{ID: u.ID, IsStaff: u.IsStaff}, nil
}

// loadTarget fetches the target record, mapping a missing id to the HTTP
// not-found error.
func (s *Service) loadTarget(ctx context.Context, id int64) (*domain.User, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, pkgerrors.NewNotFoundError("user")
		}
		s.log.Error("failed to load user", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to load user", err)
	}
	return target, nil
}
