package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fuser-service/internal/domain/user"
)

// UserRepoPG implements the Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	Email        string    `gorm:"size:254;not null"`
	FirstName    string    `gorm:"size:50;not null"`
	LastName     string    `gorm:"size:50;not null"`
	City         string    `gorm:"size:50;not null"`
	Country      string    `gorm:"size:50;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	IsStaff      bool      `gorm:"not null"`
	IsSuperuser  bool      `gorm:"not null"`
	IsActive     bool      `gorm:"not null"`
	IsVerified   bool      `gorm:"not null"`
	Balance      int64     `gorm:"not null"`
	Created      time.Time `gorm:"autoCreateTime"`
	Updated      time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toDomain(m *UserSchema) *user.User {
	return &user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		City:         m.City,
		Country:      m.Country,
		PasswordHash: m.PasswordHash,
		IsStaff:      m.IsStaff,
		IsSuperuser:  m.IsSuperuser,
		IsActive:     m.IsActive,
		IsVerified:   m.IsVerified,
		Balance:      m.Balance,
		Created:      m.Created,
		Updated:      m.Updated,
	}
}

func toSchema(u *user.User) *UserSchema {
	return &UserSchema{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		City:         u.City,
		Country:      u.Country,
		PasswordHash: u.PasswordHash,
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		Balance:      u.Balance,
		Created:      u.Created,
		Updated:      u.Updated,
	}
}

// Create inserts a new user into the database. The unique index on username
// is the last line of defense against a create/create race; a constraint
// violation is reported as ErrUsernameTaken.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Warn("username already taken", zap.String("username", u.Username))
			return nil, user.ErrUsernameTaken
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("username", u.Username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID), zap.String("username", model.Username))
	return toDomain(model), nil
}

// GetByID retrieves a user by their unique ID.
// Returns ErrNotFound when no record exists.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomain(&model), nil
}

// GetByUsername retrieves a user by their exact username.
// Returns nil without error when no record exists.
func (r *UserRepoPG) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("failed to get user by username from db", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return toDomain(&model), nil
}

// List retrieves users matching the optional exact-match filters,
// in insertion order.
func (r *UserRepoPG) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	q := r.db.WithContext(ctx).Model(&UserSchema{})
	if filter.Username != nil {
		q = q.Where("username = ?", *filter.Username)
	}
	if filter.IsVerified != nil {
		q = q.Where("is_verified = ?", *filter.IsVerified)
	}

	var models []UserSchema
	if err := q.Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *toDomain(&models[i])
	}

	return users, nil
}

// Update persists all mutable fields of an existing user and refreshes the
// updated timestamp. Returns ErrUsernameTaken on a unique violation.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.Updated = time.Time{} // let autoUpdateTime refresh it

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, user.ErrUsernameTaken
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.Int64("id", model.ID))
	return toDomain(model), nil
}

// Delete removes a user permanently. Returns ErrNotFound when the id does
// not exist, so a repeated delete reports the record gone.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// AdjustBalance applies delta to the user's balance under an exclusive
// per-row lock. The lock is held from the verification read until the new
// balance is persisted, so concurrent adjustments on the same id serialize
// and no update is lost. Returns ErrNotVerified without mutating when the
// user is not verified.
func (r *UserRepoPG) AdjustBalance(ctx context.Context, id, delta int64) (int64, error) {
	var balance int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// SQLite (used in tests) has no FOR UPDATE; its write transactions
		// are serialized by the engine itself.
		if tx.Dialector.Name() != "sqlite" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var model UserSchema
		if err := q.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return user.ErrNotFound
			}
			return fmt.Errorf("failed to lock user row: %w", err)
		}

		if !model.IsVerified {
			return user.ErrNotVerified
		}

		balance = model.Balance + delta
		if err := tx.Model(&UserSchema{ID: id}).Update("balance", balance).Error; err != nil {
			return fmt.Errorf("failed to persist balance: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrNotVerified) {
			return 0, err
		}
		r.log.Error("failed to adjust balance", zap.Error(err), zap.Int64("id", id), zap.Int64("delta", delta))
		return 0, err
	}

	r.log.Info("balance adjusted", zap.Int64("id", id), zap.Int64("delta", delta), zap.Int64("balance", balance))
	return balance, nil
}
