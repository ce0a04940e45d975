package user

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "fuser-service/pkg/errors"
)

func TestAuthorize(t *testing.T) {
	anonymous := (*Caller)(nil)
	staff := &Caller{ID: 1, IsStaff: true}
	owner := &Caller{ID: 2}
	other := &Caller{ID: 3}
	target := &User{ID: 2, Username: "bar"}

	tests := []struct {
		name    string
		caller  *Caller
		target  *User
		action  Action
		wantErr error
	}{
		{"create is open to anonymous", anonymous, nil, ActionCreate, nil},
		{"create is open to authenticated", other, nil, ActionCreate, nil},

		{"list denied to anonymous", anonymous, nil, ActionList, &pkgerrors.UnauthenticatedError{}},
		{"list denied to non-staff", other, nil, ActionList, &pkgerrors.ForbiddenError{}},
		{"list allowed for staff", staff, nil, ActionList, nil},

		{"view denied to anonymous", anonymous, nil, ActionViewOne, &pkgerrors.UnauthenticatedError{}},
		{"view denied to non-staff", other, nil, ActionViewOne, &pkgerrors.ForbiddenError{}},
		{"view allowed for staff", staff, nil, ActionViewOne, nil},

		{"update denied to anonymous", anonymous, target, ActionUpdate, &pkgerrors.UnauthenticatedError{}},
		{"update allowed for owner", owner, target, ActionUpdate, nil},
		{"update allowed for staff", staff, target, ActionUpdate, nil},
		{"update denied to other user", other, target, ActionUpdate, &pkgerrors.ForbiddenError{}},

		{"delete denied to owner", owner, target, ActionDelete, &pkgerrors.ForbiddenError{}},
		{"delete allowed for staff", staff, target, ActionDelete, nil},
		{"delete denied to anonymous", anonymous, target, ActionDelete, &pkgerrors.UnauthenticatedError{}},

		{"set verification staff only", owner, target, ActionSetVerification, &pkgerrors.ForbiddenError{}},
		{"set verification allowed for staff", staff, target, ActionSetVerification, nil},

		{"adjust balance denied to anonymous", anonymous, target, ActionAdjustBalance, &pkgerrors.UnauthenticatedError{}},
		{"adjust balance denied to owner", owner, target, ActionAdjustBalance, &pkgerrors.ForbiddenError{}},
		{"adjust balance allowed for staff", staff, target, ActionAdjustBalance, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.target, tt.action)
			switch tt.wantErr.(type) {
			case nil:
				assert.NoError(t, err)
			case *pkgerrors.UnauthenticatedError:
				assert.IsType(t, &pkgerrors.UnauthenticatedError{}, err)
			case *pkgerrors.ForbiddenError:
				assert.IsType(t, &pkgerrors.ForbiddenError{}, err)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "adjust_balance", ActionAdjustBalance.String())
	assert.Equal(t, "unknown", Action(99).String())
}
