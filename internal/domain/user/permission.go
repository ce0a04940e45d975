package user

import pkgerrors "fuser-service/pkg/errors"

// Caller is the identity resolved from request credentials.
// A nil *Caller means the request is anonymous.
type Caller struct {
	ID      int64
	IsStaff bool
}

// Action enumerates the operations subject to permission checks.
type Action int

const (
	ActionCreate Action = iota
	ActionList
	ActionViewOne
	ActionUpdate
	ActionSetVerification
	ActionAdjustBalance
	ActionDelete
)

// String returns the action name for logging.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionList:
		return "list"
	case ActionViewOne:
		return "view"
	case ActionUpdate:
		return "update"
	case ActionSetVerification:
		return "set_verification"
	case ActionAdjustBalance:
		return "adjust_balance"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Authorize decides whether caller may perform action on target.
// target may be nil for actions without a single target record (Create, List).
// It returns nil on allow, *UnauthenticatedError when the caller is anonymous
// and the action requires identity, and *ForbiddenError when the caller is
// authenticated but lacks privilege. The 401/403 distinction is part of the
// wire contract.
func Authorize(caller *Caller, target *User, action Action) error {
	if action == ActionCreate {
		return nil
	}
	if caller == nil {
		return pkgerrors.NewUnauthenticatedError()
	}
	if caller.IsStaff {
		return nil
	}
	if action == ActionUpdate && target != nil && caller.ID == target.ID {
		return nil
	}
	return pkgerrors.NewForbiddenError()
}
