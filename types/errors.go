package types

import "github.com/cockroachdb/errors"

// Kind classifies the errors the core and the catalog raise, so callers can
// branch on what went wrong without string matching.
type Kind string

const (
	// KindNoPrivileges is raised by revoke/getPrivileges on a (grantee,
	// object) pair with no direct record.
	KindNoPrivileges Kind = "no_privileges"
	// KindAlreadyGranted is raised by grantRole when the edge already exists.
	KindAlreadyGranted Kind = "already_granted"
	// KindNotGranted is raised by the catalog's RevokeRole when the edge
	// does not exist.
	KindNotGranted Kind = "not_granted"
	// KindCycleDetected is raised by grantRole when the grant would close a
	// cycle in the upstream role graph.
	KindCycleDetected Kind = "cycle_detected"
	// KindInvariantViolated marks an internal assertion failure: a bug, not
	// a caller mistake.
	KindInvariantViolated Kind = "invariant_violated"
	// KindNotFound is raised by the catalog when a name has no registered
	// grantee or role.
	KindNotFound Kind = "not_found"
	// KindAlreadyExists is raised by the catalog when CreateUser/CreateRole
	// is called with a name already taken, by either kind.
	KindAlreadyExists Kind = "already_exists"
	// KindNotARole is raised when an operation requiring a role (GrantRole's
	// role argument) is given the name of a user instead.
	KindNotARole Kind = "not_a_role"
	// KindNotAUser is raised when an operation requiring a user is given the
	// name of a role instead.
	KindNotAUser Kind = "not_a_user"
)

// sentinel errors, one per Kind, each tagged so Classify can recover the Kind
// from any error that wraps one of these.
var (
	ErrNoPrivileges      = errors.New("no privileges recorded for this grantee and object")
	ErrAlreadyGranted    = errors.New("role already granted")
	ErrNotGranted        = errors.New("role not granted")
	ErrCycleDetected     = errors.New("granting this role would create a cycle in the grantee graph")
	ErrInvariantViolated = errors.New("grantee graph invariant violated")
	ErrNotFound          = errors.New("grantee or role not found")
	ErrAlreadyExists     = errors.New("name already registered")
	ErrNotARole          = errors.New("grantee is not a role")
	ErrNotAUser          = errors.New("grantee is not a user")
)

var kindBySentinel = map[error]Kind{
	ErrNoPrivileges:      KindNoPrivileges,
	ErrAlreadyGranted:    KindAlreadyGranted,
	ErrNotGranted:        KindNotGranted,
	ErrCycleDetected:     KindCycleDetected,
	ErrInvariantViolated: KindInvariantViolated,
	ErrNotFound:          KindNotFound,
	ErrAlreadyExists:     KindAlreadyExists,
	ErrNotARole:          KindNotARole,
	ErrNotAUser:          KindNotAUser,
}

// Classify recovers the Kind of any error returned by this module, provided
// it (or one of the errors it wraps) is one of the sentinels above.
func Classify(err error) (Kind, bool) {
	for sentinel, kind := range kindBySentinel {
		if errors.Is(err, sentinel) {
			return kind, true
		}
	}
	return "", false
}
