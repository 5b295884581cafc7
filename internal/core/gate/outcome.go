package gate

import "github.com/artshoppe/storefront/internal/core/domain"

// Decision is the three-valued result of authorizing a protected request.
type Decision int

const (
	Unauthorized Decision = iota
	Authorized
	Errored
)

func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case Errored:
		return "error"
	default:
		return "unauthorized"
	}
}

// Denial reasons. They only differ for logging and auditing; every
// denial produces the same redirect.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonNotAdmin        = "not_admin"
	ReasonInactive        = "inactive"
	ReasonIdentityError   = "identity_error"
	ReasonLookupError     = "admin_lookup_error"
	ReasonMisconfigured   = "misconfigured"
)

// Outcome is what the Authorizer concluded about a protected request.
type Outcome struct {
	Decision Decision
	Session  domain.SessionEntry
	CacheHit bool
	// Token is set when a fresh session entry must be written back.
	Token  string
	Reason string
	Cause  error
}

// Allowed is the single point where the three states fold into allow or
// deny. Unauthorized and Errored both deny.
func (o Outcome) Allowed() bool {
	return o.Decision == Authorized
}

// Role returns the authorized role, or "" when the outcome denies.
func (o Outcome) Role() domain.Role {
	if !o.Allowed() {
		return ""
	}
	return o.Session.Role
}

func authorized(entry domain.SessionEntry, hit bool, token string) Outcome {
	return Outcome{Decision: Authorized, Session: entry, CacheHit: hit, Token: token}
}

func unauthorized(reason string) Outcome {
	return Outcome{Decision: Unauthorized, Reason: reason}
}

func errored(reason string, cause error) Outcome {
	return Outcome{Decision: Errored, Reason: reason, Cause: cause}
}
