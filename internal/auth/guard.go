// Package auth implements the client-side route guard: a pure predicate
// over the session and a command's required-role set.
//
// The guard never touches the network. A token accepted here can still be
// rejected by the backend (expired or forged); that surfaces as a 401 from
// the API client.
package auth

import (
	"fmt"

	"github.com/ndasurveying/dashctl/internal/domain"
)

// Authorize decides whether a session may reach an operation gated by the
// given roles. An empty required set means any authenticated session.
//
// Failures are distinguished by error code: a missing token is
// EUNAUTHORIZED, a token with a role outside the set is EFORBIDDEN. The
// original web UI sent both back to the login page; callers here may do the
// same, but the reason is never conflated.
func Authorize(sess domain.Session, required ...domain.Role) error {
	if !sess.Authenticated() {
		return domain.Unauthorized("auth.authorize", "authentication required, run 'dashctl login'")
	}
	if len(required) == 0 {
		return nil
	}
	for _, r := range required {
		if sess.Role == r {
			return nil
		}
	}
	return domain.Forbidden("auth.authorize", fmt.Sprintf("role %q is not permitted for this operation", sess.Role))
}

// IsAuthorized is the boolean form of Authorize for call sites that do not
// care which way the check failed.
func IsAuthorized(sess domain.Session, required ...domain.Role) bool {
	return Authorize(sess, required...) == nil
}
