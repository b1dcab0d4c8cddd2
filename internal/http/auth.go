package httpapi

import (
	"net/http"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

// Identity who the gateway authenticated. Session handling lives in the
// gateway; this service only trusts the forwarded headers.
type Identity struct {
	UserID   string
	Username string
	Role     domain.Role
}

func identityFrom(r *http.Request) Identity {
	return Identity{
		UserID:   r.Header.Get("X-User-Id"),
		Username: r.Header.Get("X-Username"),
		Role:     domain.Role(r.Header.Get("X-User-Role")),
	}
}

// requireIdentity writes 401 and returns false when no identity headers
// are present.
func requireIdentity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	id := identityFrom(r)
	if id.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("authentication required"))
		return Identity{}, false
	}
	return id, true
}

// requireControlRole enforces a role allowed to issue device commands:
// admin, manager or operator. Viewers are read-only.
func requireControlRole(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return Identity{}, false
	}
	if !id.Role.Elevated() && id.Role != domain.RoleOperator {
		writeJSON(w, http.StatusForbidden, Fail("insufficient role"))
		return Identity{}, false
	}
	return id, true
}
