package domain

// Actor is the authenticated caller attached to a request by the auth
// middleware: verified token claims cross-checked against an active session
// row.
type Actor struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
}

// CanAccess is the single access-policy check used by every protected
// operation: admins may act on anything; a non-empty requiredRole gates
// everyone else; otherwise the actor must own the resource.
func CanAccess(actor *Actor, resourceOwnerID, requiredRole string) bool {
	if actor == nil {
		return false
	}
	if actor.Role == RoleAdmin {
		return true
	}
	if requiredRole != "" && actor.Role != requiredRole {
		return false
	}
	return resourceOwnerID != "" && actor.UserID == resourceOwnerID
}
