package authz

import "foodgram/domain"

// IsAuthorOrAdmin guards mutations of an authored object. Safe verbs never
// reach it: the route policy lets anonymous callers read.
func IsAuthorOrAdmin(actorID, role, authorID string) bool {
	if role == domain.RoleAdmin {
		return true
	}
	return actorID != "" && actorID == authorID
}
