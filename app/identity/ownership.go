package identity

import "blogapi/app/apierror"

// RequireOwner fails unless requesterID is the recorded author of a resource.
// Callers fetch the resource first so that a missing resource is reported as
// not found rather than forbidden.
func RequireOwner(authorID, requesterID string) error {
	if authorID != requesterID {
		return apierror.Unauthorized(apierror.MsgNoPermission)
	}
	return nil
}
