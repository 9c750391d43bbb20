package testutil

import (
	"net/http"

	"github.com/google/uuid"

	id "healthhub/pkg/domain"
	"healthhub/pkg/requestcontext"
)

// AsPatient authenticates the request as the given patient user.
// This simulates what the auth middleware does for a valid bearer token.
func AsPatient(req *http.Request, userID id.UserID) *http.Request {
	return WithPrincipal(req, userID, id.RolePatient)
}

// AsDoctor authenticates the request as the given doctor user.
func AsDoctor(req *http.Request, userID id.UserID) *http.Request {
	return WithPrincipal(req, userID, id.RoleDoctor)
}

// WithPrincipal adds a user, a fresh session and the role to the request context.
func WithPrincipal(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), userID, id.SessionID(uuid.New()), role)
	return req.WithContext(ctx)
}

// WithRawUserID parses userID and adds it without a role. Invalid IDs are ignored.
func WithRawUserID(req *http.Request, userID string) *http.Request {
	if parsed, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
	}
	return req
}
