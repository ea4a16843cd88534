package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/api/middleware"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

// requestActor rebuilds the authenticated principal from the context the
// auth middleware seeded. A request that reaches a protected controller
// without one is a wiring fault, not a client error.
func requestActor(r *http.Request) (uuid.UUID, enums.Role, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return userID, enums.Role(middleware.RoleFromContext(r.Context())), nil
}
