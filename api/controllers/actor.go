package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/teoalvarez/cartline-backend/api/middleware"
	internalorders "github.com/teoalvarez/cartline-backend/internal/orders"
	"github.com/teoalvarez/cartline-backend/pkg/enums"
	pkgerrors "github.com/teoalvarez/cartline-backend/pkg/errors"
)

// actorFromRequest rebuilds the caller identity seeded by the auth middleware.
func actorFromRequest(r *http.Request) (internalorders.Actor, error) {
	rawUserID := middleware.UserIDFromContext(r.Context())
	if rawUserID == "" {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}

	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		role = enums.UserRoleUser
	}

	return internalorders.Actor{UserID: userID, Role: role}, nil
}
