package controllers

import (
	"net/http"

	"github.com/calebmorton/schedtrack-backend/api/responses"
	"github.com/calebmorton/schedtrack-backend/internal/users"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
)

// ListUsers handles GET /users. It backs the assignment and target-user
// pickers, so it returns the full roster to any staff member.
func ListUsers(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		if _, _, err := requestActor(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		models, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list users"))
			return
		}

		out := make([]*users.UserDTO, 0, len(models))
		for i := range models {
			out = append(out, users.FromModel(&models[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
