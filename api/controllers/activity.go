package controllers

import (
	"net/http"
	"strings"

	"github.com/calebmorton/schedtrack-backend/api/responses"
	"github.com/calebmorton/schedtrack-backend/api/validators"
	"github.com/calebmorton/schedtrack-backend/internal/audit"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
)

// ListActivity handles GET /activity, newest first.
func ListActivity(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		_, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := audit.ListQuery{
			Limit:      limit,
			EntityName: strings.TrimSpace(r.URL.Query().Get("entity")),
		}

		result, err := svc.ListActivity(r.Context(), role, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
