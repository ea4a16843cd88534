package controllers

import (
	"net/http"

	"github.com/calebmorton/schedtrack-backend/api/responses"
	"github.com/calebmorton/schedtrack-backend/api/validators"
	"github.com/calebmorton/schedtrack-backend/internal/dashboard"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
)

// DashboardOverview handles GET /dashboard.
func DashboardOverview(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := dashboard.OverviewRequest{}
		anchor, err := validators.ParseQueryDate(r, "week")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.WeekAnchor = anchor

		result, err := svc.Overview(r.Context(), dashboard.Actor{UserID: userID, Role: role}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
