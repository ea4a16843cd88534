package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calebmorton/schedtrack-backend/api/responses"
	"github.com/calebmorton/schedtrack-backend/api/validators"
	"github.com/calebmorton/schedtrack-backend/internal/timetracking"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
)

// CreateTimeEntry handles POST /time-entries.
func CreateTimeEntry(svc timetracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "time tracking service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body timetracking.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), timetracking.Actor{UserID: userID, Role: role}, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// UpdateTimeEntry handles PATCH /time-entries/{entryId}.
func UpdateTimeEntry(svc timetracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "time tracking service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entryID, err := validators.PathUUID(chi.URLParam(r, "entryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body timetracking.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), timetracking.Actor{UserID: userID, Role: role}, entryID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteTimeEntry handles DELETE /time-entries/{entryId}.
func DeleteTimeEntry(svc timetracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "time tracking service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entryID, err := validators.PathUUID(chi.URLParam(r, "entryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), timetracking.Actor{UserID: userID, Role: role}, entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetTimeEntry handles GET /time-entries/{entryId}.
func GetTimeEntry(svc timetracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "time tracking service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entryID, err := validators.PathUUID(chi.URLParam(r, "entryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), timetracking.Actor{UserID: userID, Role: role}, entryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// WeekTimeEntries handles GET /time-entries. The week defaults to the
// one containing today; any anchor date selects its Monday to Sunday.
func WeekTimeEntries(svc timetracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "time tracking service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := timetracking.WeekRequest{}
		anchor, err := validators.ParseQueryDate(r, "week")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if anchor != nil {
			params.Anchor = *anchor
		}

		targetUser, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.UserID = targetUser

		result, err := svc.Week(r.Context(), timetracking.Actor{UserID: userID, Role: role}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SummaryTimeEntries handles GET /time-entries/summary.
func SummaryTimeEntries(svc timetracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "time tracking service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := rangeParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Summary(r.Context(), timetracking.Actor{UserID: userID, Role: role}, *params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ExportTimeEntriesCSV handles GET /time-entries/export.csv.
func ExportTimeEntriesCSV(svc timetracking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "time tracking service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := rangeParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := svc.ExportCSV(r.Context(), timetracking.Actor{UserID: userID, Role: role}, *params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="time_entries.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func rangeParams(r *http.Request) (*timetracking.RangeRequest, error) {
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to dates are required")
	}

	params := timetracking.RangeRequest{From: *from, To: *to}

	targetUser, err := validators.ParseQueryUUID(r, "user_id")
	if err != nil {
		return nil, err
	}
	params.UserID = targetUser

	projectID, err := validators.ParseQueryUUID(r, "project_id")
	if err != nil {
		return nil, err
	}
	params.ProjectID = projectID

	return &params, nil
}
