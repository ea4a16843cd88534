package timetracking

import (
	"bytes"
	"context"
	"encoding/csv"

	"github.com/calebmorton/schedtrack-backend/internal/roles"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

// csvHeader is the fixed export column order; downstream spreadsheets key
// off these names.
var csvHeader = []string{
	"date",
	"user",
	"project_number",
	"project_name",
	"project_manager",
	"task_id",
	"task_name",
	"task_type",
	"hours",
	"notes",
}

// ExportCSV renders the entries in the range as a CSV document.
func (s *service) ExportCSV(ctx context.Context, actor Actor, req RangeRequest) ([]byte, error) {
	if err := roles.Check(actor.Role, roles.CapabilityTrackTime); err != nil {
		return nil, err
	}
	s.scopeRange(actor, &req)

	entries, err := s.repo.ListRange(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list entries for export")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	for i := range entries {
		entry := &entries[i]
		record := make([]string, len(csvHeader))
		record[0] = entry.Date.Format("2006-01-02")
		if entry.User != nil {
			record[1] = entry.User.DisplayName()
		}
		if entry.Project != nil {
			record[2] = entry.Project.ProjectNumber
			record[3] = entry.Project.Name
			record[4] = entry.Project.PM
		}
		if entry.WorkItem != nil {
			record[5] = entry.WorkItem.ID.String()
			record[6] = entry.WorkItem.Title
			record[7] = entry.WorkItem.DisplayWorkType()
		}
		record[8] = entry.Hours.String()
		record[9] = entry.Description
		if err := writer.Write(record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return buf.Bytes(), nil
}
