package roster

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ExportPeriodPDF renders a roster sheet for the period: header with the
// period window and status, then one line per assignment with the employee
// and shift names resolved from the directory.
func (s *Service) ExportPeriodPDF(ctx context.Context, organizationID, periodID int64) ([]byte, error) {
	period, err := s.GetPeriod(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.ListRosters(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}

	employeeIDs := make([]int64, 0, len(assignments))
	seen := make(map[int64]struct{}, len(assignments))
	shiftIDs := make(map[int64]struct{})
	for _, a := range assignments {
		if _, ok := seen[a.EmployeeID]; !ok {
			seen[a.EmployeeID] = struct{}{}
			employeeIDs = append(employeeIDs, a.EmployeeID)
		}
		shiftIDs[a.ShiftID] = struct{}{}
	}

	names := map[int64]string{}
	if len(employeeIDs) > 0 {
		names, err = s.Directory.EmployeeNames(ctx, organizationID, employeeIDs)
		if err != nil {
			return nil, err
		}
	}
	shiftLabels := make(map[int64]string, len(shiftIDs))
	for shiftID := range shiftIDs {
		shift, err := s.Directory.ShiftByID(ctx, organizationID, shiftID)
		if err != nil {
			return nil, err
		}
		shiftLabels[shiftID] = fmt.Sprintf("%s (%s-%s)", shift.Name, shift.StartTime, shift.EndTime)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Roster Period")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Type: %s (%s)", period.Type, DurationLabel(period.Type)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Window: %s to %s", period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", period.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Assignments: %d", len(assignments)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(30, 7, "Date")
	pdf.Cell(70, 7, "Employee")
	pdf.Cell(0, 7, "Shift")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, a := range assignments {
		name := names[a.EmployeeID]
		if name == "" {
			name = fmt.Sprintf("employee %d", a.EmployeeID)
		}
		pdf.Cell(30, 6, a.WorkDate.Format("2006-01-02"))
		pdf.Cell(70, 6, name)
		pdf.Cell(0, 6, shiftLabels[a.ShiftID])
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
