package roster

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func draftPeriod(periodType string) RosterPeriod {
	return RosterPeriod{ID: 42, OrganizationID: 1, Type: periodType, Status: StatusDraft}
}

func TestPlanBulkAssignment(t *testing.T) {
	plan, err := PlanBulkAssignment(draftPeriod(TypeWeekly), []int64{2, 1, 2}, 5, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.EstimatedRosterCount != 14 {
		t.Fatalf("expected estimate 14 (7 days x 2 employees), got %d", plan.EstimatedRosterCount)
	}
	if !reflect.DeepEqual(plan.Request.EmployeeIDs, []int64{1, 2}) {
		t.Fatalf("expected sorted distinct [1 2], got %v", plan.Request.EmployeeIDs)
	}
	if plan.Request.RosterPeriodID != 42 || plan.Request.ShiftID != 5 || plan.Request.CreatedBy != 9 {
		t.Fatalf("unexpected request: %+v", plan.Request)
	}
}

func TestPlanBulkAssignmentCollectsAllViolations(t *testing.T) {
	_, err := PlanBulkAssignment(draftPeriod(TypeWeekly), nil, 0, 9)

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Issues) != 2 {
		t.Fatalf("expected both violations reported, got %+v", validation.Issues)
	}
	if !strings.Contains(err.Error(), "employees") || !strings.Contains(err.Error(), "shift") {
		t.Fatalf("error should mention employees and shift: %v", err)
	}
}

func TestPlanBulkAssignmentMissingShift(t *testing.T) {
	_, err := PlanBulkAssignment(draftPeriod(TypeWeekly), []int64{1, 2, 3}, 0, 9)

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Issues) != 1 || validation.Issues[0].Field != "shiftId" {
		t.Fatalf("expected single shiftId issue, got %+v", validation.Issues)
	}
}

func TestPlanBulkAssignmentRejectsNonPositiveEmployeeIDs(t *testing.T) {
	_, err := PlanBulkAssignment(draftPeriod(TypeWeekly), []int64{-1, 2}, 5, 9)

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Issues[0].Field != "employeeIds" {
		t.Fatalf("expected employeeIds issue, got %+v", validation.Issues)
	}
}

func TestPlanBulkAssignmentRequiresDraft(t *testing.T) {
	period := draftPeriod(TypeWeekly)
	period.Status = StatusLocked

	_, err := PlanBulkAssignment(period, []int64{1}, 1, 9)

	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if illegal.Current != StatusLocked || illegal.Required != StatusDraft {
		t.Fatalf("unexpected error detail: %+v", illegal)
	}
}

func TestPlanBulkAssignmentMonthlyEstimate(t *testing.T) {
	plan, err := PlanBulkAssignment(draftPeriod(TypeMonthly), []int64{1, 2, 3}, 7, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.EstimatedRosterCount != 90 {
		t.Fatalf("expected nominal 90 (30 x 3), got %d", plan.EstimatedRosterCount)
	}
}

func TestPlanBulkAssignmentDeterministic(t *testing.T) {
	first, err := PlanBulkAssignment(draftPeriod(TypeFortnightly), []int64{3, 1, 2}, 5, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := PlanBulkAssignment(draftPeriod(TypeFortnightly), []int64{3, 1, 2}, 5, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans for identical inputs differ:\n%+v\n%+v", first, second)
	}
}
