package roster

import "sort"

// PlanBulkAssignment validates a bulk-assignment submission and shapes the
// request to send, together with the estimate shown to the user before
// submitting. It performs no I/O and holds no state: two calls with equal
// inputs produce structurally equal plans, so a retried submission can reuse
// its idempotency key. Field violations are collected rather than returned
// one at a time.
func PlanBulkAssignment(period RosterPeriod, employeeIDs []int64, shiftID int64, createdBy int64) (Plan, error) {
	if period.Status != StatusDraft {
		return Plan{}, &IllegalTransitionError{Action: ActionBulkAssign, Current: period.Status, Required: StatusDraft}
	}

	var issues []ValidationIssue
	distinct := sortedDistinct(employeeIDs)
	if len(distinct) == 0 {
		issues = append(issues, ValidationIssue{Field: "employeeIds", Reason: "no employees selected"})
	} else if distinct[0] <= 0 {
		issues = append(issues, ValidationIssue{Field: "employeeIds", Reason: "employee ids must be positive"})
	}
	if shiftID <= 0 {
		issues = append(issues, ValidationIssue{Field: "shiftId", Reason: "no shift selected"})
	}
	if len(issues) > 0 {
		return Plan{}, &ValidationError{Issues: issues}
	}

	return Plan{
		Request: RosterAssignmentRequest{
			RosterPeriodID: period.ID,
			EmployeeIDs:    distinct,
			ShiftID:        shiftID,
			CreatedBy:      createdBy,
		},
		EstimatedRosterCount: NominalDays(period.Type) * len(distinct),
	}, nil
}

func sortedDistinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
