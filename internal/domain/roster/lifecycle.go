package roster

// requiredStatus maps each lifecycle action to the only status that permits
// it. Locking is deliberately legal from published only, never from draft:
// the documented workflow is draft -> publish -> lock.
var requiredStatus = map[string]string{
	ActionPublish:    StatusDraft,
	ActionLock:       StatusPublished,
	ActionDelete:     StatusDraft,
	ActionBulkAssign: StatusDraft,
}

// nextStatus maps the actions that move a period forward. Delete removes the
// period and bulk-assign leaves the status untouched, so neither appears here.
var nextStatus = map[string]string{
	ActionPublish: StatusPublished,
	ActionLock:    StatusLocked,
}

// CanTransition reports whether action is legal for the period's current
// status.
func CanTransition(period RosterPeriod, action string) bool {
	required, ok := requiredStatus[action]
	return ok && period.Status == required
}

// ApplyTransition returns a copy of period with the status the action leads
// to. It performs no persistence or network effects; those belong to the
// surrounding service.
func ApplyTransition(period RosterPeriod, action string) (RosterPeriod, error) {
	required, ok := requiredStatus[action]
	if !ok || period.Status != required {
		return period, &IllegalTransitionError{Action: action, Current: period.Status, Required: required}
	}
	if next, ok := nextStatus[action]; ok {
		period.Status = next
	}
	return period, nil
}
