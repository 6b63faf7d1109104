package roster

import (
	"errors"
	"fmt"
	"strings"
)

var ErrPeriodNotFound = errors.New("roster period not found")

// InvalidInputError reports a malformed date or period type handed to the
// calculator. With validated transport input it should not occur.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violated field so the caller can render the
// complete list instead of the first failure.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		reasons = append(reasons, issue.Field+": "+issue.Reason)
	}
	return "validation failed: " + strings.Join(reasons, "; ")
}

// IllegalTransitionError reports an action attempted against a period whose
// current status does not allow it.
type IllegalTransitionError struct {
	Action   string
	Current  string
	Required string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("only %s periods allow %s; current status: %s", e.Required, e.Action, e.Current)
}
