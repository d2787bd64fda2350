package tuner

import (
	"errors"
	"fmt"
)

// ErrNoActivity is returned when the server has answered zero queries. A
// server with no baseline activity cannot be tuned meaningfully, so the whole
// report is aborted rather than producing untrustworthy recommendations.
var ErrNoActivity = errors.New("server has answered no queries: recommendations would be meaningless")

// MissingCounterError reports a status counter or variable that a derived
// ratio structurally requires but the server did not expose. Zero is a valid
// value and never triggers this; only true absence does.
type MissingCounterError struct {
	Name string
}

func (e *MissingCounterError) Error() string {
	return fmt.Sprintf("required counter %q is missing from the server snapshot", e.Name)
}
