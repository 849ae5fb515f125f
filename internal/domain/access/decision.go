package access

import "time"

// Decision is a settled auto-approval outcome. A nil *Decision from the
// engine means no rule matched and the request defers to manual review.
type Decision struct {
	Approved bool
	Reason   string
	// EndingAt is the requested expiry passed through unchanged; the engine
	// never invents or extends it.
	EndingAt *time.Time
}
