package proposal

// Status is the tagged proposal state. Transitions are monotonic – once a
// proposal reaches a terminal status no edge leaves it.
type Status string

const (
	// StatusPending – collecting attestations.
	StatusPending Status = "pending"

	// StatusApproved – threshold met, execution permitted exactly once.
	StatusApproved Status = "approved"

	// StatusExecuted – terminal, the action has been carried out.
	StatusExecuted Status = "executed"

	// StatusEscalated – terminal, handed to out-of-band resolution after a
	// workflow branch condition fired.
	StatusEscalated Status = "escalated"

	// StatusBlocked – terminal, the threshold can no longer be reached.
	StatusBlocked Status = "blocked"
)

// Terminal reports whether the status absorbs all further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusExecuted, StatusEscalated, StatusBlocked:
		return true
	}
	return false
}
