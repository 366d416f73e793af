package idea

import "fmt"

// Status is a stage in the idea lifecycle. Transitions are strictly
// forward; an idea never moves back to an earlier stage.
type Status string

const (
	StatusCaptured              Status = "Captured"
	StatusAwaitingClarification Status = "AwaitingClarification"
	StatusClarified             Status = "Clarified"
	StatusReadyForEnrichment    Status = "ReadyForEnrichment"
	StatusEnriched              Status = "Enriched"
)

// statusOrder maps each status to its position in the lifecycle.
var statusOrder = map[Status]int{
	StatusCaptured:              0,
	StatusAwaitingClarification: 1,
	StatusClarified:             2,
	StatusReadyForEnrichment:    3,
	StatusEnriched:              4,
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanAdvance reports whether moving from s to next is a legal forward
// transition. Staying in place is not an advance.
func (s Status) CanAdvance(next Status) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// Advance moves the idea to next, rejecting backward or unknown
// transitions.
func (i *Idea) Advance(next Status) error {
	if !i.Status.CanAdvance(next) {
		return fmt.Errorf("idea: invalid transition %s -> %s", i.Status, next)
	}
	i.Status = next
	return nil
}
