package types

// Event represents a typed event emitted during state transitions. It
// satisfies core/events.Event so any component can hand its events straight
// to an Emitter without an adapter.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// EventType implements events.Event.
func (e *Event) EventType() string {
	if e == nil {
		return ""
	}
	return e.Type
}
