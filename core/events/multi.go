package events

// MultiEmitter fans a single event out to every configured downstream
// Emitter. A nil or zero-value entry in the slice is skipped so callers can
// wire optional sinks (e.g. metrics) without guarding every call site.
type MultiEmitter struct {
	sinks []Emitter
}

// NewMultiEmitter constructs a MultiEmitter over the supplied sinks.
func NewMultiEmitter(sinks ...Emitter) *MultiEmitter {
	filtered := make([]Emitter, 0, len(sinks))
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		filtered = append(filtered, sink)
	}
	return &MultiEmitter{sinks: filtered}
}

// Emit implements Emitter by forwarding to every wrapped sink in order.
func (m *MultiEmitter) Emit(evt Event) {
	if m == nil {
		return
	}
	for _, sink := range m.sinks {
		sink.Emit(evt)
	}
}
