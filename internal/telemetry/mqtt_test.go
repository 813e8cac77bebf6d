package telemetry

import "testing"

func TestNilPublisherIsInert(t *testing.T) {
	// Telemetry is optional; every call site holds a possibly-nil
	// publisher and must be able to use it unconditionally.
	var p *Publisher
	p.Publish(Event{Type: "rep"})
	p.Close()
}
