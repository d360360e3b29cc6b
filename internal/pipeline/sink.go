package pipeline

// ChannelSink forwards events into a channel without ever blocking the
// annotation run: when the consumer falls behind and the channel is full,
// the event is dropped. Progress display is best-effort; the driver must
// not stall behind a slow terminal.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	select {
	case s.Ch <- evt:
	default:
	}
}

// NopSink drops every event; the driver falls back to it when no progress
// consumer is attached.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
