package mumble

// The three notification payloads the UI mirror accepts (spec §4.3 "editable
// mumble" debug mode; SPEC_FULL §3 item 6). Sent as the Payload of a
// component.NotifyMsg.
type (
	// AutonomousMsg switches the mirror back to relaying the live feed from
	// its peer Reader.
	AutonomousMsg struct{}

	// BindedOnUIMsg switches the mirror to emitting the UI-supplied synthetic
	// record set by the most recent ValueMsg.
	BindedOnUIMsg struct{}

	// ValueMsg supplies the synthetic record the mirror emits while bound.
	ValueMsg struct {
		Record Record
	}
)
