package output

import (
	"adoscan/internal/inventory"
)

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
// - run.started
// - target.finished
// - record
// - run.finished
//
// JSON mode remains an aggregate array of records.
type Event struct {
	Type      string           `json:"type"`
	RunID     string           `json:"runId,omitempty"`
	Target    string           `json:"target,omitempty"`
	Error     string           `json:"error,omitempty"`
	Denied    bool             `json:"denied,omitempty"`
	Targets   int              `json:"targets,omitempty"`
	Succeeded int              `json:"succeeded,omitempty"`
	Failed    int              `json:"failed,omitempty"`
	Records   int              `json:"records,omitempty"`
	ExitCode  int              `json:"exitCode,omitempty"`
	Record    inventory.Record `json:"record,omitempty"`
}

func eventFromRecord(r inventory.Record) Event {
	return Event{Type: "record", Record: r}
}
