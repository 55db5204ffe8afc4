package trace

import (
	"encoding/json"

	"github.com/QuangTung97/buddysim/allocator"
)

// StepRecord is one history entry as stored in the trace database.
// Generation is bumped every time a session restarts its history.
type StepRecord struct {
	Session    string
	Generation int
	Step       int
	Kind       string
	Message    string
	Capacity   int
	Snapshot   string // json encoded tree

	segments []allocator.Segment
}

func newStepRecord(session string, generation int, entry allocator.HistoryEntry) (StepRecord, error) {
	data, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return StepRecord{}, err
	}
	return StepRecord{
		Session:    session,
		Generation: generation,
		Step:       entry.Step,
		Kind:       entry.Kind.String(),
		Message:    entry.Message,
		Capacity:   entry.Snapshot.Size(),
		Snapshot:   string(data),
		segments:   allocator.Layout(entry.Snapshot),
	}, nil
}
