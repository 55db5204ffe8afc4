package allocator

import "fmt"

// EntryKind classifies the transition that produced a history entry
type EntryKind uint16

const (
	// EntryInitialized memory created with a power of two capacity
	EntryInitialized EntryKind = iota
	// EntryAdjusted memory created after rounding the capacity up
	EntryAdjusted
	EntryEvaluating
	EntrySplit
	EntryAssigned
	EntryExhausted
	EntryReleased
	EntryMerged
	EntryNotFound
	EntryInvalid
	EntryDuplicate
)

var entryKindNames = []string{
	"initialized",
	"adjusted",
	"evaluating",
	"split",
	"assigned",
	"exhausted",
	"released",
	"merged",
	"not_found",
	"invalid",
	"duplicate",
}

func (k EntryKind) String() string {
	if int(k) < len(entryKindNames) {
		return entryKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// IsError reports whether the entry records a rejected request
func (k EntryKind) IsError() bool {
	switch k {
	case EntryExhausted, EntryNotFound, EntryInvalid, EntryDuplicate:
		return true
	default:
		return false
	}
}

// MarshalText ...
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// HistoryEntry is one recorded transition with the tree as it was right after it
type HistoryEntry struct {
	Step     int       `json:"step"`
	Kind     EntryKind `json:"kind"`
	Message  string    `json:"message"`
	Snapshot *Block    `json:"snapshot"`
}

func initMessage(requested int, actual int, reset bool) (EntryKind, string) {
	prefix := "memory initialized"
	if reset {
		prefix = "memory reinitialized"
	}
	if requested == actual {
		return EntryInitialized, prefix
	}
	if reset {
		prefix = "memory reinitialized and adjusted"
	} else {
		prefix = "memory adjusted"
	}
	return EntryAdjusted, fmt.Sprintf("%s from %d to %d (power of two)", prefix, requested, actual)
}

func evaluatingMessage(size int) string {
	return fmt.Sprintf("evaluating block of size %d", size)
}

func splitMessage(size int) string {
	return fmt.Sprintf("block of size %d split", size)
}

func assignedMessage(occ Occupant) string {
	return fmt.Sprintf("process %s assigned (%d) [color %d]", occ.Name, occ.Size, occ.ColorID)
}

func diedMessage(name string) string {
	return fmt.Sprintf("process %s died", name)
}

func releasedMessage(name string) string {
	return fmt.Sprintf("process %s released", name)
}

func mergedMessage(size int) string {
	return fmt.Sprintf("blocks merged (%d)", size)
}

func notFoundMessage(name string) string {
	return fmt.Sprintf("process %s not found", name)
}

func duplicateMessage(name string) string {
	return fmt.Sprintf("error: process %q already exists", name)
}

const invalidMessage = "error: invalid request"
