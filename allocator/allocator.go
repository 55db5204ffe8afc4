package allocator

// Config ...
type Config struct {
	Capacity int
	Hooks    []Hook
}

// Allocator owns the buddy tree and the history of every state it went through.
// It is not safe for concurrent use.
type Allocator struct {
	capacity    int
	root        *Block
	history     []HistoryEntry
	nextColorID int

	hooks []Hook
}

func allocatorValidateCapacity(capacity int) {
	if capacity <= 0 {
		panic("Capacity must > 0")
	}
	if capacity > MaxCapacity {
		panic("Capacity must <= MaxCapacity")
	}
}

// New ...
func New(conf Config) *Allocator {
	allocatorValidateCapacity(conf.Capacity)

	result := &Allocator{}
	for _, h := range conf.Hooks {
		result.AcceptHook(h)
	}
	result.init(conf.Capacity, false)
	return result
}

func (a *Allocator) init(requested int, reset bool) {
	actual, _ := NextPowerOfTwo(requested)

	a.capacity = actual
	a.root = newBlock(actual)
	a.history = nil
	a.nextColorID = 0

	kind, msg := initMessage(requested, actual, reset)
	a.record(kind, msg)
}

// Reset discards the tree and the history, keeping the current capacity
func (a *Allocator) Reset() {
	a.init(a.capacity, true)
}

// ResetCapacity discards the tree and the history and starts over with
// the given capacity, rounded up to a power of two.
func (a *Allocator) ResetCapacity(capacity int) {
	allocatorValidateCapacity(capacity)
	a.init(capacity, true)
}

func (a *Allocator) record(kind EntryKind, msg string) {
	entry := HistoryEntry{
		Step:     len(a.history),
		Kind:     kind,
		Message:  msg,
		Snapshot: a.root.Clone(),
	}
	a.history = append(a.history, entry)
	a.invokeHooks(entry)
}

// Capacity ...
func (a *Allocator) Capacity() int {
	return a.capacity
}

// History returns the recorded entries in chronological order.
// The returned slice must not be modified.
func (a *Allocator) History() []HistoryEntry {
	return a.history[:len(a.history):len(a.history)]
}

// LastEntry ...
func (a *Allocator) LastEntry() HistoryEntry {
	return a.history[len(a.history)-1]
}

// CurrentState returns a deep copy of the live tree
func (a *Allocator) CurrentState() *Block {
	return a.root.Clone()
}

// ListOccupants returns the occupants in depth first order, left before right
func (a *Allocator) ListOccupants() []Occupant {
	return a.root.collectOccupants(nil)
}

// Layout ...
func (a *Allocator) Layout() []Segment {
	return Layout(a.root)
}

// Stats ...
func (a *Allocator) Stats() Usage {
	return Stats(a.root)
}
