package script

// Target receives the operations of a script
type Target interface {
	Allocate(name string, size int) bool
	Free(name string) bool
	Reset(capacity int)
	LastMessage() string
}

// Result is the outcome of one command
type Result struct {
	Command Command
	OK      bool
	Message string
}

// Run applies every command in order. Rejected operations do not stop the run.
func Run(target Target, cmds []Command) []Result {
	results := make([]Result, 0, len(cmds))
	for _, c := range cmds {
		ok := true
		switch c.Op {
		case OpAlloc:
			ok = target.Allocate(c.Name, c.Size)
		case OpFree:
			ok = target.Free(c.Name)
		case OpReset:
			target.Reset(c.Size)
		}
		results = append(results, Result{
			Command: c,
			OK:      ok,
			Message: target.LastMessage(),
		})
	}
	return results
}
