package allocator

// Hook is invoked for every history entry right after it is recorded.
// The snapshot in the entry is shared with the history and must not be modified.
type Hook interface {
	Func(entry HistoryEntry)
}

// HookFunc adapts a function to the Hook interface
type HookFunc func(entry HistoryEntry)

// Func ...
func (f HookFunc) Func(entry HistoryEntry) {
	f(entry)
}

// AcceptHook registers a hook, hooks are invoked in registration order
func (a *Allocator) AcceptHook(hook Hook) {
	a.hooks = append(a.hooks, hook)
}

func (a *Allocator) invokeHooks(entry HistoryEntry) {
	for _, h := range a.hooks {
		h.Func(entry)
	}
}
