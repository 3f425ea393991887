package env

// LoopLabel is one link of the loop-label stack (spec.md §3.5): it lets
// `skip`/`stop` name an outer loop, and records deferred cleanup actions to
// run on any non-fallthrough exit from the loop.
type LoopLabel struct {
	Enclosing    *LoopLabel
	Names        []string
	SkipTarget   interface{} // backend block handle to jump to on `skip`
	StopTarget   interface{} // backend block handle to jump to on `stop`
	Deferred     []func()    // scoped cleanup actions, run outer-to-inner
}

// Matches reports whether name (or "" for "the innermost loop") resolves
// to this label.
func (l *LoopLabel) Matches(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range l.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Find walks outward from l looking for a label matching name.
func Find(l *LoopLabel, name string) *LoopLabel {
	for cur := l; cur != nil; cur = cur.Enclosing {
		if cur.Matches(name) {
			return cur
		}
	}
	return nil
}
