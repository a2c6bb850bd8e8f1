package session

// QuitSignal reports a user request to end the session. It is polled once
// per iteration.
type QuitSignal interface {
	QuitRequested() bool
}

// AnyQuit fires when any of its signals fires. Nil entries are ignored.
type AnyQuit []QuitSignal

// QuitRequested reports whether any signal fired.
func (a AnyQuit) QuitRequested() bool {
	for _, q := range a {
		if q != nil && q.QuitRequested() {
			return true
		}
	}
	return false
}

// QuitFunc adapts a function to QuitSignal.
type QuitFunc func() bool

// QuitRequested calls f.
func (f QuitFunc) QuitRequested() bool {
	return f()
}
