package app

// Dispatcher runs best-effort side effects (notification emails) after the
// primary write has committed. Failures inside a task must be handled by the
// task itself; nothing is reported back to the caller.
type Dispatcher interface {
	Dispatch(task func())
}

type goDispatcher struct{}

func (goDispatcher) Dispatch(task func()) {
	go task()
}

func NewDispatcher() Dispatcher {
	return goDispatcher{}
}

type Logger interface {
	Info(msg string)
	Error(msg string)
}
