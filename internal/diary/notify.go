package diary

// Notifier shows short user-visible messages.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}
