package core

// Logger is the application-wide logging contract. Implementations may
// inspect trailing args for well-known types (e.g. a user record to tag the
// log entry with).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
