package core

// Identity is the acting user as supplied by the (external) auth layer.
// The workflow trusts it as given.
type Identity struct {
	ID        string
	Name      string
	Email     string
	IsStudent bool
	IsTeacher bool
	IsAdmin   bool
}

// Logger is any leveled logging service.
// Implementations may extract well-known argument types (eg. an acting Identity)
// for structured reporting.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
