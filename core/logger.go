package core

// Logger is any service that can log messages.
// expected args: error | map[string]interface{} | Operator
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Operator is the staff member running a command; attached to log reports.
type Operator struct {
	ID   string
	Name string
}
