package domain

// Logger defines the interface for logging
type Logger interface {
	Debug(message string)
	Info(message string)
	Error(message string)
}
