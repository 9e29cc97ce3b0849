package boilerplate

// Logger defines the logging interface used by the mining and cleaning
// components. This allows for flexible logging implementations (zap, etc.)
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
