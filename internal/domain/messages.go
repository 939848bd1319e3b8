package domain

import "fmt"

// MessageLevel classifies service feedback.
type MessageLevel string

const (
	LevelInfo    MessageLevel = "info"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

// Message is one accumulated piece of service feedback. Warnings mark
// degraded-but-continuing paths with a documented fallback; errors mark
// entities dropped from the results. The core never aborts a run, so
// there is no fatal level.
type Message struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
}

// Infof builds an info message.
func Infof(format string, args ...interface{}) Message {
	return Message{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning message.
func Warnf(format string, args ...interface{}) Message {
	return Message{Level: LevelWarning, Text: fmt.Sprintf(format, args...)}
}

// Errorf builds an error message.
func Errorf(format string, args ...interface{}) Message {
	return Message{Level: LevelError, Text: fmt.Sprintf(format, args...)}
}

// HasErrors reports whether any message is error-level.
func HasErrors(messages []Message) bool {
	for _, m := range messages {
		if m.Level == LevelError {
			return true
		}
	}
	return false
}
