package domain

import "time"

// AlertLevel classifies user-visible alerts.
type AlertLevel int

const (
	AlertWarn AlertLevel = iota
	AlertError
)

func (l AlertLevel) String() string {
	if l == AlertError {
		return "ERROR"
	}
	return "WARN"
}

// Alert is a user-visible notification raised outside the normal data flow:
// heartbeat staleness, connection loss, authentication failure.
type Alert struct {
	Level   AlertLevel
	Message string
	At      time.Time
}

// NewAlert builds an alert stamped with the current time.
func NewAlert(level AlertLevel, message string) Alert {
	return Alert{Level: level, Message: message, At: time.Now()}
}
