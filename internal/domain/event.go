package domain

// Severity classifies a broker-sourced event.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityInfo     Severity = "info"
)

// SourceExternal tags messages that entered through the broker bridge
// rather than from a metric mutator.
const SourceExternal = "external"

// Event is an alert or log entry arriving from the pub/sub broker.
// ID is the event's identity: consumers must drop an event whose ID
// they have already seen.
type Event struct {
	ID        string   `json:"id"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Topic     string   `json:"topic"`
}
