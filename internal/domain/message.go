package domain

import (
	"encoding/json"
	"fmt"
)

// MessageType is the wire-level discriminator of a push-channel frame.
type MessageType string

const (
	TypeInitialData       MessageType = "INITIAL_DATA"
	TypeActiveUsersUpdate MessageType = "ACTIVE_USERS_UPDATE"
	TypeMetricsUpdate     MessageType = "METRICS_UPDATE"
	TypeNewActivity       MessageType = "NEW_ACTIVITY"
	TypeExternalEvent     MessageType = "EXTERNAL_EVENT"
)

// Message is the closed set of frames sent over the push channel. The
// isMessage method seals the interface: adding a new frame kind means
// adding a variant here and extending Encode/Decode, which the compiler
// checks.
type Message interface{ isMessage() }

// InitialData carries the full snapshot sent once to every new viewer.
type InitialData struct {
	Snapshot Snapshot
}

func (InitialData) isMessage() {}

// ActiveUsersUpdate is the delta emitted by the user-gauge mutator.
type ActiveUsersUpdate struct {
	ActiveUsers ActiveUsers `json:"activeUsers"`
}

func (ActiveUsersUpdate) isMessage() {}

// MetricsUpdate is the delta covering conversion rate and order summary.
type MetricsUpdate struct {
	ConversionRate float64      `json:"conversionRate"`
	NewOrders      OrderSummary `json:"newOrders"`
}

func (MetricsUpdate) isMessage() {}

// NewActivity carries the capped activity log after a prepend,
// newest entry first.
type NewActivity struct {
	RecentActivity []Activity `json:"recentActivity"`
}

func (NewActivity) isMessage() {}

// ExternalEventMessage wraps a broker event for viewers. Source is always
// SourceExternal so clients can tell broker traffic from mutator deltas.
type ExternalEventMessage struct {
	Topic  string `json:"topic"`
	Source string `json:"source"`
	Event  Event  `json:"event"`
}

func (ExternalEventMessage) isMessage() {}

// NewExternalEvent wraps ev for the push channel, stamping the topic it
// arrived on.
func NewExternalEvent(topic string, ev Event) ExternalEventMessage {
	ev.Topic = topic
	return ExternalEventMessage{Topic: topic, Source: SourceExternal, Event: ev}
}

// envelope is the wire frame: {"type": ..., "payload": ...}.
type envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode marshals a message into its wire frame.
func Encode(m Message) ([]byte, error) {
	var (
		t       MessageType
		payload any
	)
	switch v := m.(type) {
	case InitialData:
		t, payload = TypeInitialData, v.Snapshot
	case ActiveUsersUpdate:
		t, payload = TypeActiveUsersUpdate, v
	case MetricsUpdate:
		t, payload = TypeMetricsUpdate, v
	case NewActivity:
		t, payload = TypeNewActivity, v
	case ExternalEventMessage:
		t, payload = TypeExternalEvent, v
	default:
		return nil, fmt.Errorf("encode: unknown message type %T", m)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return json.Marshal(envelope{Type: t, Payload: raw})
}

// Decode parses a wire frame back into its message variant. Frames with an
// unknown type or a malformed payload are rejected; callers on the push
// path drop such frames silently.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch env.Type {
	case TypeInitialData:
		var snap Snapshot
		if err := json.Unmarshal(env.Payload, &snap); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return InitialData{Snapshot: snap}, nil
	case TypeActiveUsersUpdate:
		var m ActiveUsersUpdate
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return m, nil
	case TypeMetricsUpdate:
		var m MetricsUpdate
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return m, nil
	case TypeNewActivity:
		var m NewActivity
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return m, nil
	case TypeExternalEvent:
		var m ExternalEventMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("decode: unknown message type %q", env.Type)
	}
}

// TypeOf reports the wire discriminator of a message.
func TypeOf(m Message) MessageType {
	switch m.(type) {
	case InitialData:
		return TypeInitialData
	case ActiveUsersUpdate:
		return TypeActiveUsersUpdate
	case MetricsUpdate:
		return TypeMetricsUpdate
	case NewActivity:
		return TypeNewActivity
	case ExternalEventMessage:
		return TypeExternalEvent
	default:
		return ""
	}
}
