// Copyright 2024 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provider

import (
	"encoding/json"

	"github.com/stockparfait/errors"
)

// EventType is the enum of provider event kinds.
type EventType int

// Values of EventType. Only EventPartialResponse and EventResponse carry
// request results; EventResponse is the last event of a request.
const (
	EventOther EventType = iota
	EventSessionStatus
	EventServiceStatus
	EventRequestStatus
	EventPartialResponse
	EventResponse
	EventTimeout
)

var eventTypeNames = map[EventType]string{
	EventOther:           "OTHER",
	EventSessionStatus:   "SESSION_STATUS",
	EventServiceStatus:   "SERVICE_STATUS",
	EventRequestStatus:   "REQUEST_STATUS",
	EventPartialResponse: "PARTIAL_RESPONSE",
	EventResponse:        "RESPONSE",
	EventTimeout:         "TIMEOUT",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return eventTypeNames[EventOther]
}

// ParseEventType converts the wire name to EventType. Unknown names map to
// EventOther.
func ParseEventType(s string) EventType {
	for t, name := range eventTypeNames {
		if name == s {
			return t
		}
	}
	return EventOther
}

// IsResponse is true for the event types carrying request results.
func (t EventType) IsResponse() bool {
	return t == EventPartialResponse || t == EventResponse
}

// MarshalJSON implements json.Marshaler.
func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *EventType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Annotate(err, "event type must be a string")
	}
	*t = ParseEventType(s)
	return nil
}

// Message is a single provider message within an event.
type Message struct {
	Type          string     `json:"messageType"`
	CorrelationID string     `json:"correlationId,omitempty"`
	Elements      []*Element `json:"elements,omitempty"`
}

// NewMessage creates a message with the top-level elements.
func NewMessage(messageType string, elements ...*Element) *Message {
	return &Message{Type: messageType, Elements: elements}
}

// AsElement presents the message body as a complex element named after the
// message type.
func (m *Message) AsElement() *Element {
	return Complex(m.Type, m.Elements...)
}

// HasElement checks for a top-level element.
func (m *Message) HasElement(name string) bool {
	return m.AsElement().HasElement(name)
}

// GetElement returns a top-level element.
func (m *Message) GetElement(name string) (*Element, error) {
	return m.AsElement().GetElement(name)
}

// Event is a batch of messages delivered by Session.NextEvent.
type Event struct {
	Type     EventType  `json:"eventType"`
	Messages []*Message `json:"messages,omitempty"`
}

// NewEvent creates an event of the given type.
func NewEvent(t EventType, messages ...*Message) *Event {
	return &Event{Type: t, Messages: messages}
}
