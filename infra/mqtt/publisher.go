package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/gridpulse/dersim/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages     map[string][][]byte
	FailTopics   map[string]bool
	Disconnected bool
	mu           sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Messages:   make(map[string][][]byte),
		FailTopics: make(map[string]bool),
	}
}

// Publish records the payload or returns an error if configured to fail.
func (m *MockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[topic] {
		return fmt.Errorf("publish failed")
	}
	m.Messages[topic] = append(m.Messages[topic], payload)
	return nil
}

// Disconnect marks the publisher disconnected.
func (m *MockPublisher) Disconnect(uint) {
	m.mu.Lock()
	m.Disconnected = true
	m.mu.Unlock()
}

// Count returns the number of payloads recorded for a topic.
func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages[topic])
}

// Total returns the number of payloads recorded across all topics.
func (m *MockPublisher) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, msgs := range m.Messages {
		n += len(msgs)
	}
	return n
}
