// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"sync"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
)

// MockMessage implements domain.Message for testing and records responses.
type MockMessage struct {
	subject  string
	data     []byte
	hasReply bool

	mu         sync.Mutex
	responses  [][]byte
	RespondErr error
}

var _ domain.Message = (*MockMessage)(nil)

// NewMockMessage creates a mock message for testing. A request message
// (hasReply) expects a response.
func NewMockMessage(subject string, data []byte, hasReply bool) *MockMessage {
	return &MockMessage{
		subject:  subject,
		data:     data,
		hasReply: hasReply,
	}
}

func (m *MockMessage) Subject() string {
	return m.subject
}

func (m *MockMessage) Data() []byte {
	return m.data
}

func (m *MockMessage) HasReply() bool {
	return m.hasReply
}

func (m *MockMessage) Respond(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, data)
	return m.RespondErr
}

// Responses returns the payloads passed to Respond.
func (m *MockMessage) Responses() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.responses...)
}
