package channel

import (
	"context"
	"sync"

	"github.com/ideavault/ideavault/internal/core"
	"github.com/ideavault/ideavault/pkg/message"
)

// MockChannel is a test double that implements Channel. It records
// sent messages and allows simulating inbound messages via
// SimulateMessage.
type MockChannel struct {
	name      string
	inbox     func(msg message.InboundMessage) error
	mu        sync.Mutex
	sent      []message.OutboundMessage
	acked     []string
	allowList *AllowList

	// SendFunc, if set, is called instead of the default recording
	// behavior.
	SendFunc func(ctx context.Context, msg message.OutboundMessage) error
}

// Compile-time interface guards.
var (
	_ Channel         = (*MockChannel)(nil)
	_ CallbackChannel = (*MockChannel)(nil)
)

// NewMockChannel creates a MockChannel with the given name and an
// optional allow-list. Pass nil for allowList to deny all messages.
func NewMockChannel(name string, allowList *AllowList) *MockChannel {
	return &MockChannel{
		name:      name,
		allowList: allowList,
	}
}

// ModuleInfo implements core.Module.
func (m *MockChannel) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID: core.ModuleID("channel." + m.name),
		New: func() core.Module {
			return NewMockChannel(m.name, m.allowList)
		},
	}
}

// Send records the outbound message. If SendFunc is set, it delegates
// to it.
func (m *MockChannel) Send(ctx context.Context, msg message.OutboundMessage) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// SetInbox stores the inbox callback provided during wiring.
func (m *MockChannel) SetInbox(fn func(msg message.InboundMessage) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = fn
}

// AckCallback records the acknowledged callback ID.
func (m *MockChannel) AckCallback(_ context.Context, callbackID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, callbackID)
	return nil
}

// SimulateMessage pushes an inbound message through the allow-list
// into the inbox, as the real platform would.
func (m *MockChannel) SimulateMessage(msg message.InboundMessage) error {
	m.mu.Lock()
	inbox := m.inbox
	m.mu.Unlock()

	if inbox == nil {
		return ErrNoInbox
	}
	if !m.allowList.IsAllowed(msg) {
		return ErrDenied
	}
	return inbox(msg)
}

// Sent returns a copy of all recorded outbound messages.
func (m *MockChannel) Sent() []message.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]message.OutboundMessage(nil), m.sent...)
}

// Acked returns the callback IDs acknowledged so far.
func (m *MockChannel) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}
