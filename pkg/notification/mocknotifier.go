package notification

import (
	"fmt"
	"sync"
)

// MockNotifier records sent notifications for tests.
type MockNotifier struct {
	mutex sync.Mutex
	Sent  []NotificationData
	Fail  bool
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Fail {
		return fmt.Errorf("mock notifier: send failed")
	}
	m.Sent = append(m.Sent, notification)
	return nil
}

// SentCount returns the number of notifications recorded so far.
func (m *MockNotifier) SentCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.Sent)
}

// LastSent returns the most recent notification, if any.
func (m *MockNotifier) LastSent() (NotificationData, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.Sent) == 0 {
		return NotificationData{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}
