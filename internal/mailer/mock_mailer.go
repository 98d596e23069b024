package mailer

import "sync"

// SentEmail records one message handed to the mock.
type SentEmail struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer implements Mailer for tests, recording sends instead of
// dialing SMTP. FailNext makes the next Send return the given error.
type MockMailer struct {
	mu       sync.RWMutex
	sent     []SentEmail
	failNext error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		sent: make([]SentEmail, 0),
	}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}

	m.sent = append(m.sent, SentEmail{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

func (m *MockMailer) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failNext = err
}

func (m *MockMailer) Sent() []SentEmail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent := make([]SentEmail, len(m.sent))
	copy(sent, m.sent)
	return sent
}
