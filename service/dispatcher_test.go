package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/library/backend/models"
)

type recordingMailer struct {
	mu      sync.Mutex
	sent    []string
	failFor string
	slowFor string
	started chan struct{}
	release chan struct{}
}

func (m *recordingMailer) Send(_ context.Context, e Email) error {
	if e.To == m.slowFor {
		close(m.started)
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e.To)
	if e.To == m.failFor {
		return errSMTPDown
	}
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type memoryEmailLogs struct {
	mu      sync.Mutex
	entries []models.EmailLog
}

func (l *memoryEmailLogs) InsertEmailLog(_ context.Context, log *models.EmailLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *log)
	return nil
}

func (l *memoryEmailLogs) all() []models.EmailLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.EmailLog(nil), l.entries...)
}

func Test_Dispatcher_DeliversAndLogs_BeforeShutdownReturns(t *testing.T) {
	// arrange
	mailer := &recordingMailer{failFor: "bad@example.com"}
	logs := &memoryEmailLogs{}
	d := NewDispatcher(mailer, logs, discardLogger(), 3, 10)

	// act
	for _, to := range []string{"a@example.com", "b@example.com", "bad@example.com"} {
		require.NoError(t, d.Send(context.Background(), Email{To: to, Subject: "hi", Kind: models.EmailKindPasswordReset}))
	}
	require.NoError(t, d.Shutdown(context.Background()))

	// assert
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com", "bad@example.com"}, mailer.recipients())
	entries := logs.all()
	require.Len(t, entries, 3)
	for _, e := range entries {
		if e.ToEmail == "bad@example.com" {
			assert.Equal(t, models.EmailStatusFailed, e.Status)
			assert.Equal(t, errSMTPDown.Error(), e.Error)
		} else {
			assert.Equal(t, models.EmailStatusSent, e.Status)
		}
		assert.Equal(t, models.EmailKindPasswordReset, e.Kind)
	}
}

func Test_Dispatcher_SendsInline_WhenQueueFull(t *testing.T) {
	// arrange
	mailer := &recordingMailer{
		slowFor: "slow@example.com",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	d := NewDispatcher(mailer, nil, discardLogger(), 1, 1)
	require.NoError(t, d.Send(context.Background(), Email{To: "slow@example.com"}))
	select {
	case <-mailer.started:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not pick up the first email")
	}
	require.NoError(t, d.Send(context.Background(), Email{To: "queued@example.com"}))

	// act
	err := d.Send(context.Background(), Email{To: "inline@example.com"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"inline@example.com"}, mailer.recipients())
	close(mailer.release)
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, []string{"inline@example.com", "slow@example.com", "queued@example.com"}, mailer.recipients())
}

func Test_Dispatcher_ReturnsError_WhenInlineSendFailsAfterShutdown(t *testing.T) {
	mailer := &recordingMailer{failFor: "bad@example.com"}
	d := NewDispatcher(mailer, nil, discardLogger(), 1, 1)
	require.NoError(t, d.Shutdown(context.Background()))

	err := d.Send(context.Background(), Email{To: "bad@example.com"})

	assert.ErrorIs(t, err, errSMTPDown)
	assert.NoError(t, d.Shutdown(context.Background()))
}
