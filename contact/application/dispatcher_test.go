package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicesite/contact/domain"
)

type fakeNotifier struct {
	name  string
	fail  bool
	calls int
	last  domain.Notification
	// hasDeadline registra se o ctx recebido tinha deadline.
	hasDeadline bool
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(ctx context.Context, n domain.Notification) domain.DeliveryResult {
	f.calls++
	f.last = n
	_, f.hasDeadline = ctx.Deadline()
	if f.fail {
		return domain.Failed(f.name, errors.New(f.name+" down"))
	}
	return domain.Sent(f.name)
}

func sampleNotification() domain.Notification {
	return domain.Notification{
		ReferenceID: "ref-1",
		To:          "owner@example.com",
		Submission: domain.Submission{
			Name:    "Ana",
			Email:   "ana@example.com",
			Message: "Hello",
		},
	}
}

func TestDispatchPrimarySuccessSkipsSecondary(t *testing.T) {
	primary := &fakeNotifier{name: "resend"}
	secondary := &fakeNotifier{name: "smtp"}
	fallback := &fakeNotifier{name: "log"}
	d := Dispatcher{Notifiers: []domain.Notifier{primary, secondary}, Fallback: fallback}

	rep := d.Dispatch(context.Background(), sampleNotification())

	assert.True(t, rep.Delivered)
	assert.Equal(t, "resend", rep.Provider)
	assert.False(t, rep.Recorded)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestDispatchPrimaryFailureFallsToSecondary(t *testing.T) {
	primary := &fakeNotifier{name: "resend", fail: true}
	secondary := &fakeNotifier{name: "smtp"}
	fallback := &fakeNotifier{name: "log"}
	d := Dispatcher{Notifiers: []domain.Notifier{primary, secondary}, Fallback: fallback}

	rep := d.Dispatch(context.Background(), sampleNotification())

	assert.True(t, rep.Delivered)
	assert.Equal(t, "smtp", rep.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, 0, fallback.calls)
	require.Len(t, rep.Attempts, 2)
	assert.Equal(t, domain.StatusFailed, rep.Attempts[0].Status)
	assert.Error(t, rep.Attempts[0].Err)
}

func TestDispatchAllFailedRecordsOnce(t *testing.T) {
	primary := &fakeNotifier{name: "resend", fail: true}
	secondary := &fakeNotifier{name: "smtp", fail: true}
	fallback := &fakeNotifier{name: "log"}
	d := Dispatcher{Notifiers: []domain.Notifier{primary, secondary}, Fallback: fallback}

	rep := d.Dispatch(context.Background(), sampleNotification())

	assert.False(t, rep.Delivered)
	assert.True(t, rep.Recorded)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, "Ana", fallback.last.Submission.Name)
}

func TestDispatchNoProvidersRecordsOnce(t *testing.T) {
	fallback := &fakeNotifier{name: "log"}
	d := Dispatcher{Fallback: fallback}

	rep := d.Dispatch(context.Background(), sampleNotification())

	assert.False(t, rep.Delivered)
	assert.True(t, rep.Recorded)
	assert.Equal(t, 1, fallback.calls)
	assert.Len(t, rep.Attempts, 1)
}

func TestDispatchAppliesAttemptTimeout(t *testing.T) {
	primary := &fakeNotifier{name: "resend"}
	d := Dispatcher{Notifiers: []domain.Notifier{primary}, AttemptTimeout: time.Second}

	d.Dispatch(context.Background(), sampleNotification())

	assert.True(t, primary.hasDeadline)
}

func TestDispatchWithoutTimeoutKeepsContext(t *testing.T) {
	primary := &fakeNotifier{name: "resend"}
	d := Dispatcher{Notifiers: []domain.Notifier{primary}}

	d.Dispatch(context.Background(), sampleNotification())

	assert.False(t, primary.hasDeadline)
}
