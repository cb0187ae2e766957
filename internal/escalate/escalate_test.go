package escalate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	return nil
}

func TestFirstFailureEscalatesImmediately(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	sink := &recordingNotifier{}
	esc := New(clk, sink, 4*time.Hour, zap.NewNop())

	esc.ReportFailure(context.Background(), "Connection Error", "dial tcp: timeout")

	require.Len(t, sink.messages, 1)
	assert.Contains(t, sink.messages[0], "SCRAPER ERROR")
	assert.Contains(t, sink.messages[0], "Connection Error")
	assert.Contains(t, sink.messages[0], "*Failure Count:* 1 since last success")
	assert.Equal(t, 1, esc.FailureCount())
}

func TestCooldownSuppressesAndCountsAccumulate(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	sink := &recordingNotifier{}
	esc := New(clk, sink, 4*time.Hour, zap.NewNop())
	ctx := context.Background()

	// Failures at t=0h, 1h, 2h, 5h with a 4-hour cooldown: only the first
	// and last escalate, and the last reports the cumulative count.
	esc.ReportFailure(ctx, "Connection Error", "t=0")
	clk.advance(time.Hour)
	esc.ReportFailure(ctx, "Connection Error", "t=1")
	clk.advance(time.Hour)
	esc.ReportFailure(ctx, "Connection Error", "t=2")
	clk.advance(3 * time.Hour)
	esc.ReportFailure(ctx, "Connection Error", "t=5")

	require.Len(t, sink.messages, 2)
	assert.Contains(t, sink.messages[0], "*Failure Count:* 1 since last success")
	assert.Contains(t, sink.messages[1], "*Failure Count:* 4 since last success")
	assert.Equal(t, 4, esc.FailureCount())
}

func TestReportSuccessResetsAndLogsRecoveryOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	clk := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	esc := New(clk, &recordingNotifier{}, 4*time.Hour, logger)

	esc.ReportFailure(context.Background(), "No Results Table", "markup changed")
	esc.ReportFailure(context.Background(), "No Results Table", "markup changed")

	esc.ReportSuccess()
	esc.ReportSuccess()

	assert.Equal(t, 0, esc.FailureCount())

	recoveries := 0
	for _, entry := range logs.All() {
		if strings.Contains(entry.Message, "recovered") {
			recoveries++
		}
	}
	assert.Equal(t, 1, recoveries)
}

func TestReportSuccessWithoutFailuresIsSilent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	esc := New(&fakeClock{now: time.Now()}, &recordingNotifier{}, 4*time.Hour, zap.New(core))

	esc.ReportSuccess()
	assert.Zero(t, logs.Len())
}

func TestNewWithStateResumesCooldown(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	clk := &fakeClock{now: start}
	sink := &recordingNotifier{}
	esc := NewWithState(clk, sink, 4*time.Hour, zap.NewNop(), State{
		ConsecutiveFailures: 7,
		LastEscalation:      start.Add(-time.Hour),
	})

	esc.ReportFailure(context.Background(), "Connection Error", "still down")
	assert.Empty(t, sink.messages)
	assert.Equal(t, 8, esc.Snapshot().ConsecutiveFailures)
}
