//go:build integration

// 运行测试需要 Docker: go test ./alert/... -tags=integration -v
package alert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/aegis/testkit"
)

func TestNATSSinkIntegration(t *testing.T) {
	kit := testkit.NewKit(t)
	conn := testkit.NewNATSContainerConn(t)

	subject := "aegis.alerts." + testkit.NewID()
	sink, err := NewNATSSink(conn, subject)
	require.NoError(t, err)

	received := make(chan *nats.Msg, 1)
	sub, err := conn.ChanSubscribe(subject, received)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })

	event := NewEvent(SeverityHigh,
		WithTag("dependency", "openai"),
		WithExtra("failure_rate", 0.83))
	require.NoError(t, sink.Capture(kit.Ctx, "circuit breaker opened", event))

	select {
	case msg := <-received:
		var payload struct {
			Message string `json:"message"`
			Event   Event  `json:"event"`
		}
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, "circuit breaker opened", payload.Message)
		assert.Equal(t, event.ID, payload.Event.ID)
		assert.Equal(t, SeverityHigh, payload.Event.Severity)
		assert.Equal(t, "openai", payload.Event.Tags["dependency"])
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for alert on nats subject")
	}
}
