package testkit

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

// NewNATSContainerConn 使用 testcontainers 创建 NATS 容器并返回连接
// 生命周期由 t.Cleanup 管理
func NewNATSContainerConn(t *testing.T) *nats.Conn {
	ctx := context.Background()

	container, err := tcnats.Run(ctx, "nats:2.10-alpine")
	require.NoError(t, err, "failed to start nats container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	conn, err := nats.Connect(url)
	require.NoError(t, err, "failed to connect to nats")
	t.Cleanup(conn.Close)

	return conn
}
