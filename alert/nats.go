package alert

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/ceyewan/aegis/xerrors"
)

// DefaultSubject NATS 告警默认主题
const DefaultSubject = "aegis.alerts"

// natsSink 将告警以 JSON 形式发布到 NATS 主题（非导出）
type natsSink struct {
	conn    *nats.Conn
	subject string
}

// natsPayload NATS 消息体
type natsPayload struct {
	Message string `json:"message"`
	Event   Event  `json:"event"`
}

// NewNATSSink 创建 NATS 告警下沉
//
// 告警以 JSON 发布到指定主题，下游由告警网关或工单系统消费。
// subject 为空时使用 DefaultSubject。
func NewNATSSink(conn *nats.Conn, subject string) (Sink, error) {
	if conn == nil {
		return nil, xerrors.New("alert: nats connection is nil")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &natsSink{conn: conn, subject: subject}, nil
}

func (s *natsSink) Capture(ctx context.Context, message string, event Event) error {
	data, err := json.Marshal(natsPayload{Message: message, Event: event})
	if err != nil {
		return xerrors.Wrap(err, "alert: marshal event")
	}
	return s.conn.Publish(s.subject, data)
}
