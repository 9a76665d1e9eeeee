package events

import (
	"encoding/json"
	"fmt"
	"lake-backend/internal/model"
	"lake-backend/internal/util"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectPrefix 通知事件主题前缀，完整主题为 lake.notifications.<recipient_id>
const SubjectPrefix = "lake.notifications"

// NotificationEvent 推送给订阅方的通知事件
type NotificationEvent struct {
	ID               int                    `json:"id"`
	RecipientID      int                    `json:"recipient_id"`
	SenderID         int                    `json:"sender_id"`
	NotificationType model.NotificationType `json:"notification_type"`
	PostID           *int                   `json:"post_id,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// Publisher 发布已持久化的通知
type Publisher interface {
	PublishNotification(n *model.Notification) error
	Close()
}

func Subject(recipientID int) string {
	return fmt.Sprintf("%s.%d", SubjectPrefix, recipientID)
}

func encodeNotification(n *model.Notification) ([]byte, error) {
	return json.Marshal(NotificationEvent{
		ID:               n.ID,
		RecipientID:      n.RecipientID,
		SenderID:         n.SenderID,
		NotificationType: n.Type,
		PostID:           n.PostID,
		CreatedAt:        n.CreatedAt,
	})
}

type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher 连接 NATS，断线后自动重连
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("lake-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				util.Logger.Warn("NATS连接断开", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			util.Logger.Info("NATS已重新连接", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, err
	}
	util.Logger.Info("NATS连接成功", zap.String("url", url))
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) PublishNotification(n *model.Notification) error {
	data, err := encodeNotification(n)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(Subject(n.RecipientID), data); err != nil {
		util.Logger.Error("发布通知事件失败", zap.Error(err), zap.Int("notification_id", n.ID))
		return err
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// NopPublisher 未配置 NATS 时使用
type NopPublisher struct{}

func (NopPublisher) PublishNotification(*model.Notification) error { return nil }
func (NopPublisher) Close()                                        {}
