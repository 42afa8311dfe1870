package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"interview-scheduler/internal/domain"
)

const (
	TypeCreated = "timeslot.created"
	TypeUpdated = "timeslot.updated"
	TypeDeleted = "timeslot.deleted"
)

type Event struct {
	Type string          `json:"type"`
	Slot domain.TimeSlot `json:"slot"`
	At   time.Time       `json:"at"`
}

func New(typ string, s domain.TimeSlot) Event {
	return Event{Type: typ, Slot: s, At: time.Now().UTC()}
}

// Publisher 发布时间段变更事件，供下游（通知、日历同步）消费
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

const defaultTimeout = 2 * time.Second

// Rabbit 每次发布短连接；Timeout 限制建连、握手和发布的总时长
type Rabbit struct {
	URL     string
	Queue   string
	Timeout time.Duration
	Log     *zap.Logger
}

// NewPublisher returns a Dummy when no broker url is configured.
func NewPublisher(url, queue string, l *zap.Logger) Publisher {
	if url == "" {
		return &Dummy{}
	}
	if queue == "" {
		queue = "timeslot.events"
	}
	return &Rabbit{URL: url, Queue: queue, Timeout: defaultTimeout, Log: l}
}

// dial 建连受 ctx 和截止时间约束，握手完成后 amqp 会清掉 deadline
func (r *Rabbit) dial(ctx context.Context) (*amqp.Connection, error) {
	deadline, _ := ctx.Deadline()
	return amqp.DialConfig(r.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
	})
}

func (r *Rabbit) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := r.dial(ctx)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(r.Queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", q.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         e.Type,
		MessageId:    e.Slot.ID,
		Timestamp:    e.At,
		Body:         body,
	})
	if err != nil {
		return err
	}
	if r.Log != nil {
		r.Log.Debug("event published", zap.String("type", e.Type), zap.String("id", e.Slot.ID))
	}
	return nil
}

type Dummy struct{}

func (*Dummy) Publish(context.Context, Event) error { return nil }
