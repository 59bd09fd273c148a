package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	reconnectDelay = 5 * time.Second
	reInitDelay    = 2 * time.Second
	publishTimeout = 10 * time.Second
	mailboxSize    = 256
)

var (
	ErrClosed       = errors.New("publisher closed")
	errNotConnected = errors.New("not connected to a server")
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQPublisher owns one connection to the broker. A mailbox goroutine
// serializes publishes while a second goroutine keeps the connection and
// channel alive.
type RabbitMQPublisher struct {
	queue   string
	addr    string
	mailbox chan []byte
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	conn    *amqp.Connection
	channel amqpChannel
	closed  bool
}

func NewRabbitMQPublisher(addr, queue string) *RabbitMQPublisher {
	p := newPublisher(queue)
	p.addr = addr
	p.wg.Add(2)
	go p.handleReconnect()
	go p.run()
	return p
}

func newPublisher(queue string) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		queue:   queue,
		mailbox: make(chan []byte, mailboxSize),
		done:    make(chan struct{}),
	}
}

// Publish queues the event for delivery.
func (p *RabbitMQPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case p.mailbox <- body:
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains nothing: queued events that were not yet delivered are dropped.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.channel.(*amqp.Channel); ok && ch != nil {
		if err := ch.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing rabbitmq channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("failed to close rabbitmq connection: %w", err)
		}
	}
	log.Info().Str("queue", p.queue).Msg("rabbitmq publisher stopped")
	return nil
}

func (p *RabbitMQPublisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case body := <-p.mailbox:
			if err := p.push(body); err != nil {
				log.Error().Err(err).Str("queue", p.queue).Msg("failed to publish event")
			}
		}
	}
}

func (p *RabbitMQPublisher) push(body []byte) error {
	p.mu.Lock()
	ch := p.channel
	p.mu.Unlock()
	if ch == nil {
		return errNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// handleReconnect dials until it succeeds and redials whenever the
// connection drops.
func (p *RabbitMQPublisher) handleReconnect() {
	defer p.wg.Done()
	for {
		conn, err := amqp.Dial(p.addr)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", reconnectDelay).Msg("failed to connect to rabbitmq")
			select {
			case <-time.After(reconnectDelay):
				continue
			case <-p.done:
				return
			}
		}

		p.mu.Lock()
		p.conn = conn
		p.mu.Unlock()
		log.Info().Str("queue", p.queue).Msg("connected to rabbitmq")

		notifyConnClose := conn.NotifyClose(make(chan *amqp.Error, 1))
		if done := p.handleReInit(conn, notifyConnClose); done {
			return
		}
	}
}

// handleReInit keeps a channel open on conn. It reports true when the
// publisher is shutting down.
func (p *RabbitMQPublisher) handleReInit(conn *amqp.Connection, notifyConnClose chan *amqp.Error) bool {
	for {
		ch, err := p.init(conn)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", reInitDelay).Msg("failed to initialize rabbitmq channel")
			select {
			case <-time.After(reInitDelay):
				continue
			case <-notifyConnClose:
				p.setChannel(nil)
				return false
			case <-p.done:
				return true
			}
		}

		notifyChanClose := ch.NotifyClose(make(chan *amqp.Error, 1))
		p.setChannel(ch)

		select {
		case <-p.done:
			return true
		case <-notifyConnClose:
			log.Warn().Msg("rabbitmq connection closed, reconnecting")
			p.setChannel(nil)
			return false
		case <-notifyChanClose:
			log.Warn().Msg("rabbitmq channel closed, re-initializing")
			p.setChannel(nil)
		}
	}
}

func (p *RabbitMQPublisher) init(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

func (p *RabbitMQPublisher) setChannel(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch == nil {
		p.channel = nil
		return
	}
	p.channel = ch
}
