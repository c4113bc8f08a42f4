package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKeyPedidoCriado is published whenever a chat order is persisted
const RoutingKeyPedidoCriado = "pedido.criado"

// PedidoCriado is the payload for an order-created event
type PedidoCriado struct {
	EventID         string    `json:"event_id"`
	NumeroPedido    string    `json:"numero_pedido"`
	ClienteTelefone string    `json:"cliente_telefone"`
	Total           float64   `json:"total"`
	QtdItens        int       `json:"qtd_itens"`
	CriadoEm        time.Time `json:"criado_em"`
}

// Publisher emits domain events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
	Close() error
}

type amqpPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// NewPublisher connects to RabbitMQ and declares the topic exchange
func NewPublisher(url, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &amqpPublisher{conn: conn, exchange: exchange}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("📤 Event published: %s", key)
	return nil
}

func (p *amqpPublisher) Close() error {
	return p.conn.Close()
}

// FallbackPublisher is used when no broker is configured; publishes are
// logged and dropped.
type FallbackPublisher struct{}

// NewFallback creates a no-op publisher
func NewFallback() Publisher {
	return &FallbackPublisher{}
}

func (p *FallbackPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	log.Printf("⚠️  No broker configured, skipping event: %s", key)
	return nil
}

func (p *FallbackPublisher) Close() error {
	return nil
}
