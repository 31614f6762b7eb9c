package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// accountQueue is both the queue name and the routing key on the default
// exchange.
const accountQueue = "account.events"

// Publisher emits AccountEvents to RabbitMQ.  It is constructed once with the
// broker URL and injected where needed.  Publishing never panics; errors are
// logged and returned so callers can ignore them without interrupting the
// request flow.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// Publish sends one event to the account queue.  The queue is declared
// durable and messages are marked persistent so they survive broker restarts.
func (p *Publisher) Publish(ctx context.Context, event AccountEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare so the publisher works before any consumer exists.
	if _, err := ch.QueueDeclare(
		accountQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",           // default exchange
		accountQueue, // routing key = queue name
		false,        // mandatory
		false,        // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
