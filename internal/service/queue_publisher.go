// Package service orchestrates the repositories, the scraper and the pure
// analysis functions into the operations the HTTP layer and the scheduler
// call.  This file publishes scrape jobs to RabbitMQ; errors are logged
// and returned so callers can decide whether a failed publish should fail
// the request.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/jwlee-dev/encoreview/internal/queue"
)

// PublishScrapeRequested publishes a ScrapeRequestedEvent to the
// scrape.requested queue.  Messages are marked persistent so queued jobs
// survive broker restarts.  The connection is opened per publish: scrape
// requests are rare enough that holding a channel open buys nothing.
func PublishScrapeRequested(ctx context.Context, event q.ScrapeRequestedEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
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

	// Ensure the queue exists (idempotent). Durable so jobs survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.ScrapeQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
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
		"",                // default exchange
		q.ScrapeQueueName, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
