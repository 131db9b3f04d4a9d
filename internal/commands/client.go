// Package commands is the AMQP fabric between the API process and the
// background worker: durable command publishing one way, store-change
// notifications the other.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	url          string
	exchangeName string
	commandQueue string
	changeQueue  string
}

func NewClient(url, exchangeName, commandQueue, changeQueue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		url:          url,
		exchangeName: exchangeName,
		commandQueue: commandQueue,
		changeQueue:  changeQueue,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{c.commandQueue, c.changeQueue} {
		_, err = c.channel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		// routing key matches the queue name on a direct exchange
		err = c.channel.QueueBind(queue, queue, c.exchangeName, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// PublishCommand sends a command to the command queue.
func (c *Client) PublishCommand(ctx context.Context, cmd *Command) error {
	body, err := cmd.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	if err := c.publish(ctx, c.commandQueue, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published command",
		"kind", cmd.Kind,
		"entity", cmd.Entity,
		"id", cmd.ID,
		"exchange", c.exchangeName,
		"queue", c.commandQueue)
	return nil
}

// PublishChange announces a store change on the change queue.
func (c *Client) PublishChange(ctx context.Context, change *StoreChange) error {
	body, err := change.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := c.publish(ctx, c.changeQueue, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published store change",
		"entity", change.Entity,
		"id", change.ID,
		"queue", c.changeQueue)
	return nil
}

// ConsumeCommands delivers commands to handler with manual acks.
// A handler error requeues the delivery; an unmarshalable body is
// dropped.
func (c *Client) ConsumeCommands(ctx context.Context, handler func(*Command) error) error {
	msgs, err := c.channel.Consume(
		c.commandQueue, // queue
		"",             // consumer
		false,          // auto-ack (we want manual ack)
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming commands", "queue", c.commandQueue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping command consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			cmd, err := CommandFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal command", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(cmd); err != nil {
				slog.ErrorContext(ctx, "Failed to handle command",
					"error", err,
					"kind", cmd.Kind,
					"entity", cmd.Entity,
					"id", cmd.ID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

// ConsumeChanges delivers store-change notices to handler with manual
// acks.
func (c *Client) ConsumeChanges(ctx context.Context, handler func(*StoreChange) error) error {
	msgs, err := c.channel.Consume(
		c.changeQueue, // queue
		"",            // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming store changes", "queue", c.changeQueue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping change consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			change, err := StoreChangeFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal store change", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(change); err != nil {
				slog.ErrorContext(ctx, "Failed to handle store change",
					"error", err,
					"entity", change.Entity,
					"id", change.ID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
