package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const maxBackoff = 30 * time.Second

func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"EOF",
		"broken pipe",
		"use of closed network connection",
		"message channel closed",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) reconnect() error {
	c.Close()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("redial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("reopen channel: %w", err)
	}
	c.conn = conn
	c.channel = channel
	if err := c.setup(); err != nil {
		c.Close()
		return fmt.Errorf("setup after reconnect: %w", err)
	}
	return nil
}

// ConsumeCommandsWithRetry keeps the command consumer alive across
// broker restarts, redialing with exponential backoff on connection
// errors. It stops only when ctx is done or on a non-connection error.
func (c *Client) ConsumeCommandsWithRetry(ctx context.Context, handler func(*Command) error) error {
	return c.consumeWithRetry(ctx, "commands", func() error {
		return c.ConsumeCommands(ctx, handler)
	})
}

// ConsumeChangesWithRetry is ConsumeChanges with the same reconnect
// behavior.
func (c *Client) ConsumeChangesWithRetry(ctx context.Context, handler func(*StoreChange) error) error {
	return c.consumeWithRetry(ctx, "changes", func() error {
		return c.ConsumeChanges(ctx, handler)
	})
}

func (c *Client) consumeWithRetry(ctx context.Context, what string, consume func() error) error {
	attempt := 0
	for {
		err := consume()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "Consumer lost connection, reconnecting",
			"consumer", what,
			"error", err,
			"attempt", attempt,
			"backoff", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		if err := c.reconnect(); err != nil {
			slog.ErrorContext(ctx, "Reconnect failed", "consumer", what, "error", err)
			attempt++
			continue
		}
		attempt = 0
	}
}
