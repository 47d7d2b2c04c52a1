/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dimkr/twitlinks/tweet"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPWriter is a [Writer] that publishes links to a durable queue.
//
// Tweets, mentions and hashtags are not published.
type AMQPWriter struct {
	conn  *amqp.Connection
	ch    publisher
	queue string
}

// NewAMQPWriter connects to a broker and declares a durable queue.
func NewAMQPWriter(url, queue string) (*AMQPWriter, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
	}

	return &AMQPWriter{conn: conn, ch: ch, queue: q.Name}, nil
}

func (w *AMQPWriter) WriteTweet(context.Context, tweet.Tweet) error {
	return nil
}

func (w *AMQPWriter) WriteLink(ctx context.Context, l Link) error {
	body, err := json.Marshal(l)
	if err != nil {
		return err
	}

	if err := w.ch.PublishWithContext(
		ctx,
		"",
		w.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("failed to publish %s: %w", l.Original, err)
	}

	return nil
}

func (w *AMQPWriter) WriteMention(context.Context, string, string) error {
	return nil
}

func (w *AMQPWriter) WriteHashtag(context.Context, string, string) error {
	return nil
}

// Close closes the connection to the broker.
func (w *AMQPWriter) Close() error {
	if w.conn == nil {
		return nil
	}

	var errs []error
	if ch, ok := w.ch.(*amqp.Channel); ok {
		errs = append(errs, ch.Close())
	}
	errs = append(errs, w.conn.Close())
	return errors.Join(errs...)
}
