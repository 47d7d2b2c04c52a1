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
	"testing"

	"github.com/dimkr/twitlinks/tweet"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type testPublisher struct {
	Keys     []string
	Messages []amqp.Publishing
	Err      error
}

func (p *testPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if p.Err != nil {
		return p.Err
	}

	p.Keys = append(p.Keys, key)
	p.Messages = append(p.Messages, msg)
	return nil
}

func TestAMQPWriter_PublishesLinks(t *testing.T) {
	assert := assert.New(t)

	p := &testPublisher{}
	w := &AMQPWriter{ch: p, queue: "links"}

	writeAll(t, w)

	assert.Equal([]string{"links"}, p.Keys)
	assert.Len(p.Messages, 1)
	assert.Equal("application/json", p.Messages[0].ContentType)
	assert.Equal(amqp.Persistent, p.Messages[0].DeliveryMode)

	var l Link
	assert.NoError(json.Unmarshal(p.Messages[0].Body, &l))
	assert.Equal(Link{TweetID: "42", Target: "https://example.com/", Original: "https://t.co/x", Status: "ok"}, l)
}

func TestAMQPWriter_PublishError(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("channel closed")
	w := &AMQPWriter{ch: &testPublisher{Err: failure}, queue: "links"}

	assert.NoError(w.WriteTweet(context.Background(), tweet.Tweet{}))
	assert.ErrorIs(w.WriteLink(context.Background(), Link{Original: "https://t.co/x"}), failure)
}
