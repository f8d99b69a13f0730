package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samims/notifier/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockProducer(t *testing.T) *mocks.AsyncProducer {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewAsyncProducer(t, cfg)
}

func TestProducer_PublishKeysByNotificationID(t *testing.T) {
	mp := newMockProducer(t)

	var got *sarama.ProducerMessage
	mp.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		got = msg
		return nil
	})

	var wg sync.WaitGroup
	p := NewProducer(mp, model.TopicNotificationRequested, discardLogger(), &wg)
	p.Start(context.Background())

	evt := model.NotificationRequested{
		NotificationID: "7f1c",
		Recipient:      "user@example.com",
		Subject:        "Welcome",
		Body:           "Hello",
		Channel:        model.ChannelEmail,
		Timestamp:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), evt))
	p.Close(context.Background())

	require.NotNil(t, got)
	assert.Equal(t, model.TopicNotificationRequested, got.Topic)

	key, err := got.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "7f1c", string(key))

	value, err := got.Value.Encode()
	require.NoError(t, err)
	var decoded model.NotificationRequested
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, evt, decoded)
}

func TestProducer_DeliveryErrorIsAbsorbed(t *testing.T) {
	mp := newMockProducer(t)
	mp.ExpectInputAndFail(errors.New("broker down"))

	var wg sync.WaitGroup
	p := NewProducer(mp, model.TopicNotificationRequested, discardLogger(), &wg)
	p.Start(context.Background())

	assert.NoError(t, p.Publish(context.Background(), model.NotificationRequested{NotificationID: "n1"}))

	// Close drains the error channel and must not block or panic
	assert.NotPanics(t, func() {
		p.Close(context.Background())
		p.Close(context.Background())
	})
}

func TestNewProducer_RejectsMissingDependencies(t *testing.T) {
	var wg sync.WaitGroup
	assert.Panics(t, func() { NewProducer(nil, "topic", discardLogger(), &wg) })
	assert.Panics(t, func() { NewProducer(newMockProducer(t), "", discardLogger(), &wg) })
}
