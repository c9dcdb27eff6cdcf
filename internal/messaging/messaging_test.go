package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestHeaderConversion(t *testing.T) {
	in := map[string]string{HeaderEventType: "purchase_order.created"}

	headers := toKafkaHeaders(in)
	assert.Equal(t, []kafka.Header{{Key: HeaderEventType, Value: []byte("purchase_order.created")}}, headers)
	assert.Equal(t, in, fromKafkaHeaders(headers))

	assert.Nil(t, toKafkaHeaders(nil))
	assert.Nil(t, fromKafkaHeaders(nil))
}

func TestNoopClient(t *testing.T) {
	client := NewNoop("purchase-orders.events")
	assert.Equal(t, "purchase-orders.events", client.Topic())
	assert.NoError(t, client.Publish(context.Background(), nil, []byte("{}"), nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := client.Consume(ctx, func(context.Context, Message) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
