package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/local_market/internal/breaker"
	"github.com/Skotchmaster/local_market/internal/models"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func testOrder() *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ShopID:      uuid.New(),
		Status:      models.OrderPending,
		TotalAmount: decimal.NewFromInt(30),
	}
}

func TestProducer_PublishWritesKeyedMessage(t *testing.T) {
	w := new(mockWriter)
	p := newProducer(w)
	order := testOrder()

	var sent []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()

	require.NoError(t, p.Publish(context.Background(), NewOrderEvent(OrderCreated, order)))
	w.AssertExpectations(t)

	require.Len(t, sent, 1)
	assert.Equal(t, order.ID.String(), string(sent[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(sent[0].Value, &got))
	assert.Equal(t, "order_created", got["type"])
	assert.Equal(t, order.ID.String(), got["orderID"])
	assert.Equal(t, "pending", got["status"])
	assert.EqualValues(t, 30, got["totalAmount"])
}

func TestProducer_BreakerOpensOnRepeatedFailures(t *testing.T) {
	w := new(mockWriter)
	p := newProducer(w)
	boom := errors.New("broker down")

	w.On("WriteMessages", mock.Anything, mock.Anything).Return(boom).Times(3)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, p.Publish(context.Background(), NewOrderEvent(OrderCreated, testOrder())), boom)
	}

	err := p.Publish(context.Background(), NewOrderEvent(OrderCreated, testOrder()))
	require.ErrorIs(t, err, breaker.ErrUnavailable)
	w.AssertNumberOfCalls(t, "WriteMessages", 3)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.Publish(context.Background(), OrderEvent{}))
	require.NoError(t, p.Close())
}
