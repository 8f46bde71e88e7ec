package database

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	called := m.Called(ctx, args)
	return called.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Close() error {
	return m.Called().Error(0)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	called := m.Called(ctx, limit)
	events, _ := called.Get(0).([]*OutboxEvent)
	return events, called.Error(1)
}

func (m *MockOutboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, err error) error {
	return m.Called(ctx, id, err).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRelay(redisClient RedisClient, outbox OutboxRepo) *Relay {
	return &Relay{
		redis:     redisClient,
		outbox:    outbox,
		logger:    testLogger(),
		interval:  time.Second,
		batchSize: 10,
	}
}

func testEvent(t *testing.T) *OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"sku": "Gold_Ring"})
	require.NoError(t, err)
	return &OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "snapshot",
		AggregateID:   "demo/Gold_Ring",
		EventType:     "SNAPSHOT_CREATED",
		Payload:       payload,
		TargetStream:  DefaultTargetStream,
		Status:        OutboxStatusPending,
		CreatedAt:     time.Now(),
	}
}

func successCmd(ctx context.Context) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal("1-0")
	return cmd
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	ctx := context.Background()
	event := testEvent(t)

	mockRedis := new(MockRedisClient)
	mockOutbox := new(MockOutboxRepo)

	mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{event}, nil)
	mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		return args.Stream == DefaultTargetStream
	})).Return(successCmd(ctx))
	mockOutbox.On("MarkProcessed", ctx, event.ID).Return(nil)

	relay := newTestRelay(mockRedis, mockOutbox)
	require.NoError(t, relay.processEvents(ctx))

	mockRedis.AssertExpectations(t)
	mockOutbox.AssertExpectations(t)
}

func TestProcessEventsMarksFailedOnPublishError(t *testing.T) {
	ctx := context.Background()
	event := testEvent(t)

	failCmd := redis.NewStringCmd(ctx)
	failCmd.SetErr(errors.New("redis down"))

	mockRedis := new(MockRedisClient)
	mockOutbox := new(MockOutboxRepo)

	mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{event}, nil)
	mockRedis.On("XAdd", ctx, mock.Anything).Return(failCmd)
	mockOutbox.On("MarkFailed", ctx, event.ID, mock.Anything).Return(nil)

	relay := newTestRelay(mockRedis, mockOutbox)
	require.NoError(t, relay.processEvents(ctx))

	mockOutbox.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
	mockOutbox.AssertExpectations(t)
}

func TestProcessEventsContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	bad := testEvent(t)
	bad.Payload = json.RawMessage("not json")
	good := testEvent(t)

	mockRedis := new(MockRedisClient)
	mockOutbox := new(MockOutboxRepo)

	mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{bad, good}, nil)
	mockOutbox.On("MarkFailed", ctx, bad.ID, mock.Anything).Return(nil)
	mockRedis.On("XAdd", ctx, mock.Anything).Return(successCmd(ctx))
	mockOutbox.On("MarkProcessed", ctx, good.ID).Return(nil)

	relay := newTestRelay(mockRedis, mockOutbox)
	require.NoError(t, relay.processEvents(ctx))

	mockOutbox.AssertExpectations(t)
	mockRedis.AssertNumberOfCalls(t, "XAdd", 1)
}

func TestProcessEventsEmptyOutbox(t *testing.T) {
	ctx := context.Background()

	mockRedis := new(MockRedisClient)
	mockOutbox := new(MockOutboxRepo)

	mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent(nil), nil)

	relay := newTestRelay(mockRedis, mockOutbox)
	require.NoError(t, relay.processEvents(ctx))

	mockRedis.AssertNotCalled(t, "XAdd", mock.Anything, mock.Anything)
}

func TestProcessEventsGetPendingError(t *testing.T) {
	ctx := context.Background()

	mockRedis := new(MockRedisClient)
	mockOutbox := new(MockOutboxRepo)

	mockOutbox.On("GetPending", ctx, 10).Return(nil, errors.New("db down"))

	relay := newTestRelay(mockRedis, mockOutbox)
	assert.Error(t, relay.processEvents(ctx))
}

func TestCalculateNextRetryTimeIsCapped(t *testing.T) {
	soon := calculateNextRetryTime(1)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), soon, time.Second)

	capped := calculateNextRetryTime(20)
	assert.WithinDuration(t, time.Now().Add(300*time.Second), capped, time.Second)
}
