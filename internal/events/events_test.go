package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvent_Codec(t *testing.T) {
	e := New(EntityJob, ActionDeleted, "job-1")
	assert.Equal(t, "job.deleted", e.RoutingKey())

	data, err := e.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Entity, got.Entity)
	assert.True(t, e.At.Equal(got.At))

	_, err = Decode([]byte(`{"id":"1"}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{base: "http://localhost:8080", want: "ws://localhost:8080/api/events/ws"},
		{base: "https://board.example.com/", want: "wss://board.example.com/api/events/ws"},
		{base: "ws://127.0.0.1:9000", want: "ws://127.0.0.1:9000/api/events/ws"},
		{base: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := WebsocketURL(tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type recordingPublisher struct {
	err    error
	events []Event
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestMulti_PublishesToAll(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	ok := &recordingPublisher{}

	err := Multi{failing, ok}.Publish(context.Background(), New(EntityApplicant, ActionUpdated, "a-1"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)
	assert.NoError(t, Multi{}.Publish(context.Background(), Event{}))
}

func TestHub_DeliversToSubscribers(t *testing.T) {
	hub := NewHub(discard(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the hub serves on every path, so the base URL is enough
	sub, err := Subscribe(ctx, srv.URL, nil, discard())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(ctx, New(EntityJob, ActionCreated, "job-7")))

	select {
	case e := <-sub.Events():
		assert.Equal(t, EntityJob, e.Entity)
		assert.Equal(t, ActionCreated, e.Action)
		assert.Equal(t, "job-7", e.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestHub_CloseDisconnects(t *testing.T) {
	hub := NewHub(discard(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	sub, err := Subscribe(context.Background(), srv.URL, nil, discard())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()

	select {
	case _, open := <-sub.Events():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
	assert.NoError(t, hub.Publish(context.Background(), New(EntityJob, ActionDeleted, "x")))
}

func TestSubscription_CloseWithFullBuffer(t *testing.T) {
	hub := NewHub(discard(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	ctx := context.Background()
	sub, err := Subscribe(ctx, srv.URL, nil, discard())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Events is never drained, so the reader ends up waiting on the next delivery
	for i := 0; i < cap(sub.events); i++ {
		require.NoError(t, hub.Publish(ctx, New(EntityJob, ActionUpdated, fmt.Sprintf("job-%d", i))))
		want := i + 1
		require.Eventually(t, func() bool { return len(sub.events) == want }, 2*time.Second, 5*time.Millisecond)
	}
	require.NoError(t, hub.Publish(ctx, New(EntityJob, ActionUpdated, "job-overflow")))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, sub.Close())

	select {
	case <-sub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader still running after Close")
	}

	drained := 0
	for range sub.Events() {
		drained++
	}
	assert.Equal(t, cap(sub.events), drained)
}

type fakeAMQP struct {
	key         string
	body        []byte
	contentType string
	err         error
}

func (f *fakeAMQP) PublishWithRetry(_ context.Context, key string, body []byte, contentType string) error {
	f.key, f.body, f.contentType = key, body, contentType
	return f.err
}

func TestRabbitMQ_Publish(t *testing.T) {
	amqp := &fakeAMQP{}
	p := NewRabbitMQ(amqp)

	require.NoError(t, p.Publish(context.Background(), New(EntityApplicant, ActionDeleted, "a-9")))
	assert.Equal(t, "applicant.deleted", amqp.key)
	assert.Equal(t, "application/json", amqp.contentType)

	got, err := Decode(amqp.body)
	require.NoError(t, err)
	assert.Equal(t, "a-9", got.ID)

	amqp.err = errors.New("channel closed")
	err = p.Publish(context.Background(), New(EntityJob, ActionCreated, "j"))
	assert.ErrorContains(t, err, "failed to publish job.created to rabbitmq")
}

type fakeRedis struct {
	channel string
	message any
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *goredis.IntCmd {
	f.channel, f.message = channel, message
	return goredis.NewIntResult(1, f.err)
}

func TestRedis_Publish(t *testing.T) {
	rdb := &fakeRedis{}
	p := NewRedis(rdb, "board:events", discard())

	require.NoError(t, p.Publish(context.Background(), New(EntityJob, ActionUpdated, "j-2")))
	assert.Equal(t, "board:events", rdb.channel)

	body, ok := rdb.message.([]byte)
	require.True(t, ok)
	got, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, got.Action)

	rdb.err = errors.New("connection refused")
	assert.ErrorContains(t, p.Publish(context.Background(), New(EntityJob, ActionUpdated, "j-2")), "failed to publish job.updated to redis")
}
