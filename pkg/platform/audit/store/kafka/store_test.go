package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "unibuild/pkg/platform/audit"
	"unibuild/pkg/platform/audit/publisher"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
	flushes int
}

func (f *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
	promise(r, f.err)
}

func (f *fakeProducer) Flush(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func TestShutdownFlushesProducerAfterDrain(t *testing.T) {
	p := &fakeProducer{}
	pub := publisher.NewPublisher(New(p, "portal.audit", nil), publisher.WithAsyncBuffer(16))
	for range 5 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventLoggedOut), DeviceID: "dev-1"}))
	}

	require.NoError(t, pub.Shutdown(context.Background()))

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Len(t, p.records, 5)
	assert.Equal(t, 1, p.flushes)
}

func TestAppendProducesJSONRecord(t *testing.T) {
	p := &fakeProducer{}
	s := New(p, "portal.audit", nil)

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	err := s.Append(context.Background(), audit.Event{
		Category:  audit.CategorySecurity,
		Timestamp: ts,
		Action:    string(audit.EventLoginFailed),
		Email:     "a@b.c",
		DeviceID:  "dev-1",
	})
	require.NoError(t, err)

	require.Len(t, p.records, 1)
	r := p.records[0]
	assert.Equal(t, "portal.audit", r.Topic)
	assert.Equal(t, []byte("dev-1"), r.Key)

	var got audit.Event
	require.NoError(t, json.Unmarshal(r.Value, &got))
	assert.Equal(t, "login_failed", got.Action)
	assert.Equal(t, ts, got.Timestamp)
	assert.Contains(t, r.Headers, kgo.RecordHeader{Key: "category", Value: []byte("security")})
}

func TestAppendSwallowsDeliveryErrors(t *testing.T) {
	p := &fakeProducer{err: errors.New("broker down")}
	s := New(p, "portal.audit", nil)
	assert.NoError(t, s.Append(context.Background(), audit.Event{Action: "logged_out"}))
}
