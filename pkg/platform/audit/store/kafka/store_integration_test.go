//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"unibuild/internal/platform/config"
	platformkafka "unibuild/internal/platform/kafka"
	audit "unibuild/pkg/platform/audit"
	"unibuild/pkg/testutil/containers"
)

func TestStoreAgainstRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const topic = "portal.audit.test"
	producer, err := platformkafka.New(config.KafkaConfig{Brokers: []string{rp.Broker}, AuditTopic: topic})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, platformkafka.EnsureTopic(ctx, producer, topic, 1))
	require.NoError(t, platformkafka.EnsureTopic(ctx, producer, topic, 1), "second call tolerates an existing topic")

	s := New(producer, topic, nil)
	require.NoError(t, s.Append(ctx, audit.Event{Action: string(audit.EventLoggedOut), DeviceID: "dev-1"}))
	require.NoError(t, s.Flush(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, "logged_out", got.Action)
}
