package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "unibuild/pkg/platform/audit"
)

func TestAppendLogsSecurityEventsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	s := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, s.Append(context.Background(), audit.Event{
		Category: audit.CategorySecurity,
		Action:   string(audit.EventLoginFailed),
		Reason:   "unauthorized",
	}))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "login_failed", entry["action"])
	assert.Equal(t, "audit", entry["component"])
}
