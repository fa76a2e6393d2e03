package log

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	Warn(CatQuery, "malformed query", "path", "$[1]", "orphan")

	line := buf.String()
	require.Contains(t, line, "[WARN] [query] malformed query")
	require.Contains(t, line, "path=$[1]")
	require.Contains(t, line, "orphan=<missing>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	SetMinLevel(LevelWarn)
	Info(CatTags, "dropped")
	require.Empty(t, buf.String())

	SetMinLevel(LevelDebug)
	SetEnabled(false)
	Error(CatTags, "dropped too")
	require.Empty(t, buf.String())

	SetEnabled(true)
	ErrorErr(CatDB, "failed", nil)
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestLog_Subscribe(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Debug(CatECS, "attached", "entity", 7)

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "[DEBUG] [ecs] attached entity=7")
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel("info"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("ERROR"))
	require.Equal(t, LevelDebug, ParseLevel("verbose"))
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	got := formatEntry(ts, LevelInfo, CatTags, "Registered tags", []any{"tags", []string{"Enemy", "Enemy.Flying"}, "count", 2})
	require.Equal(t, "2024-05-01T09:30:00 [INFO] [tags] Registered tags tags=\"[Enemy Enemy.Flying]\" count=2\n", got)

	got = formatEntry(ts, LevelError, CatDB, "failed", []any{"error", `bad "quote"`, "orphan"})
	require.Equal(t, "2024-05-01T09:30:00 [ERROR] [db] failed error=\"bad \\\"quote\\\"\" orphan=<missing>\n", got)
}
