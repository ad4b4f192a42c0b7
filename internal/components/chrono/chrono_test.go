package chrono

import (
	"errors"
	"testing"
	"time"

	"nhtk-schedule/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStandardTime(t *testing.T) {
	now := NewStandardTime().Now()
	require.Equal(t, Novosibirsk(), now.Location())

	_, offset := now.Zone()
	require.Equal(t, 7*60*60, offset)
}

func TestFixedTime(t *testing.T) {
	at := time.Date(2024, time.September, 9, 8, 30, 0, 0, Novosibirsk())
	require.Equal(t, at, FixedTime{At: at}.Now())
}

func TestCronLogger(t *testing.T) {
	rec := telemetry.NewRecorder()
	logger := cronLogger{tel: rec}

	logger.Info("start", "now", 1, "dangling")
	logger.Error(errors.New("boom"), "job failed", "entry", 2)

	debug := rec.Find(telemetry.REPORT_DEBUG, "cron: start")
	require.Len(t, debug, 1)
	require.Equal(t, []any{"now: 1"}, debug[0].Params)

	broken := rec.Find(telemetry.REPORT_BROKEN, "cron")
	require.Len(t, broken, 1)
	require.EqualError(t, broken[0].Params[0].(error), "job failed: boom")
	require.Equal(t, "entry: 2", broken[0].Params[1])
}

func TestStandardCronRejectsBadSpec(t *testing.T) {
	c := NewStandardCron(telemetry.NewRecorder())
	defer c.Stop()

	require.Error(t, c.Cron("not a spec", func() {}))
	require.NoError(t, c.Cron("*/5 * * * *", func() {}))
}
