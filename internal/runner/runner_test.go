package runner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nhtk-schedule/internal/components/chrono"
	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/scrapers/nhtk"
	"nhtk-schedule/internal/sink"
	"nhtk-schedule/internal/sink/sqlstore"
	"nhtk-schedule/internal/syncer"

	"github.com/stretchr/testify/require"
)

const testPage = `<html><body>
<h1>Расписание занятий на 1 семестр 2024 г.</h1>
<p>Группа 09.07.13п1</p>
<table>
	<tr><td colspan="5">Понедельник, 9 сентября</td></tr>
	<tr><th>№</th><th>Время</th><th>Предмет</th><th>Преподаватель</th><th>Ауд.</th></tr>
	<tr>
		<td>1</td>
		<td>8:30–10:00</td>
		<td><a href="https://do.nhtk-edu.ru/course/view.php?id=12">Математика [2 п/г]</a></td>
		<td><a href="/teacher/ivanov.html">Иванов И.И.</a></td>
		<td>204</td>
	</tr>
</table>
</body></html>`

type brokenSink struct{}

func (brokenSink) Name() string {
	return "broken"
}

func (brokenSink) LatestFingerprint(ctx context.Context, group string) (string, bool, error) {
	return "", false, errors.New("unreachable")
}

func (brokenSink) Replace(ctx context.Context, group string, rows []sink.Row) error {
	return errors.New("unreachable")
}

type testEnv struct {
	server *httptest.Server
	rec    *telemetry.Recorder
	time   chrono.TimeAPI
	store  sqlstore.Store
	output string
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) testEnv {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	database, err := sqlstore.OpenDB(sqlstore.DRIVER_SQLITE, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	rec := telemetry.NewRecorder()
	store := sqlstore.NewStore(database, rec)
	err = store.Migrate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	return testEnv{
		server: server,
		rec:    rec,
		time:   chrono.FixedTime{At: time.Date(2024, time.September, 8, 12, 0, 0, 0, chrono.Novosibirsk())},
		store:  store,
		output: filepath.Join(t.TempDir(), "nhtk_schedule.json"),
	}
}

func (e testEnv) runner(sinks ...sink.Sink) Runner {
	var syncers []syncer.Syncer
	for _, s := range sinks {
		syncers = append(syncers, syncer.New(s, e.time, e.rec))
	}
	client := nhtk.NewClient(nhtk.ClientOptions{Timeout: time.Second}, e.rec)
	parser := nhtk.NewParser(nhtk.Options{BaseUrl: "https://расписание.нхтк.рф"}, e.time, e.rec)
	return New(client, parser, syncers, e.rec)
}

func (e testEnv) options() Options {
	return Options{
		Url:    e.server.URL + "/09.07.13п1.html",
		Output: e.output,
	}
}

func servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(testPage))
}

func TestRun(t *testing.T) {
	env := newTestEnv(t, servePage)
	r := env.runner(env.store)
	ctx := context.Background()

	doc, err := r.Run(ctx, env.options())
	require.NoError(t, err)
	require.Equal(t, "09.07.13п1", doc.Metadata.Group)
	require.Len(t, doc.Schedule, 1)
	require.Equal(t, "Математика", doc.Schedule[0].Subject)
	require.Equal(t, "https://расписание.нхтк.рф/teacher/ivanov.html", doc.Schedule[0].TeacherUrl)

	contents, err := os.ReadFile(env.output)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"subject": "Математика"`)
	var written nhtk.Document
	require.NoError(t, json.Unmarshal(contents, &written))
	require.Equal(t, doc.Schedule, written.Schedule)

	rows, err := env.store.Rows(ctx, "09.07.13п1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, doc.Metadata.SourceUrl, rows[0].SourceUrl)

	// a second run with the same page leaves the archive alone
	_, err = r.Run(ctx, env.options())
	require.NoError(t, err)
	require.NotEmpty(t, env.rec.Find(telemetry.REPORT_DEBUG, "sink already up to date"))
}

func TestRunFetchFailure(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r := env.runner(env.store)

	_, err := r.Run(context.Background(), env.options())
	require.True(t, errors.Is(err, nhtk.ErrFetch))
	require.NoFileExists(t, env.output)
	require.Len(t, env.rec.Find(telemetry.REPORT_BROKEN, report_runner_fetch), 1)
}

func TestRunSyncFailureKeepsArtifact(t *testing.T) {
	env := newTestEnv(t, servePage)
	r := env.runner(brokenSink{}, env.store)
	ctx := context.Background()

	doc, err := r.Run(ctx, env.options())
	require.True(t, errors.Is(err, ErrSync))
	require.Len(t, doc.Schedule, 1)
	require.FileExists(t, env.output)

	// the other sink is still synced
	rows, err := env.store.Rows(ctx, "09.07.13п1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRunWithoutSinks(t *testing.T) {
	env := newTestEnv(t, servePage)
	r := env.runner()

	_, err := r.Run(context.Background(), env.options())
	require.NoError(t, err)
	require.FileExists(t, env.output)
}
