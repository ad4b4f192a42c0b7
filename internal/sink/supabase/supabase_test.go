package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"nhtk-schedule/internal/components/telemetry"
	"nhtk-schedule/internal/sink"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testKey = "service-key"

type request struct {
	Method string
	Path   string
	Query  map[string]string
	Prefer string
	Body   []sink.Row
}

type fakePostgrest struct {
	mutex    sync.Mutex
	requests []request
	latest   string
	status   int
}

func (f *fakePostgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if r.Header.Get("apikey") != testKey || r.Header.Get("Authorization") != "Bearer "+testKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	req := request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  map[string]string{},
		Prefer: r.Header.Get("Prefer"),
	}
	for key := range r.URL.Query() {
		req.Query[key] = r.URL.Query().Get(key)
	}
	if r.Method == http.MethodPost {
		err := json.NewDecoder(r.Body).Decode(&req.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}
	f.requests = append(f.requests, req)

	if f.status != 0 {
		w.WriteHeader(f.status)
		w.Write([]byte(`{"message":"boom"}`))
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		if f.latest == "" {
			w.Write([]byte(`[]`))
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{{"data_hash": f.latest}})
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		w.WriteHeader(http.StatusCreated)
	}
}

func newTestSink(t *testing.T, server *httptest.Server) Sink {
	s, err := New(Options{Url: server.URL + "/", Key: testKey}, telemetry.NewRecorder())
	require.NoError(t, err)
	return s
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Options{Url: "https://example.supabase.co"}, telemetry.NewRecorder())
	require.Error(t, err)
	_, err = New(Options{Key: testKey}, telemetry.NewRecorder())
	require.Error(t, err)
}

func TestLatestFingerprint(t *testing.T) {
	fake := &fakePostgrest{}
	server := httptest.NewServer(fake)
	defer server.Close()
	s := newTestSink(t, server)

	hash, found, err := s.LatestFingerprint(context.Background(), "09.07.13п1")
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, hash)

	fake.latest = "0123456789abcdef0123456789abcdef"
	hash, found, err = s.LatestFingerprint(context.Background(), "09.07.13п1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, fake.latest, hash)

	require.Equal(t, request{
		Method: http.MethodGet,
		Path:   "/rest/v1/schedule_items",
		Query: map[string]string{
			"select":     "data_hash",
			"group_code": "eq.09.07.13п1",
			"order":      "parsed_at.desc",
			"limit":      "1",
		},
	}, fake.requests[1])
}

func TestLatestFingerprintFailure(t *testing.T) {
	fake := &fakePostgrest{status: http.StatusInternalServerError}
	server := httptest.NewServer(fake)
	defer server.Close()

	rec := telemetry.NewRecorder()
	s, err := New(Options{Url: server.URL, Key: testKey}, rec)
	require.NoError(t, err)

	_, _, err = s.LatestFingerprint(context.Background(), "09.07.13п1")
	require.True(t, errors.Is(err, ErrStatus))
	require.Len(t, rec.Find(telemetry.REPORT_BROKEN, report_sink_latest_fingerprint), 1)
}

func TestReplace(t *testing.T) {
	fake := &fakePostgrest{}
	server := httptest.NewServer(fake)
	defer server.Close()
	s := newTestSink(t, server)

	number := 1
	rows := []sink.Row{
		{
			GroupCode:    "09.07.13п1",
			Day:          "Понедельник, 9 сентября",
			LessonNumber: &number,
			Time:         "8:30–10:00",
			Subject:      "Математика",
			ParsedAt:     "2024-09-08T05:00:00.000000Z",
			DataHash:     "abc",
		},
		{
			GroupCode: "09.07.13п1",
			Day:       "Вторник, 10 сентября",
			Time:      "19:00–20:00",
			Subject:   "Английский язык",
			ParsedAt:  "2024-09-08T05:00:00.000000Z",
			DataHash:  "abc",
		},
	}

	err := s.Replace(context.Background(), "09.07.13п1", rows)
	require.NoError(t, err)

	expected := []request{
		{
			Method: http.MethodDelete,
			Path:   "/rest/v1/schedule_items",
			Query:  map[string]string{"group_code": "eq.09.07.13п1"},
		},
		{
			Method: http.MethodPost,
			Path:   "/rest/v1/schedule_items",
			Query:  map[string]string{},
			Prefer: "return=minimal",
			Body:   rows,
		},
	}
	if diff := cmp.Diff(expected, fake.requests); diff != "" {
		t.Fatal(diff)
	}
}

func TestReplaceStopsWhenDeleteFails(t *testing.T) {
	fake := &fakePostgrest{status: http.StatusForbidden}
	server := httptest.NewServer(fake)
	defer server.Close()
	s := newTestSink(t, server)

	err := s.Replace(context.Background(), "09.07.13п1", []sink.Row{{GroupCode: "09.07.13п1"}})
	require.True(t, errors.Is(err, ErrStatus))
	require.Len(t, fake.requests, 1)
	require.Equal(t, http.MethodDelete, fake.requests[0].Method)
}
