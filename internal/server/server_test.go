package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/queue"
	mid "github.com/OFFIS-RIT/lexgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"
)

type fakeDocs struct {
	records  []common.Record
	counts   store.DocumentCounts
	err      error
	limit    int
	markedID []int64
	resetIDs []string
}

func (f *fakeDocs) FetchUnprocessed(ctx context.Context, limit int) ([]common.Record, error) {
	f.limit = limit
	return f.records, f.err
}

func (f *fakeDocs) FetchByDocIDs(ctx context.Context, docIDs []string) ([]common.Record, error) {
	return nil, f.err
}

func (f *fakeDocs) MarkProcessed(ctx context.Context, ids []int64) (int64, error) {
	f.markedID = ids
	return int64(len(ids)), f.err
}

func (f *fakeDocs) ResetProcessed(ctx context.Context, docIDs []string) (int64, error) {
	f.resetIDs = docIDs
	return int64(len(docIDs)), f.err
}

func (f *fakeDocs) ReportDefects(ctx context.Context, defects []store.Defect) error {
	return f.err
}

func (f *fakeDocs) Counts(ctx context.Context) (store.DocumentCounts, error) {
	return f.counts, f.err
}

type fakeRuns struct {
	runs  []store.Run
	stats store.RunStats
	limit int
}

func (f *fakeRuns) RecordRun(ctx context.Context, run store.Run) error { return nil }

func (f *fakeRuns) LatestRuns(ctx context.Context, limit int) ([]store.Run, error) {
	f.limit = limit
	return f.runs, nil
}

func (f *fakeRuns) RunStats(ctx context.Context) (store.RunStats, error) {
	return f.stats, nil
}

type fakeIngest struct {
	mu     sync.Mutex
	status ingest.Status
	opts   []ingest.RunOptions
	ran    chan struct{}
}

func (f *fakeIngest) RunOnce(ctx context.Context, opts ingest.RunOptions) (ingest.RunResult, error) {
	f.mu.Lock()
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	if f.ran != nil {
		close(f.ran)
	}
	return ingest.RunResult{}, nil
}

func (f *fakeIngest) Status() ingest.Status {
	return f.status
}

type fakeQueue struct {
	msgs []queue.IngestMessage
	err  error
}

func (f *fakeQueue) Enqueue(ctx context.Context, msg queue.IngestMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

type fakeLease struct {
	holder *leaselock.Holder
}

func (f *fakeLease) Holder(ctx context.Context, key string) (*leaselock.Holder, error) {
	return f.holder, nil
}

func do(t *testing.T, app *mid.App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := New(app)
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, &mid.App{}, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestStatus(t *testing.T) {
	expires := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	app := &mid.App{
		Ingest: &fakeIngest{status: ingest.Status{Running: true, Sink: "dgraph", TotalProcessed: 7}},
		Lease:  &fakeLease{holder: &leaselock.Holder{Key: "k", Token: "worker-1:abc", ExpiresAt: expires}},
		Queue:  &fakeQueue{},
	}
	rec := do(t, app, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}

	var got struct {
		Running        bool              `json:"running"`
		Sink           string            `json:"sink"`
		TotalProcessed int64             `json:"total_processed"`
		Queue          bool              `json:"queue"`
		Holder         *leaselock.Holder `json:"lease_holder"`
	}
	decode(t, rec, &got)
	if !got.Running || got.Sink != "dgraph" || got.TotalProcessed != 7 || !got.Queue {
		t.Fatalf("unexpected status: %+v", got)
	}
	if got.Holder == nil || got.Holder.Token != "worker-1:abc" {
		t.Fatalf("unexpected holder: %+v", got.Holder)
	}
}

func TestProcessEnqueues(t *testing.T) {
	q := &fakeQueue{}
	app := &mid.App{Ingest: &fakeIngest{}, Queue: q}

	rec := do(t, app, http.MethodPost, "/process", `{"doc_ids":["d1"],"force":true}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code %d: %s", rec.Code, rec.Body.String())
	}
	want := []queue.IngestMessage{{DocIDs: []string{"d1"}, Force: true}}
	if !reflect.DeepEqual(q.msgs, want) {
		t.Fatalf("queued %+v, want %+v", q.msgs, want)
	}
}

func TestProcessValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "force without ids", body: `{"force":true}`},
		{name: "negative limit", body: `{"limit":-5}`},
		{name: "empty doc id", body: `{"doc_ids":[""]}`},
		{name: "malformed", body: `{"limit":`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQueue{}
			rec := do(t, &mid.App{Ingest: &fakeIngest{}, Queue: q}, http.MethodPost, "/process", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status code %d, want 400", rec.Code)
			}
			if len(q.msgs) != 0 {
				t.Fatalf("invalid request must not be queued")
			}
		})
	}
}

func TestProcessQueueFailure(t *testing.T) {
	app := &mid.App{Ingest: &fakeIngest{}, Queue: &fakeQueue{err: errors.New("channel closed")}}
	rec := do(t, app, http.MethodPost, "/process", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status code %d, want 500", rec.Code)
	}
}

func TestProcessRunsLocallyWithoutQueue(t *testing.T) {
	ing := &fakeIngest{ran: make(chan struct{})}
	rec := do(t, &mid.App{Ingest: ing}, http.MethodPost, "/process", `{"limit":10,"dry_run":true}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code %d", rec.Code)
	}

	select {
	case <-ing.ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("run was not started")
	}
	ing.mu.Lock()
	defer ing.mu.Unlock()
	if len(ing.opts) != 1 || ing.opts[0].Limit != 10 || !ing.opts[0].DryRun || !ing.opts[0].OnDemand {
		t.Fatalf("unexpected run options: %+v", ing.opts)
	}
}

func TestProcessBusyWithoutQueue(t *testing.T) {
	ing := &fakeIngest{status: ingest.Status{Processing: true}}
	rec := do(t, &mid.App{Ingest: ing}, http.MethodPost, "/process", `{}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status code %d, want 409", rec.Code)
	}
}

func TestDocumentCount(t *testing.T) {
	docs := &fakeDocs{counts: store.DocumentCounts{Total: 10, Processed: 4, Unprocessed: 6, Defective: 1}}
	rec := do(t, &mid.App{Documents: docs}, http.MethodGet, "/documents/count", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var got store.DocumentCounts
	decode(t, rec, &got)
	if got != docs.counts {
		t.Fatalf("got %+v, want %+v", got, docs.counts)
	}
}

func TestDocumentCountError(t *testing.T) {
	docs := &fakeDocs{err: errors.New("db down")}
	rec := do(t, &mid.App{Documents: docs}, http.MethodGet, "/documents/count", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status code %d, want 500", rec.Code)
	}
}

func TestUnprocessedDocuments(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		wantCode  int
		wantLimit int
	}{
		{name: "default limit", path: "/documents/unprocessed", wantCode: http.StatusOK, wantLimit: 100},
		{name: "explicit limit", path: "/documents/unprocessed?limit=5", wantCode: http.StatusOK, wantLimit: 5},
		{name: "limit too large", path: "/documents/unprocessed?limit=100000", wantCode: http.StatusBadRequest},
		{name: "limit not a number", path: "/documents/unprocessed?limit=abc", wantCode: http.StatusBadRequest},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			docs := &fakeDocs{records: []common.Record{{ID: 1, Title: "Case A"}}}
			rec := do(t, &mid.App{Documents: docs}, http.MethodGet, tc.path, "")
			if rec.Code != tc.wantCode {
				t.Fatalf("status code %d, want %d", rec.Code, tc.wantCode)
			}
			if tc.wantCode != http.StatusOK {
				return
			}
			if docs.limit != tc.wantLimit {
				t.Fatalf("limit = %d, want %d", docs.limit, tc.wantLimit)
			}
			var got []common.Record
			decode(t, rec, &got)
			if len(got) != 1 || got[0].Title != "Case A" {
				t.Fatalf("unexpected records: %+v", got)
			}
		})
	}
}

func TestMarkProcessed(t *testing.T) {
	docs := &fakeDocs{}
	rec := do(t, &mid.App{Documents: docs}, http.MethodPost, "/documents/mark-processed", `{"ids":[3,4]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d: %s", rec.Code, rec.Body.String())
	}
	if !reflect.DeepEqual(docs.markedID, []int64{3, 4}) {
		t.Fatalf("marked %v", docs.markedID)
	}
	var got map[string]int64
	decode(t, rec, &got)
	if got["updated"] != 2 {
		t.Fatalf("unexpected response: %v", got)
	}

	rec = do(t, &mid.App{Documents: &fakeDocs{}}, http.MethodPost, "/documents/mark-processed", `{"ids":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty ids: status code %d, want 400", rec.Code)
	}
}

func TestResetProcessed(t *testing.T) {
	docs := &fakeDocs{}
	rec := do(t, &mid.App{Documents: docs}, http.MethodPost, "/documents/reset-processed", `{"doc_ids":["a","b"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d: %s", rec.Code, rec.Body.String())
	}
	if !reflect.DeepEqual(docs.resetIDs, []string{"a", "b"}) {
		t.Fatalf("reset %v", docs.resetIDs)
	}

	rec = do(t, &mid.App{Documents: &fakeDocs{}}, http.MethodPost, "/documents/reset-processed", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing doc_ids: status code %d, want 400", rec.Code)
	}
}

func TestStats(t *testing.T) {
	app := &mid.App{
		Documents: &fakeDocs{counts: store.DocumentCounts{Total: 3, Processed: 3}},
		Runs:      &fakeRuns{stats: store.RunStats{Runs: 2, Succeeded: 2, DocumentsMarked: 3}},
		Ingest:    &fakeIngest{},
	}
	rec := do(t, app, http.MethodGet, "/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var got struct {
		Documents store.DocumentCounts `json:"documents"`
		Runs      *store.RunStats      `json:"runs"`
	}
	decode(t, rec, &got)
	if got.Documents.Total != 3 || got.Runs == nil || got.Runs.DocumentsMarked != 3 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestRuns(t *testing.T) {
	runs := &fakeRuns{runs: []store.Run{{ID: "r2", Status: store.RunSucceeded}, {ID: "r1", Status: store.RunFailed}}}
	rec := do(t, &mid.App{Runs: runs}, http.MethodGet, "/runs?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	if runs.limit != 2 {
		t.Fatalf("limit = %d, want 2", runs.limit)
	}
	var got []store.Run
	decode(t, rec, &got)
	if len(got) != 2 || got[0].ID != "r2" {
		t.Fatalf("unexpected runs: %+v", got)
	}

	rec = do(t, &mid.App{}, http.MethodGet, "/runs", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("without run store: %d %q", rec.Code, rec.Body.String())
	}
}
