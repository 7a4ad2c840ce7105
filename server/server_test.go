package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docflow/docflow/config"
	"github.com/docflow/docflow/contract"
	"github.com/docflow/docflow/extract"
	"github.com/docflow/docflow/job"
)

// stubEngine completes every document instantly with a fixed result
type stubEngine struct {
	result *extract.Result
	err    error
}

func (e *stubEngine) Extract(ctx context.Context, doc extract.Document, progress extract.ProgressFunc) (*extract.Result, error) {
	if progress != nil {
		progress(60, "engine stage")
	}
	if e.err != nil {
		return nil, e.err
	}
	if e.result != nil {
		return e.result, nil
	}
	return &extract.Result{RawText: "recognized text"}, nil
}

type testEnv struct {
	srv     *Server
	ts      *httptest.Server
	manager *job.Manager
}

func newTestEnv(t *testing.T, engine extract.Engine) *testEnv {
	t.Helper()

	log := zap.NewNop().Sugar()
	cfg := &config.Config{}
	cfg.Server.Port = 0
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Jobs.MaxUploadBytes = 1 << 20

	store := job.NewStore(64, log)
	pool := job.NewWorkerPool(context.Background(), store, engine, job.PoolConfig{
		Workers:    2,
		QueueDepth: 64,
	}, log)
	pool.Start()
	t.Cleanup(pool.Stop)
	manager := job.NewManager(store, pool, cfg.Jobs.MaxUploadBytes, log)

	db, err := contract.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	contracts := contract.NewStore(db, log)

	srv := NewServer(cfg, manager, contracts, log)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	return &testEnv{srv: srv, ts: ts, manager: manager}
}

// getJSON GETs a path and decodes the JSON body, asserting the status
// code
func (env *testEnv) getJSON(t *testing.T, path string, wantStatus int) map[string]interface{} {
	t.Helper()

	resp, err := http.Get(env.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode, "GET %s", path)

	return decodeBody(t, resp)
}

// postJSON POSTs a JSON body to a path and decodes the JSON response
func (env *testEnv) postJSON(t *testing.T, path string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	resp, err := http.Post(env.ts.URL+path, "application/json", reader)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode, "POST %s", path)

	return decodeBody(t, resp)
}

// submitDocument uploads raw bytes through the submission endpoint and
// returns the assigned job id
func (env *testEnv) submitDocument(t *testing.T, name string, data []byte) string {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, env.ts.URL+"/api/jobs", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("X-Document-Name", name)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	body := decodeBody(t, resp)
	id, ok := body["job_id"].(string)
	require.True(t, ok, "submission response must carry job_id")
	return id
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// awaitJobStatus polls the status endpoint until the job reaches the
// wanted status or the deadline passes
func (env *testEnv) awaitJobStatus(t *testing.T, id string, want job.Status) map[string]interface{} {
	t.Helper()

	var last map[string]interface{}
	require.Eventually(t, func() bool {
		resp := env.getJSON(t, "/api/jobs/"+id, http.StatusOK)
		last = resp
		return resp["status"] == string(want)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}
