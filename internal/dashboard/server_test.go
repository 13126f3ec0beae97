package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"failtrack/internal/report"
	"failtrack/internal/state"
	"failtrack/internal/types"
)

func seededServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := state.NewStore(filepath.Join(t.TempDir(), "failtrack.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	rep := report.Report{
		RunID:      "run-1",
		Source:     "auth.log",
		Threshold:  1,
		Summary:    []types.AddressCount{{IP: "10.0.0.1", Count: 2}, {IP: "10.0.0.2", Count: 1}},
		Series:     []types.TimeBucketCount{{Bucket: "10:41", Count: 3}},
		Suspicious: []types.AddressCount{{IP: "10.0.0.1", Count: 2}},
	}
	run, attackers := state.Snapshot(rep, 3, time.Now())
	if err := store.SaveRun(context.Background(), run, attackers, rep.Series); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(NewServer(store, nil))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("Failed to decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestServer_Runs(t *testing.T) {
	srv := seededServer(t)

	var runs []state.Run
	if code := getJSON(t, srv.URL+"/api/v1/runs", &runs); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" || runs[0].Suspicious != 1 {
		t.Errorf("Unexpected runs %+v", runs)
	}

	var run state.Run
	if code := getJSON(t, srv.URL+"/api/v1/runs/run-1", &run); code != http.StatusOK || run.Events != 3 {
		t.Errorf("Expected run with 3 events, got %d %+v", code, run)
	}
}

func TestServer_AttackersAndTimeline(t *testing.T) {
	srv := seededServer(t)

	var attackers []state.Attacker
	if code := getJSON(t, srv.URL+"/api/v1/runs/run-1/attackers", &attackers); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if len(attackers) != 2 || attackers[0].IP != "10.0.0.1" || !attackers[0].Suspicious {
		t.Errorf("Unexpected attackers %+v", attackers)
	}

	var series []types.TimeBucketCount
	if code := getJSON(t, srv.URL+"/api/v1/runs/run-1/timeline", &series); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if len(series) != 1 || series[0].Bucket != "10:41" {
		t.Errorf("Unexpected timeline %+v", series)
	}
}

func TestServer_NotFound(t *testing.T) {
	srv := seededServer(t)

	for _, path := range []string{"/api/v1/runs/missing", "/api/v1/runs/missing/attackers", "/api/v1/runs/missing/timeline"} {
		if code := getJSON(t, srv.URL+path, nil); code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, code)
		}
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := seededServer(t)

	if code := getJSON(t, srv.URL+"/metrics", nil); code != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", code)
	}
}

type brokenStore struct{ *state.Store }

func (brokenStore) ListRuns(context.Context, int) ([]state.Run, error) {
	return nil, errors.New("database is locked")
}

func TestServer_StoreError(t *testing.T) {
	srv := httptest.NewServer(NewServer(brokenStore{}, nil))
	defer srv.Close()

	if code := getJSON(t, srv.URL+"/api/v1/runs", nil); code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", code)
	}
}
