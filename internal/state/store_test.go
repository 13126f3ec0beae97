package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"failtrack/internal/report"
	"failtrack/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "failtrack.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(id string) report.Report {
	return report.Report{
		RunID:     id,
		Source:    "/var/log/auth.log",
		Threshold: 5,
		Summary: []types.AddressCount{
			{IP: "10.0.0.9", Count: 7},
			{IP: "10.0.0.1", Count: 7},
			{IP: "10.0.0.3", Count: 2},
		},
		Series: []types.TimeBucketCount{
			{Bucket: "08:00", Count: 10},
			{Bucket: "10:41", Count: 6},
		},
		Suspicious: []types.AddressCount{{IP: "10.0.0.1", Count: 7}, {IP: "10.0.0.9", Count: 7}},
	}
}

func TestSnapshot(t *testing.T) {
	run, attackers := Snapshot(sampleReport("r1"), 16, time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC))

	if run.ID != "r1" || run.Events != 16 || run.Suspicious != 2 || run.Threshold != 5 {
		t.Errorf("Unexpected run %+v", run)
	}
	if len(attackers) != 3 || attackers[0].Rank != 1 || attackers[0].IP != "10.0.0.9" {
		t.Fatalf("Unexpected attackers %+v", attackers)
	}
	if !attackers[0].Suspicious || !attackers[1].Suspicious || attackers[2].Suspicious {
		t.Errorf("Unexpected suspicious flags %+v", attackers)
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rep := sampleReport("run-1")
	run, attackers := Snapshot(rep, 16, time.Now())
	if err := s.SaveRun(ctx, run, attackers, rep.Series); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := s.Attackers(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 3 || got[0].IP != "10.0.0.9" || got[1].IP != "10.0.0.1" || got[2].Count != 2 {
		t.Errorf("Expected attackers in rank order, got %+v", got)
	}

	series, err := s.Timeline(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(series) != 2 || series[0].Bucket != "08:00" || series[1].Count != 6 {
		t.Errorf("Unexpected timeline %+v", series)
	}

	stored, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stored.Source != "/var/log/auth.log" || stored.CreatedAt.IsZero() {
		t.Errorf("Unexpected stored run %+v", stored)
	}
}

func TestStore_ListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		run, _ := Snapshot(sampleReport(id), 1, base.Add(time.Duration(i)*time.Hour))
		if err := s.SaveRun(ctx, run, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("Expected [new mid], got %+v", runs)
	}
}

func TestStore_UnknownRun(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Attackers(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
	if _, err := s.Timeline(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestStore_DuplicateRunRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rep := sampleReport("dup")
	run, attackers := Snapshot(rep, 16, time.Now())
	if err := s.SaveRun(ctx, run, attackers, rep.Series); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, run, attackers, rep.Series); err == nil {
		t.Fatal("Expected error saving the same run twice, got nil")
	}

	got, err := s.Attackers(ctx, "dup")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("Expected the first save intact with 3 rows, got %d", len(got))
	}
}
