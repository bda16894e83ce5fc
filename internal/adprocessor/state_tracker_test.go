package adprocessor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestTracker(t *testing.T, autoSave bool) (*FetchStateTracker, string) {
	t.Helper()
	stateFile := filepath.Join(t.TempDir(), "state.json")
	return NewFetchStateTracker(stateFile, autoSave, newTestLogger(&bytes.Buffer{})), stateFile
}

func TestNewFetchStateTracker(t *testing.T) {
	tracker, _ := newTestTracker(t, false)

	if tracker.GetFetchedCount() != 0 {
		t.Errorf("GetFetchedCount() = %d, want 0", tracker.GetFetchedCount())
	}
	if tracker.GetFailedCount() != 0 {
		t.Errorf("GetFailedCount() = %d, want 0", tracker.GetFailedCount())
	}
	if tracker.IsDirty() {
		t.Error("IsDirty() = true for a fresh tracker")
	}
}

func TestFetchStateTracker_MarkFetchedAndIsFetched(t *testing.T) {
	tracker, _ := newTestTracker(t, false)

	if err := tracker.MarkFetched("daily/a.json", "etag-1", 100); err != nil {
		t.Fatalf("MarkFetched() unexpected error = %v", err)
	}

	if !tracker.IsFetched("daily/a.json", "etag-1") {
		t.Error("IsFetched() = false for a fetched object")
	}
	if tracker.IsFetched("daily/a.json", "etag-2") {
		t.Error("IsFetched() = true for a changed ETag")
	}
	if tracker.IsFetched("daily/b.json", "etag-1") {
		t.Error("IsFetched() = true for an unknown key")
	}
	if !tracker.IsDirty() {
		t.Error("IsDirty() = false after MarkFetched")
	}
}

func TestFetchStateTracker_MarkFetched_InvalidState(t *testing.T) {
	tracker, _ := newTestTracker(t, false)

	err := tracker.MarkFetched("", "etag-1", 100)
	if err == nil {
		t.Fatal("MarkFetched() expected error but got none")
	}
	if !strings.Contains(err.Error(), "invalid object state") {
		t.Errorf("MarkFetched() error = %v, want invalid object state", err)
	}
}

func TestFetchStateTracker_MarkFailed(t *testing.T) {
	tracker, _ := newTestTracker(t, false)

	if err := tracker.MarkFetched("daily/a.json", "etag-1", 100); err != nil {
		t.Fatalf("MarkFetched() unexpected error = %v", err)
	}

	// A later failure moves the object out of the fetched set
	if err := tracker.MarkFailed("daily/a.json", "etag-1", "download timed out"); err != nil {
		t.Fatalf("MarkFailed() unexpected error = %v", err)
	}
	if tracker.GetFetchedCount() != 0 {
		t.Errorf("GetFetchedCount() = %d, want 0", tracker.GetFetchedCount())
	}
	if tracker.GetFailedCount() != 1 {
		t.Errorf("GetFailedCount() = %d, want 1", tracker.GetFailedCount())
	}

	// A successful retry moves it back
	if err := tracker.MarkFetched("daily/a.json", "etag-1", 100); err != nil {
		t.Fatalf("MarkFetched() unexpected error = %v", err)
	}
	if tracker.GetFetchedCount() != 1 {
		t.Errorf("GetFetchedCount() = %d, want 1", tracker.GetFetchedCount())
	}
	if tracker.GetFailedCount() != 0 {
		t.Errorf("GetFailedCount() = %d, want 0", tracker.GetFailedCount())
	}
}

func TestFetchStateTracker_MarkFailed_Validation(t *testing.T) {
	tracker, _ := newTestTracker(t, false)

	err := tracker.MarkFailed("", "etag-1", "boom")
	if err == nil {
		t.Fatal("MarkFailed() expected error but got none")
	}
	if !strings.Contains(err.Error(), "key and etag are required") {
		t.Errorf("MarkFailed() error = %v, want key and etag are required", err)
	}

	if err := tracker.MarkFailed("daily/a.json", "", "boom"); err == nil {
		t.Fatal("MarkFailed() with empty etag expected error but got none")
	}
}

func TestFetchStateTracker_SaveAndLoad(t *testing.T) {
	tracker, stateFile := newTestTracker(t, false)

	if err := tracker.MarkFetched("daily/a.json", "etag-1", 100); err != nil {
		t.Fatalf("MarkFetched() unexpected error = %v", err)
	}
	if err := tracker.MarkFetched("daily/b.csv", "etag-2", 200); err != nil {
		t.Fatalf("MarkFetched() unexpected error = %v", err)
	}
	if err := tracker.MarkFailed("daily/c.avro", "etag-3", "download timed out"); err != nil {
		t.Fatalf("MarkFailed() unexpected error = %v", err)
	}

	if err := tracker.SaveState(); err != nil {
		t.Fatalf("SaveState() unexpected error = %v", err)
	}
	if tracker.IsDirty() {
		t.Error("IsDirty() = true after SaveState")
	}

	reloaded := NewFetchStateTracker(stateFile, false, newTestLogger(&bytes.Buffer{}))
	if err := reloaded.LoadState(); err != nil {
		t.Fatalf("LoadState() unexpected error = %v", err)
	}

	if reloaded.GetFetchedCount() != 2 {
		t.Errorf("GetFetchedCount() = %d, want 2", reloaded.GetFetchedCount())
	}
	if reloaded.GetFailedCount() != 1 {
		t.Errorf("GetFailedCount() = %d, want 1", reloaded.GetFailedCount())
	}
	if !reloaded.IsFetched("daily/a.json", "etag-1") {
		t.Error("IsFetched() = false after reload")
	}
}

func TestFetchStateTracker_LoadState_MissingFile(t *testing.T) {
	tracker, _ := newTestTracker(t, false)

	if err := tracker.LoadState(); err != nil {
		t.Fatalf("LoadState() unexpected error = %v", err)
	}
	if tracker.GetFetchedCount() != 0 {
		t.Errorf("GetFetchedCount() = %d, want 0", tracker.GetFetchedCount())
	}
}

func TestFetchStateTracker_LoadState_EmptyFile(t *testing.T) {
	tracker, stateFile := newTestTracker(t, false)
	if err := os.WriteFile(stateFile, nil, 0644); err != nil {
		t.Fatalf("Failed to create empty state file: %v", err)
	}

	if err := tracker.LoadState(); err != nil {
		t.Fatalf("LoadState() unexpected error = %v", err)
	}
	if tracker.GetFetchedCount() != 0 {
		t.Errorf("GetFetchedCount() = %d, want 0", tracker.GetFetchedCount())
	}
}

func TestFetchStateTracker_LoadState_Corrupted(t *testing.T) {
	tracker, stateFile := newTestTracker(t, false)
	if err := os.WriteFile(stateFile, []byte("{{{ not json"), 0644); err != nil {
		t.Fatalf("Failed to write state file: %v", err)
	}

	if err := tracker.LoadState(); err != nil {
		t.Fatalf("LoadState() should recover from corruption, got %v", err)
	}
	if tracker.GetFetchedCount() != 0 {
		t.Errorf("GetFetchedCount() = %d, want 0", tracker.GetFetchedCount())
	}
	if !tracker.IsDirty() {
		t.Error("IsDirty() = false, recovered state should be pending a save")
	}

	// The corrupted content is preserved in a backup
	backups, err := filepath.Glob(stateFile + ".corrupted.*")
	if err != nil {
		t.Fatalf("Glob() unexpected error = %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("Found %d backup files, want 1", len(backups))
	}
}

func TestFetchStateTracker_LoadState_PartialRecovery(t *testing.T) {
	tracker, stateFile := newTestTracker(t, false)

	// Valid entries but no version field, so validation fails and the
	// entries are recovered one by one.
	content := `{"fetched_objects":{"daily/a.json":{"key":"daily/a.json","etag":"e1","size":100,"fetched_at":"2024-01-15T10:00:00Z"}},"failed_objects":{}}`
	if err := os.WriteFile(stateFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write state file: %v", err)
	}

	if err := tracker.LoadState(); err != nil {
		t.Fatalf("LoadState() should recover, got %v", err)
	}
	if tracker.GetFetchedCount() != 1 {
		t.Errorf("GetFetchedCount() = %d, want 1", tracker.GetFetchedCount())
	}
	if !tracker.IsFetched("daily/a.json", "e1") {
		t.Error("IsFetched() = false for a recovered entry")
	}
	if !tracker.IsDirty() {
		t.Error("IsDirty() = false, recovered state should be pending a save")
	}
}

func TestFetchStateTracker_AutoSave(t *testing.T) {
	tracker, stateFile := newTestTracker(t, true)

	if err := tracker.MarkFetched("daily/a.json", "etag-1", 100); err != nil {
		t.Fatalf("MarkFetched() unexpected error = %v", err)
	}

	if tracker.IsDirty() {
		t.Error("IsDirty() = true, autosave should have flushed")
	}
	if _, err := os.Stat(stateFile); err != nil {
		t.Errorf("State file not written by autosave: %v", err)
	}

	reloaded := NewFetchStateTracker(stateFile, true, newTestLogger(&bytes.Buffer{}))
	if err := reloaded.LoadState(); err != nil {
		t.Fatalf("LoadState() unexpected error = %v", err)
	}
	if reloaded.GetFetchedCount() != 1 {
		t.Errorf("GetFetchedCount() = %d, want 1", reloaded.GetFetchedCount())
	}
}

func TestFetchStateTracker_GetState(t *testing.T) {
	tracker, _ := newTestTracker(t, false)
	if err := tracker.MarkFetched("daily/a.json", "etag-1", 100); err != nil {
		t.Fatalf("MarkFetched() unexpected error = %v", err)
	}

	state := tracker.GetState()
	state.FetchedObjects["daily/b.json"] = ObjectState{}

	if tracker.GetFetchedCount() != 1 {
		t.Error("GetState() did not return an independent copy")
	}
}

func TestFetchStateTracker_Locking(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "state.json")
	logger := newTestLogger(&bytes.Buffer{})

	first := NewFetchStateTracker(stateFile, false, logger)
	if err := first.AcquireLock(); err != nil {
		t.Fatalf("AcquireLock() unexpected error = %v", err)
	}

	second := NewFetchStateTracker(stateFile, false, logger)
	err := second.AcquireLock()
	if err == nil {
		first.ReleaseLock()
		t.Fatal("AcquireLock() on a held lock expected error but got none")
	}
	if !strings.Contains(err.Error(), "is locked by another adprocessor instance") {
		t.Errorf("AcquireLock() error = %v, want is locked by another adprocessor instance", err)
	}

	first.ReleaseLock()

	if err := second.AcquireLock(); err != nil {
		t.Fatalf("AcquireLock() after release unexpected error = %v", err)
	}
	second.ReleaseLock()
}
