package adprocessor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// FetchStateTracker implements the StateTracker interface, persisting
// fetch state as a JSON ledger so reruns skip objects that were already
// downloaded with the same ETag.
type FetchStateTracker struct {
	state     *FetchState
	stateFile string
	lock      *flock.Flock
	logger    *slog.Logger
	mutex     sync.RWMutex
	autoSave  bool
	isDirty   bool
}

// NewFetchStateTracker creates a new FetchStateTracker instance
func NewFetchStateTracker(stateFilePath string, autoSave bool, logger *slog.Logger) *FetchStateTracker {
	if logger == nil {
		logger = slog.Default()
	}

	return &FetchStateTracker{
		state:     NewFetchState(),
		stateFile: stateFilePath,
		logger:    logger,
		autoSave:  autoSave,
		isDirty:   false,
	}
}

// AcquireLock takes an exclusive lock alongside the state file so two
// fetch runs cannot interleave ledger writes. It fails immediately when
// another process holds the lock.
func (fst *FetchStateTracker) AcquireLock() error {
	fst.mutex.Lock()
	defer fst.mutex.Unlock()

	if fst.lock != nil {
		return nil // Already held
	}

	dir := filepath.Dir(fst.stateFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create state directory %s: %w", dir, err)
	}

	lockPath := fst.stateFile + ".lock"
	fileLock := flock.New(lockPath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("could not acquire state file lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("state file %s is locked by another adprocessor instance", fst.stateFile)
	}

	fst.logger.Info("Acquired state file lock.", "path", lockPath)
	fst.lock = fileLock
	return nil
}

// ReleaseLock releases the state file lock. The lock file stays behind;
// only the lock itself matters.
func (fst *FetchStateTracker) ReleaseLock() {
	fst.mutex.Lock()
	defer fst.mutex.Unlock()

	if fst.lock == nil {
		return
	}

	if err := fst.lock.Unlock(); err != nil {
		fst.logger.Error("Failed to release state file lock.", "error", err)
	} else {
		fst.logger.Info("Released state file lock.")
	}
	fst.lock = nil
}

// LoadState loads the fetch state from the state file
func (fst *FetchStateTracker) LoadState() error {
	fst.mutex.Lock()
	defer fst.mutex.Unlock()

	// If state file doesn't exist, start with empty state
	if _, err := os.Stat(fst.stateFile); os.IsNotExist(err) {
		fst.state = NewFetchState()
		fst.isDirty = false
		return nil
	}

	data, err := os.ReadFile(fst.stateFile)
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	// Handle empty file
	if len(data) == 0 {
		fst.state = NewFetchState()
		fst.isDirty = false
		return nil
	}

	var loadedState FetchState
	if err := json.Unmarshal(data, &loadedState); err != nil {
		return fst.recoverFromCorruption(data, err)
	}

	if err := loadedState.Validate(); err != nil {
		return fst.recoverFromCorruption(data, fmt.Errorf("invalid state: %w", err))
	}

	fst.state = &loadedState
	fst.isDirty = false
	return nil
}

// recoverFromCorruption attempts to recover from state file corruption
func (fst *FetchStateTracker) recoverFromCorruption(data []byte, originalErr error) error {
	// Create backup of corrupted file
	backupPath := fst.stateFile + ".corrupted." + time.Now().Format("20060102-150405")
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		fst.logger.Warn("Could not backup corrupted state file.", "error", err)
	} else {
		fst.logger.Warn("State file corrupted, backed up.", "backup", backupPath)
	}

	// Try to extract any valid entries from the corrupted file
	recoveredState := fst.attemptPartialRecovery(data)
	if recoveredState != nil {
		fst.state = recoveredState
		fst.isDirty = true // Mark as dirty to save the recovered state
		fst.logger.Warn("Partial state recovery successful.",
			"fetched", len(recoveredState.FetchedObjects),
			"failed", len(recoveredState.FailedObjects))
		return nil
	}

	// If partial recovery fails, start with fresh state
	fst.logger.Warn("Could not recover state file, starting fresh.", "error", originalErr)
	fst.state = NewFetchState()
	fst.isDirty = true
	return nil
}

// attemptPartialRecovery tries to extract valid entries from corrupted JSON
func (fst *FetchStateTracker) attemptPartialRecovery(data []byte) *FetchState {
	var partial map[string]any
	if err := json.Unmarshal(data, &partial); err != nil {
		return nil
	}

	recovered := NewFetchState()

	if fetchedData, ok := partial["fetched_objects"]; ok {
		if fetchedMap, ok := fetchedData.(map[string]any); ok {
			for key, value := range fetchedMap {
				if objData, ok := value.(map[string]any); ok {
					if objState := fst.parseObjectState(objData); objState != nil {
						recovered.FetchedObjects[key] = *objState
					}
				}
			}
		}
	}

	if failedData, ok := partial["failed_objects"]; ok {
		if failedMap, ok := failedData.(map[string]any); ok {
			for key, value := range failedMap {
				if objData, ok := value.(map[string]any); ok {
					if objState := fst.parseObjectState(objData); objState != nil {
						recovered.FailedObjects[key] = *objState
					}
				}
			}
		}
	}

	// Only return recovered state if we got some entries
	if len(recovered.FetchedObjects) > 0 || len(recovered.FailedObjects) > 0 {
		return recovered
	}

	return nil
}

// parseObjectState attempts to parse an ObjectState from a map
func (fst *FetchStateTracker) parseObjectState(data map[string]any) *ObjectState {
	objState := &ObjectState{}

	if key, ok := data["key"].(string); ok {
		objState.Key = key
	} else {
		return nil
	}

	if etag, ok := data["etag"].(string); ok {
		objState.ETag = etag
	} else {
		return nil
	}

	if size, ok := data["size"].(float64); ok {
		objState.Size = int64(size)
	}

	if fetchedAtStr, ok := data["fetched_at"].(string); ok {
		if fetchedAt, err := time.Parse(time.RFC3339, fetchedAtStr); err == nil {
			objState.FetchedAt = fetchedAt
		}
	}

	if errorMsg, ok := data["error_msg"].(string); ok {
		objState.ErrorMsg = errorMsg
	}

	if err := objState.Validate(); err != nil {
		return nil
	}

	return objState
}

// IsFetched checks if an object has already been fetched with the same ETag
func (fst *FetchStateTracker) IsFetched(key string, etag string) bool {
	fst.mutex.RLock()
	defer fst.mutex.RUnlock()

	objState, exists := fst.state.FetchedObjects[key]
	if !exists {
		return false
	}

	// ETag mismatch means the object changed since it was fetched
	return objState.ETag == etag
}

// MarkFetched marks an object as successfully fetched
func (fst *FetchStateTracker) MarkFetched(key string, etag string, size int64) error {
	fst.mutex.Lock()
	defer fst.mutex.Unlock()

	objState := ObjectState{
		Key:       key,
		ETag:      etag,
		Size:      size,
		FetchedAt: time.Now(),
	}

	if err := objState.Validate(); err != nil {
		return fmt.Errorf("invalid object state: %w", err)
	}

	// Remove from failed objects if it exists there
	delete(fst.state.FailedObjects, key)

	fst.state.FetchedObjects[key] = objState
	fst.state.LastUpdated = time.Now()
	fst.isDirty = true

	if fst.autoSave {
		return fst.saveStateUnsafe()
	}

	return nil
}

// MarkFailed marks an object as failed to fetch or ingest
func (fst *FetchStateTracker) MarkFailed(key string, etag string, errorMsg string) error {
	fst.mutex.Lock()
	defer fst.mutex.Unlock()

	if key == "" || etag == "" {
		return fmt.Errorf("key and etag are required for failed object state")
	}

	objState := ObjectState{
		Key:       key,
		ETag:      etag,
		Size:      0, // Size not relevant for failed objects
		FetchedAt: time.Now(),
		ErrorMsg:  errorMsg,
	}

	// Remove from fetched objects if it exists there
	delete(fst.state.FetchedObjects, key)

	fst.state.FailedObjects[key] = objState
	fst.state.LastUpdated = time.Now()
	fst.isDirty = true

	if fst.autoSave {
		return fst.saveStateUnsafe()
	}

	return nil
}

// SaveState saves the current state to the state file
func (fst *FetchStateTracker) SaveState() error {
	fst.mutex.Lock()
	defer fst.mutex.Unlock()

	return fst.saveStateUnsafe()
}

// saveStateUnsafe saves state without acquiring the mutex (internal use)
func (fst *FetchStateTracker) saveStateUnsafe() error {
	if !fst.isDirty {
		return nil // No changes to save
	}

	dir := filepath.Dir(fst.stateFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	fst.state.LastUpdated = time.Now()

	data, err := json.MarshalIndent(fst.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to temporary file first, then rename for atomic operation
	tempFile := fst.stateFile + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}

	if err := os.Rename(tempFile, fst.stateFile); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary state file: %w", err)
	}

	fst.isDirty = false
	return nil
}

// GetFetchedCount returns the number of successfully fetched objects
func (fst *FetchStateTracker) GetFetchedCount() int {
	fst.mutex.RLock()
	defer fst.mutex.RUnlock()

	return fst.state.GetFetchedCount()
}

// GetFailedCount returns the number of failed objects
func (fst *FetchStateTracker) GetFailedCount() int {
	fst.mutex.RLock()
	defer fst.mutex.RUnlock()

	return fst.state.GetFailedCount()
}

// GetState returns a copy of the current fetch state
func (fst *FetchStateTracker) GetState() FetchState {
	fst.mutex.RLock()
	defer fst.mutex.RUnlock()

	stateCopy := FetchState{
		FetchedObjects: make(map[string]ObjectState),
		FailedObjects:  make(map[string]ObjectState),
		LastUpdated:    fst.state.LastUpdated,
		Version:        fst.state.Version,
	}

	for k, v := range fst.state.FetchedObjects {
		stateCopy.FetchedObjects[k] = v
	}

	for k, v := range fst.state.FailedObjects {
		stateCopy.FailedObjects[k] = v
	}

	return stateCopy
}

// IsDirty returns whether the state has unsaved changes
func (fst *FetchStateTracker) IsDirty() bool {
	fst.mutex.RLock()
	defer fst.mutex.RUnlock()

	return fst.isDirty
}
