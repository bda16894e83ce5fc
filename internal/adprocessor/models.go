package adprocessor

import (
	"fmt"
	"strings"
	"time"
)

// Record is a single parsed entry from an input file. Field typing is
// whatever the source format's parser produced (JSON numbers decode as
// float64, CSV fields as strings, Avro per the embedded schema).
type Record map[string]any

// Dataset is the ordered set of records produced by one Process call.
type Dataset []Record

// DataType identifies which processor handles an input file
type DataType string

const (
	DataTypeImpressions DataType = "impressions"
	DataTypeClicks      DataType = "clicks"
	DataTypeBidRequests DataType = "bidrequests"
	DataTypeAuto        DataType = "auto"
)

// Validate validates the data type
func (dt DataType) Validate() error {
	switch dt {
	case DataTypeImpressions, DataTypeClicks, DataTypeBidRequests, DataTypeAuto:
		return nil
	default:
		return fmt.Errorf("data type must be one of: impressions, clicks, bidrequests, auto")
	}
}

// Config holds ingestion configuration parameters
type Config struct {
	InputPath string
	DataType  DataType
	SinkType  string // "console", "discard"
	LogLevel  string
}

// Validate validates the configuration parameters
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}

	if err := c.DataType.Validate(); err != nil {
		return err
	}

	if c.SinkType != "console" && c.SinkType != "discard" {
		return fmt.Errorf("sink type must be one of: console, discard")
	}

	if c.LogLevel != "" && c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warn" && c.LogLevel != "error" {
		return fmt.Errorf("log level must be one of: debug, info, warn, error")
	}

	return nil
}

// SetDefaults sets default values for configuration parameters
func (c *Config) SetDefaults() {
	if c.DataType == "" {
		c.DataType = DataTypeAuto
	}

	if c.SinkType == "" {
		c.SinkType = "console"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// IngestStats tracks ingestion statistics
type IngestStats struct {
	FilesProcessed int64
	FilesFailed    int64
	RecordsStored  int64
	StartTime      time.Time
	Duration       time.Duration
}

// AddFileProcessed increments the processed file count
func (is *IngestStats) AddFileProcessed() {
	is.FilesProcessed++
}

// AddFileFailed increments the failed file count
func (is *IngestStats) AddFileFailed() {
	is.FilesFailed++
}

// AddRecords adds to the stored record count
func (is *IngestStats) AddRecords(count int64) {
	is.RecordsStored += count
}

// UpdateDuration updates the ingestion duration
func (is *IngestStats) UpdateDuration() {
	is.Duration = time.Since(is.StartTime)
}

// SuccessRate returns the file success rate as a percentage
func (is *IngestStats) SuccessRate() float64 {
	total := is.FilesProcessed + is.FilesFailed
	if total == 0 {
		return 0.0
	}
	return float64(is.FilesProcessed) / float64(total) * 100.0
}

// FailureRate returns the file failure rate as a percentage
func (is *IngestStats) FailureRate() float64 {
	total := is.FilesProcessed + is.FilesFailed
	if total == 0 {
		return 0.0
	}
	return float64(is.FilesFailed) / float64(total) * 100.0
}

// String returns a string representation of the ingestion statistics
func (is *IngestStats) String() string {
	return fmt.Sprintf("Files: %d processed (%.2f%%), %d failed (%.2f%%), Records: %d, Duration: %v",
		is.FilesProcessed, is.SuccessRate(), is.FilesFailed, is.FailureRate(), is.RecordsStored, is.Duration)
}

// CompactFormat returns a compact string representation for inline logging
func (is *IngestStats) CompactFormat() string {
	durationSeconds := is.Duration.Seconds()
	if is.FilesFailed > 0 {
		return fmt.Sprintf("%d records, Failed files: %d, Duration: %.3fs", is.RecordsStored, is.FilesFailed, durationSeconds)
	}
	return fmt.Sprintf("%d records, Duration: %.3fs", is.RecordsStored, durationSeconds)
}

// FetchState represents the persistent state of S3 object fetching
type FetchState struct {
	FetchedObjects map[string]ObjectState `json:"fetched_objects"`
	FailedObjects  map[string]ObjectState `json:"failed_objects"`
	LastUpdated    time.Time              `json:"last_updated"`
	Version        string                 `json:"version"`
}

// ObjectState represents the state of a single fetched object
type ObjectState struct {
	Key       string    `json:"key"`
	ETag      string    `json:"etag"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
}

// NewFetchState creates a new FetchState with initialized maps
func NewFetchState() *FetchState {
	return &FetchState{
		FetchedObjects: make(map[string]ObjectState),
		FailedObjects:  make(map[string]ObjectState),
		LastUpdated:    time.Now(),
		Version:        "1.0",
	}
}

// Validate validates the FetchState
func (fs *FetchState) Validate() error {
	if fs.FetchedObjects == nil {
		return fmt.Errorf("fetched_objects map cannot be nil")
	}

	if fs.FailedObjects == nil {
		return fmt.Errorf("failed_objects map cannot be nil")
	}

	if fs.Version == "" {
		return fmt.Errorf("version cannot be empty")
	}

	return nil
}

// GetFetchedCount returns the number of successfully fetched objects
func (fs *FetchState) GetFetchedCount() int {
	return len(fs.FetchedObjects)
}

// GetFailedCount returns the number of failed objects
func (fs *FetchState) GetFailedCount() int {
	return len(fs.FailedObjects)
}

// Validate validates the ObjectState
func (os *ObjectState) Validate() error {
	if strings.TrimSpace(os.Key) == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if strings.TrimSpace(os.ETag) == "" {
		return fmt.Errorf("etag cannot be empty")
	}

	if os.Size < 0 {
		return fmt.Errorf("size must be non-negative")
	}

	if os.FetchedAt.IsZero() {
		return fmt.Errorf("fetched_at cannot be zero")
	}

	return nil
}
