package adprocessor

import (
	"fmt"
	"strings"
	"time"
)

// S3Object represents an object in an S3 bucket
type S3Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}

// FetchConfig holds configuration for fetching delivery files from S3.
// Objects are fetched one at a time, in key order.
type FetchConfig struct {
	// S3 Configuration
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
	Region string `json:"region"`

	// Download Configuration
	TimeoutSeconds int    `json:"timeout_seconds"`
	SpoolDir       string `json:"spool_dir"`
	MinSizeBytes   int64  `json:"min_size_bytes"`
	MaxSizeBytes   int64  `json:"max_size_bytes"`

	// State Configuration
	StateFilePath string `json:"state_file_path"`

	// Ingestion Configuration
	IngestAfterFetch bool   `json:"ingest_after_fetch"`
	IngestConfig     Config `json:"ingest_config"`
}

// FilterCriteria defines criteria for filtering S3 objects
type FilterCriteria struct {
	Extensions []string // e.g. [".json", ".csv", ".avro"]
	MinSize    int64
	MaxSize    int64
	SortByKey  bool
}

// FetchStats tracks S3 fetch statistics
type FetchStats struct {
	TotalObjects   int64         `json:"total_objects"`
	FetchedObjects int64         `json:"fetched_objects"`
	FailedObjects  int64         `json:"failed_objects"`
	SkippedObjects int64         `json:"skipped_objects"` // Already fetched
	TotalBytes     int64         `json:"total_bytes"`
	TotalFetchTime time.Duration `json:"total_fetch_time"`
}

// Validate validates the FetchConfig
func (fc *FetchConfig) Validate() error {
	if strings.TrimSpace(fc.Bucket) == "" {
		return fmt.Errorf("S3 bucket name is required")
	}

	if strings.TrimSpace(fc.Region) == "" {
		return fmt.Errorf("S3 region is required")
	}

	if fc.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout seconds must be greater than 0")
	}

	if strings.TrimSpace(fc.SpoolDir) == "" {
		return fmt.Errorf("spool directory is required")
	}

	if fc.MinSizeBytes < 0 || fc.MaxSizeBytes < 0 {
		return fmt.Errorf("size bounds must be non-negative")
	}

	if fc.MinSizeBytes > 0 && fc.MaxSizeBytes > 0 && fc.MinSizeBytes > fc.MaxSizeBytes {
		return fmt.Errorf("minimum size cannot be greater than maximum size")
	}

	if strings.TrimSpace(fc.StateFilePath) == "" {
		return fmt.Errorf("state file path is required")
	}

	if fc.IngestAfterFetch {
		tempConfig := fc.IngestConfig
		if tempConfig.InputPath == "" {
			tempConfig.InputPath = "temp" // Set per downloaded file
		}
		if err := tempConfig.Validate(); err != nil {
			return fmt.Errorf("ingest config validation failed: %w", err)
		}
	}

	return nil
}

// SetDefaults sets default values for FetchConfig parameters
func (fc *FetchConfig) SetDefaults() {
	if fc.Region == "" {
		fc.Region = "us-east-1"
	}

	if fc.TimeoutSeconds == 0 {
		fc.TimeoutSeconds = 300 // 5 minutes
	}

	if fc.SpoolDir == "" {
		fc.SpoolDir = "./spool"
	}

	if fc.StateFilePath == "" {
		fc.StateFilePath = "./fetch_state.json"
	}

	fc.IngestConfig.SetDefaults()
}

// Validate validates the S3Object
func (s3o *S3Object) Validate() error {
	if strings.TrimSpace(s3o.Key) == "" {
		return fmt.Errorf("S3 object key cannot be empty")
	}

	if s3o.Size < 0 {
		return fmt.Errorf("S3 object size must be non-negative")
	}

	if strings.TrimSpace(s3o.ETag) == "" {
		return fmt.Errorf("S3 object ETag cannot be empty")
	}

	if s3o.LastModified.IsZero() {
		return fmt.Errorf("S3 object LastModified cannot be zero")
	}

	return nil
}

// String returns a string representation of the S3Object
func (s3o *S3Object) String() string {
	return fmt.Sprintf("S3Object{Key: %s, Size: %d, ETag: %s, LastModified: %s}",
		s3o.Key, s3o.Size, s3o.ETag, s3o.LastModified.Format(time.RFC3339))
}

// String returns a string representation of the FetchConfig
func (fc *FetchConfig) String() string {
	return fmt.Sprintf("FetchConfig{Bucket: %s, Prefix: %s, Region: %s, SpoolDir: %s, Ingest: %t}",
		fc.Bucket, fc.Prefix, fc.Region, fc.SpoolDir, fc.IngestAfterFetch)
}

// AddTotalObject increments the total objects count
func (fs *FetchStats) AddTotalObject() {
	fs.TotalObjects++
}

// AddFetchedObject increments the fetched objects count
func (fs *FetchStats) AddFetchedObject() {
	fs.FetchedObjects++
}

// AddFailedObject increments the failed objects count
func (fs *FetchStats) AddFailedObject() {
	fs.FailedObjects++
}

// AddSkippedObject increments the skipped objects count
func (fs *FetchStats) AddSkippedObject() {
	fs.SkippedObjects++
}

// AddBytes adds to the total downloaded byte count
func (fs *FetchStats) AddBytes(bytes int64) {
	fs.TotalBytes += bytes
}

// UpdateFetchTime adds to the total fetch time
func (fs *FetchStats) UpdateFetchTime(duration time.Duration) {
	fs.TotalFetchTime += duration
}

// SuccessRate returns the fetch success rate as a percentage
func (fs *FetchStats) SuccessRate() float64 {
	if fs.TotalObjects == 0 {
		return 0.0
	}
	return float64(fs.FetchedObjects) / float64(fs.TotalObjects) * 100.0
}

// FailureRate returns the fetch failure rate as a percentage
func (fs *FetchStats) FailureRate() float64 {
	if fs.TotalObjects == 0 {
		return 0.0
	}
	return float64(fs.FailedObjects) / float64(fs.TotalObjects) * 100.0
}

// Throughput returns the average download throughput in MB/s
func (fs *FetchStats) Throughput() float64 {
	if fs.TotalFetchTime.Seconds() == 0 {
		return 0.0
	}
	return float64(fs.TotalBytes) / (1024 * 1024) / fs.TotalFetchTime.Seconds()
}

// String returns a string representation of the FetchStats
func (fs *FetchStats) String() string {
	return fmt.Sprintf("FetchStats{Total: %d, Fetched: %d (%.2f%%), Failed: %d (%.2f%%), Skipped: %d, Bytes: %d, Throughput: %.2f MB/s}",
		fs.TotalObjects, fs.FetchedObjects, fs.SuccessRate(), fs.FailedObjects, fs.FailureRate(),
		fs.SkippedObjects, fs.TotalBytes, fs.Throughput())
}
