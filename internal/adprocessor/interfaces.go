package adprocessor

// No imports needed for interface definitions

// DataProcessor is the contract every ad-data processor satisfies.
// Process parses the input file into a Dataset and Store hands the
// Dataset to the configured storage sink.
type DataProcessor interface {
	Process() (Dataset, error)
	Store(data Dataset) error
}

// StorageSink is the seam where a durable destination would be
// substituted. The bundled implementations are placeholders.
type StorageSink interface {
	Store(data Dataset) error
	Close() error
}

// FileProcessor handles the main ingestion workflow
type FileProcessor interface {
	ProcessFile(config Config) error
	ProcessBatch(inputPaths []string, config Config) error
}

// FileDiscovery handles S3 object listing and filtering
type FileDiscovery interface {
	ListObjects(bucket, prefix string) ([]S3Object, error)
	FilterObjects(objects []S3Object, criteria FilterCriteria) []S3Object
}

// StateTracker handles fetch state management for S3 operations
type StateTracker interface {
	LoadState() error
	IsFetched(key string, etag string) bool
	MarkFetched(key string, etag string, size int64) error
	MarkFailed(key string, etag string, errorMsg string) error
	SaveState() error
	GetFetchedCount() int
	GetFailedCount() int
}

// Core data structures are defined in models.go
