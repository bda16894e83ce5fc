package adprocessor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// FetchManager orchestrates the fetch workflow: discover delivery objects,
// skip the ones already fetched, download the rest into the spool directory
// and optionally hand them to the ingest pipeline.
type FetchManager struct {
	client    S3Client
	discovery FileDiscovery
	tracker   StateTracker
	processor FileProcessor
	logger    *slog.Logger
	stats     FetchStats
	latencies *hdrhistogram.Histogram
}

// NewFetchManager creates a new FetchManager instance
func NewFetchManager(
	client S3Client,
	discovery FileDiscovery,
	tracker StateTracker,
	processor FileProcessor,
	logger *slog.Logger,
) *FetchManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &FetchManager{
		client:    client,
		discovery: discovery,
		tracker:   tracker,
		processor: processor,
		logger:    logger,
		stats:     FetchStats{},
		// Download latencies from 1ms up to an hour, 3 significant figures.
		latencies: hdrhistogram.New(1, 3600000, 3),
	}
}

// FetchBucket runs the complete fetch workflow for the configured bucket.
// Objects are fetched one at a time; a failed object is recorded and the
// workflow moves on to the next one.
func (fm *FetchManager) FetchBucket(config FetchConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid fetch configuration: %w", err)
	}

	fm.logger.Info("Starting bucket fetch.", "bucket", config.Bucket, "prefix", config.Prefix)

	if tracker, ok := fm.tracker.(*FetchStateTracker); ok {
		if err := tracker.AcquireLock(); err != nil {
			return err
		}
		defer tracker.ReleaseLock()
	}

	if err := fm.tracker.LoadState(); err != nil {
		fm.logger.Warn("Failed to load fetch state, starting fresh.", "error", err.Error())
	}

	if err := os.MkdirAll(config.SpoolDir, 0755); err != nil {
		return fmt.Errorf("failed to create spool directory: %w", err)
	}

	objects, err := fm.discoverObjects(config)
	if err != nil {
		return fmt.Errorf("object discovery failed: %w", err)
	}

	fm.stats.TotalObjects = int64(len(objects))

	pending := fm.filterPendingObjects(objects)
	fm.stats.SkippedObjects = fm.stats.TotalObjects - int64(len(pending))

	fm.logger.Info("Checked fetch state.",
		"pending", len(pending),
		"skipped", fm.stats.SkippedObjects)

	if len(pending) == 0 {
		fm.logger.Info("No objects to fetch.")
		return nil
	}

	startTime := time.Now()
	for i, obj := range pending {
		fm.logger.Info("Fetching object.",
			"index", i+1,
			"total", len(pending),
			"key", obj.Key)
		fm.fetchObject(obj, config)
	}
	fm.stats.UpdateFetchTime(time.Since(startTime))

	if err := fm.tracker.SaveState(); err != nil {
		fm.logger.Warn("Failed to save fetch state.", "error", err.Error())
	}

	fm.logger.Info("Bucket fetch completed.",
		"stats", fm.stats.String(),
		"latency", fm.LatencySummary())

	return nil
}

// ListDeliveryObjects lists data delivery objects from the bucket with the
// given prefix, filtered to the supported file extensions and sorted by key.
func (fm *FetchManager) ListDeliveryObjects(bucket, prefix string) ([]S3Object, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	objects, err := fm.discovery.ListObjects(bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket objects: %w", err)
	}

	criteria := FilterCriteria{
		Extensions: DataFileExtensions(),
		SortByKey:  true,
	}

	return fm.discovery.FilterObjects(objects, criteria), nil
}

// GetFetchStats returns the current fetch statistics
func (fm *FetchManager) GetFetchStats() FetchStats {
	return fm.stats
}

// LatencySummary reports download latency percentiles recorded so far.
func (fm *FetchManager) LatencySummary() string {
	if fm.latencies.TotalCount() == 0 {
		return "no downloads recorded"
	}

	return fmt.Sprintf("p50=%dms p95=%dms p99=%dms max=%dms",
		fm.latencies.ValueAtQuantile(50),
		fm.latencies.ValueAtQuantile(95),
		fm.latencies.ValueAtQuantile(99),
		fm.latencies.Max())
}

// discoverObjects handles the discovery phase
func (fm *FetchManager) discoverObjects(config FetchConfig) ([]S3Object, error) {
	startTime := time.Now()

	objects, err := fm.discovery.ListObjects(config.Bucket, config.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket objects: %w", err)
	}

	criteria := CreateDeliveryFilterCriteria(config.MinSizeBytes, config.MaxSizeBytes, true)
	filtered := fm.discovery.FilterObjects(objects, criteria)

	fm.logger.Info("Discovered delivery objects.",
		"listed", len(objects),
		"matched", len(filtered),
		"duration", time.Since(startTime).String())

	return filtered, nil
}

// filterPendingObjects filters out objects that have already been fetched
func (fm *FetchManager) filterPendingObjects(objects []S3Object) []S3Object {
	var pending []S3Object

	for _, obj := range objects {
		if !fm.tracker.IsFetched(obj.Key, obj.ETag) {
			pending = append(pending, obj)
		}
	}

	return pending
}

// fetchObject downloads a single object and optionally ingests it. Failures
// are recorded in the state tracker and the stats; they do not abort the run.
func (fm *FetchManager) fetchObject(obj S3Object, config FetchConfig) {
	localPath := filepath.Join(config.SpoolDir, filepath.FromSlash(obj.Key))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.TimeoutSeconds)*time.Second)
	defer cancel()

	startTime := time.Now()
	err := fm.client.DownloadFile(ctx, config.Bucket, obj.Key, localPath)
	elapsed := time.Since(startTime)

	fm.recordLatency(elapsed)

	if err != nil {
		fm.logger.Error("Download failed.", "key", obj.Key, "error", err.Error())
		fm.markFailed(obj, err.Error())
		return
	}

	fm.stats.AddBytes(obj.Size)
	fm.logger.Info("Downloaded object.",
		"key", obj.Key,
		"bytes", obj.Size,
		"duration", elapsed.String())

	if config.IngestAfterFetch && fm.processor != nil {
		ingestConfig := config.IngestConfig
		ingestConfig.InputPath = localPath

		if err := fm.processor.ProcessFile(ingestConfig); err != nil {
			fm.logger.Error("Ingestion failed for fetched object.", "key", obj.Key, "error", err.Error())
			fm.markFailed(obj, err.Error())
			return
		}
	}

	if err := fm.tracker.MarkFetched(obj.Key, obj.ETag, obj.Size); err != nil {
		fm.logger.Warn("Failed to mark object as fetched.", "key", obj.Key, "error", err.Error())
	}
	fm.stats.AddFetchedObject()
}

// markFailed records a failed object in the state tracker and the stats
func (fm *FetchManager) markFailed(obj S3Object, errorMsg string) {
	if err := fm.tracker.MarkFailed(obj.Key, obj.ETag, errorMsg); err != nil {
		fm.logger.Warn("Failed to mark object as failed.", "key", obj.Key, "error", err.Error())
	}
	fm.stats.AddFailedObject()
}

// recordLatency adds one download duration to the latency histogram.
func (fm *FetchManager) recordLatency(elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	if ms < 1 {
		ms = 1
	}

	if err := fm.latencies.RecordValue(ms); err != nil {
		fm.logger.Warn("Failed to record download latency.", "error", err.Error())
	}
}

// NewFetchManagerFromConfig creates a FetchManager with all dependencies
// built from the fetch configuration. The sink is only used when the
// configuration enables ingestion after fetch.
func NewFetchManagerFromConfig(ctx context.Context, config FetchConfig, sink StorageSink, logger *slog.Logger) (*FetchManager, error) {
	client, err := NewAWSS3Client(ctx, config.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	discovery := NewS3FileDiscovery(client)
	tracker := NewFetchStateTracker(config.StateFilePath, true, logger)

	var processor FileProcessor
	if config.IngestAfterFetch {
		processor = NewIngestPipeline(sink, logger)
	}

	return NewFetchManager(client, discovery, tracker, processor, logger), nil
}
