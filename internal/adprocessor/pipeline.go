package adprocessor

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// IngestPipeline drives the ingestion workflow: resolve the data type,
// build the processor, parse the file and hand the dataset to the
// shared sink.
type IngestPipeline struct {
	factory *ProcessorFactory
	sink    StorageSink
	logger  *slog.Logger
	stats   IngestStats
}

// NewIngestPipeline creates a pipeline feeding the given sink
func NewIngestPipeline(sink StorageSink, logger *slog.Logger) *IngestPipeline {
	if sink == nil {
		sink = NewDiscardSink()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &IngestPipeline{
		factory: NewProcessorFactory(),
		sink:    sink,
		logger:  logger,
		stats:   IngestStats{StartTime: time.Now()},
	}
}

// ProcessFile ingests a single file and stores the resulting dataset
func (pl *IngestPipeline) ProcessFile(config Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	pl.logger.Info("Starting ingestion.", "input", config.InputPath, "type", string(config.DataType))

	start := time.Now()
	processor, err := pl.factory.CreateProcessor(config.DataType, config.InputPath, pl.sink, pl.logger)
	if err != nil {
		pl.stats.AddFileFailed()
		return err
	}

	data, err := processor.Process()
	if err != nil {
		pl.stats.AddFileFailed()
		return err
	}

	if err := processor.Store(data); err != nil {
		pl.stats.AddFileFailed()
		return err
	}

	pl.stats.AddFileProcessed()
	pl.stats.AddRecords(int64(len(data)))
	pl.stats.UpdateDuration()

	fileSizeMB := float64(pl.getFileSize(config.InputPath)) / (1024 * 1024)
	pl.logger.Info("Ingested file.",
		"input", config.InputPath,
		"size_mb", fmt.Sprintf("%.1f", fileSizeMB),
		"records", len(data),
		"duration", time.Since(start).String())
	return nil
}

// ProcessBatch ingests multiple files through the shared sink. A
// failing file is logged and counted; the remaining files still run.
func (pl *IngestPipeline) ProcessBatch(inputPaths []string, config Config) error {
	if len(inputPaths) == 0 {
		return fmt.Errorf("no input files provided")
	}

	// Validate configuration (InputPath is set per file below)
	tempConfig := config
	tempConfig.InputPath = "temp"
	if err := tempConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	pl.logger.Info("Starting batch ingestion.", "files", len(inputPaths))

	for i, inputPath := range inputPaths {
		pl.logger.Info("Processing file.", "index", i+1, "total", len(inputPaths), "input", inputPath)

		fileConfig := config
		fileConfig.InputPath = inputPath

		if err := pl.ProcessFile(fileConfig); err != nil {
			pl.logger.Error("File ingestion failed, continuing.", "input", inputPath, "error", err.Error())
			// Continue with other files
		}
	}

	pl.stats.UpdateDuration()
	pl.logger.Info("Batch ingestion completed.", "stats", pl.stats.String())
	return nil
}

// Stats returns a copy of the pipeline statistics
func (pl *IngestPipeline) Stats() IngestStats {
	return pl.stats
}

// GetFileInfo parses a file without storing anything and reports what
// an ingest run would see.
func (pl *IngestPipeline) GetFileInfo(filePath string) (*FileInfo, error) {
	dataType, err := DetectDataType(filePath)
	if err != nil {
		return nil, err
	}

	processor, err := pl.factory.CreateProcessor(dataType, filePath, NewDiscardSink(), pl.logger)
	if err != nil {
		return nil, err
	}

	data, err := processor.Process()
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Path:        filePath,
		Type:        dataType,
		RecordCount: len(data),
		SizeBytes:   pl.getFileSize(filePath),
	}, nil
}

// FileInfo contains information about an inspected data file
type FileInfo struct {
	Path        string
	Type        DataType
	RecordCount int
	SizeBytes   int64
}

// String returns a string representation of the file info
func (fi *FileInfo) String() string {
	return fmt.Sprintf("%s: %d %s records", fi.Path, fi.RecordCount, fi.Type)
}

// getFileSize returns the size of a file in bytes, or 0 if error
func (pl *IngestPipeline) getFileSize(filePath string) int64 {
	if info, err := os.Stat(filePath); err == nil {
		return info.Size()
	}
	return 0
}
