package adprocessor

import (
	"log/slog"
)

// BaseProcessor carries the state shared by every concrete processor:
// the input path, the sink the processed dataset is handed to, and a
// logger tagged with the processor name. Its own Process and Store are
// placeholders that report the not-implemented error kind; concrete
// processors embed BaseProcessor and override both.
type BaseProcessor struct {
	name     string
	filePath string
	sink     StorageSink
	logger   *slog.Logger
}

// NewBaseProcessor creates the shared processor state. A nil sink
// defaults to the discard sink and a nil logger to the default logger.
func NewBaseProcessor(name, filePath string, sink StorageSink, logger *slog.Logger) *BaseProcessor {
	if sink == nil {
		sink = NewDiscardSink()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BaseProcessor{
		name:     name,
		filePath: filePath,
		sink:     sink,
		logger:   logger.With("processor", name),
	}
}

// Process reports that the concrete processor failed to override it
func (bp *BaseProcessor) Process() (Dataset, error) {
	return nil, NewNotImplementedError("process")
}

// Store reports that the concrete processor failed to override it
func (bp *BaseProcessor) Store(data Dataset) error {
	return NewNotImplementedError("store")
}

// HandleErrors logs the error once at error level and returns it
// unchanged. It never suppresses or replaces the error; callers still
// propagate the original.
func (bp *BaseProcessor) HandleErrors(err error) error {
	if err == nil {
		return nil
	}

	bp.logger.Error("Error processing data.", "error", err.Error())
	return err
}

// FilePath returns the input path this processor reads from
func (bp *BaseProcessor) FilePath() string {
	return bp.filePath
}

// storeDataset hands a dataset to the sink, surfacing failures as
// storage errors through the logging hook.
func (bp *BaseProcessor) storeDataset(data Dataset) error {
	if err := bp.sink.Store(data); err != nil {
		return bp.HandleErrors(NewStorageError(err))
	}
	return nil
}
