package adprocessor

import (
	"fmt"
	"log/slog"
)

// ProcessorFactory creates data processors based on the data type
type ProcessorFactory struct{}

// NewProcessorFactory creates a new ProcessorFactory
func NewProcessorFactory() *ProcessorFactory {
	return &ProcessorFactory{}
}

// CreateProcessor creates the processor for the given data type. The
// auto type resolves from the file name first.
func (pf *ProcessorFactory) CreateProcessor(dataType DataType, filePath string, sink StorageSink, logger *slog.Logger) (DataProcessor, error) {
	if dataType == DataTypeAuto || dataType == "" {
		detected, err := DetectDataType(filePath)
		if err != nil {
			return nil, err
		}
		dataType = detected
	}

	switch dataType {
	case DataTypeImpressions:
		return NewImpressionProcessor(filePath, sink, logger), nil
	case DataTypeClicks:
		return NewClicksConversionsProcessor(filePath, sink, logger), nil
	case DataTypeBidRequests:
		return NewBidRequestsProcessor(filePath, sink, logger), nil
	default:
		return nil, fmt.Errorf("unsupported data type: %s", dataType)
	}
}
