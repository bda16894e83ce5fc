package adprocessor

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/linkedin/goavro/v2"
)

// BidRequestsProcessor ingests bid request delivery files: binary Avro
// object container files carrying their own embedded schema. Decoded
// datums pass through unchanged.
type BidRequestsProcessor struct {
	*BaseProcessor
	fileHandler *FileHandler
}

// NewBidRequestsProcessor creates a processor for an Avro bid request
// container file
func NewBidRequestsProcessor(filePath string, sink StorageSink, logger *slog.Logger) *BidRequestsProcessor {
	return &BidRequestsProcessor{
		BaseProcessor: NewBaseProcessor("bid_requests", filePath, sink, logger),
		fileHandler:   NewFileHandler(),
	}
}

// Process decodes every datum in the container file into a record, in
// file order. Any container or block failure surfaces as an Avro decode
// error carrying the original cause.
func (brp *BidRequestsProcessor) Process() (Dataset, error) {
	if err := brp.fileHandler.ValidateInputFile(brp.filePath); err != nil {
		return nil, brp.HandleErrors(err)
	}

	reader, err := brp.fileHandler.Open(brp.filePath)
	if err != nil {
		return nil, brp.HandleErrors(err)
	}
	defer reader.Close()

	ocfReader, err := goavro.NewOCFReader(bufio.NewReader(reader))
	if err != nil {
		return nil, brp.HandleErrors(NewDecodeError(FormatAvro, brp.filePath, err))
	}

	records := Dataset{}
	for ocfReader.Scan() {
		datum, err := ocfReader.Read()
		if err != nil {
			return nil, brp.HandleErrors(NewDecodeError(FormatAvro, brp.filePath, err))
		}

		record, ok := datum.(map[string]any)
		if !ok {
			return nil, brp.HandleErrors(NewDecodeError(FormatAvro, brp.filePath,
				fmt.Errorf("datum is not an Avro record: %T", datum)))
		}

		records = append(records, Record(record))
	}

	if err := ocfReader.Err(); err != nil {
		return nil, brp.HandleErrors(NewDecodeError(FormatAvro, brp.filePath, err))
	}

	brp.logger.Debug("Processed bid requests file.", "records", len(records))
	return records, nil
}

// Store hands the processed bid requests to the storage sink
func (brp *BidRequestsProcessor) Store(data Dataset) error {
	brp.logger.Info("Storing processed bid requests to data warehouse.", "records", len(data))
	return brp.storeDataset(data)
}
