package adprocessor

import (
	"encoding/csv"
	"io"
	"log/slog"
)

// ClicksConversionsProcessor ingests click and conversion delivery
// files: CSV with a header row. Each data row becomes a record keyed by
// the header fields; the transform is the identity.
type ClicksConversionsProcessor struct {
	*BaseProcessor
	fileHandler *FileHandler
}

// NewClicksConversionsProcessor creates a processor for a CSV
// clicks/conversions file
func NewClicksConversionsProcessor(filePath string, sink StorageSink, logger *slog.Logger) *ClicksConversionsProcessor {
	return &ClicksConversionsProcessor{
		BaseProcessor: NewBaseProcessor("clicks_conversions", filePath, sink, logger),
		fileHandler:   NewFileHandler(),
	}
}

// Process parses the CSV rows into header-keyed records. A file with a
// header and no rows, or a fully empty file, yields an empty dataset.
func (ccp *ClicksConversionsProcessor) Process() (Dataset, error) {
	if err := ccp.fileHandler.ValidateInputFile(ccp.filePath); err != nil {
		return nil, ccp.HandleErrors(err)
	}

	reader, err := ccp.fileHandler.Open(ccp.filePath)
	if err != nil {
		return nil, ccp.HandleErrors(err)
	}
	defer reader.Close()

	csvReader := csv.NewReader(reader)

	header, err := csvReader.Read()
	if err == io.EOF {
		return Dataset{}, nil
	}
	if err != nil {
		return nil, ccp.HandleErrors(NewDecodeError(FormatCSV, ccp.filePath, err))
	}

	records := Dataset{}
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ccp.HandleErrors(NewDecodeError(FormatCSV, ccp.filePath, err))
		}

		record := make(Record, len(header))
		for i, field := range header {
			record[field] = row[i]
		}
		records = append(records, record)
	}

	ccp.logger.Debug("Processed clicks/conversions file.", "rows", len(records))
	return records, nil
}

// Store hands the processed clicks/conversions to the storage sink
func (ccp *ClicksConversionsProcessor) Store(data Dataset) error {
	ccp.logger.Info("Storing processed clicks/conversions to data warehouse.", "records", len(data))
	return ccp.storeDataset(data)
}
