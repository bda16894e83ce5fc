package adprocessor

import (
	"log/slog"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ImpressionProcessor ingests impression delivery files: a single
// top-level JSON array of objects. Empty and null entries are dropped;
// everything else passes through in input order.
type ImpressionProcessor struct {
	*BaseProcessor
	fileHandler *FileHandler
}

// NewImpressionProcessor creates a processor for a JSON impression file
func NewImpressionProcessor(filePath string, sink StorageSink, logger *slog.Logger) *ImpressionProcessor {
	return &ImpressionProcessor{
		BaseProcessor: NewBaseProcessor("impressions", filePath, sink, logger),
		fileHandler:   NewFileHandler(),
	}
}

// Process decodes the impression array and returns the non-empty
// entries in input order.
func (ip *ImpressionProcessor) Process() (Dataset, error) {
	if err := ip.fileHandler.ValidateInputFile(ip.filePath); err != nil {
		return nil, ip.HandleErrors(err)
	}

	reader, err := ip.fileHandler.Open(ip.filePath)
	if err != nil {
		return nil, ip.HandleErrors(err)
	}
	defer reader.Close()

	var entries []Record
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&entries); err != nil {
		return nil, ip.HandleErrors(NewDecodeError(FormatJSON, ip.filePath, err))
	}

	impressions := make(Dataset, 0, len(entries))
	for _, entry := range entries {
		// null decodes to a nil map and {} to an empty one; both are dropped
		if len(entry) == 0 {
			continue
		}
		impressions = append(impressions, entry)
	}

	ip.logger.Debug("Processed impressions file.", "entries", len(entries), "kept", len(impressions))
	return impressions, nil
}

// Store hands the processed impressions to the storage sink
func (ip *ImpressionProcessor) Store(data Dataset) error {
	ip.logger.Info("Storing processed impressions to data warehouse.", "records", len(data))
	return ip.storeDataset(data)
}
