package adprocessor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// SinkFactory creates storage sinks based on the sink name
type SinkFactory struct{}

// NewSinkFactory creates a new SinkFactory
func NewSinkFactory() *SinkFactory {
	return &SinkFactory{}
}

// CreateSink creates the sink registered under the given name. The
// console sink writes to stdout.
func (sf *SinkFactory) CreateSink(sinkType string) (StorageSink, error) {
	switch strings.ToLower(sinkType) {
	case "console":
		return NewConsoleSink(os.Stdout), nil
	case "discard":
		return NewDiscardSink(), nil
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", sinkType)
	}
}

// ConsoleSink is the stand-in for the data warehouse: it writes one
// JSON-encoded record per line to the underlying writer.
type ConsoleSink struct {
	writer  *bufio.Writer
	encoder *jsoniter.Encoder
}

// NewConsoleSink creates a console sink over the given writer
func NewConsoleSink(w io.Writer) *ConsoleSink {
	writer := bufio.NewWriter(w)
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	return &ConsoleSink{
		writer:  writer,
		encoder: encoder,
	}
}

// Store writes each record as a separate JSON line, in dataset order
func (cs *ConsoleSink) Store(data Dataset) error {
	if cs.writer == nil {
		return fmt.Errorf("sink is closed")
	}

	for _, record := range data {
		if err := cs.encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write record: %v", err)
		}
	}

	return cs.writer.Flush()
}

// Close flushes any buffered output and closes the sink
func (cs *ConsoleSink) Close() error {
	if cs.writer == nil {
		return nil // Already closed
	}

	err := cs.writer.Flush()
	cs.writer = nil
	return err
}

// DiscardSink accepts and drops every dataset. Used for dry runs and
// file inspection.
type DiscardSink struct{}

// NewDiscardSink creates a sink that drops everything
func NewDiscardSink() *DiscardSink {
	return &DiscardSink{}
}

// Store drops the dataset
func (ds *DiscardSink) Store(data Dataset) error {
	return nil
}

// Close is a no-op
func (ds *DiscardSink) Close() error {
	return nil
}
