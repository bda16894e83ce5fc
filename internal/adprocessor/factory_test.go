package adprocessor

import (
	"strings"
	"testing"
)

func TestProcessorFactory_CreateProcessor(t *testing.T) {
	factory := NewProcessorFactory()
	sink := NewDiscardSink()

	processor, err := factory.CreateProcessor(DataTypeImpressions, "data.json", sink, nil)
	if err != nil {
		t.Fatalf("CreateProcessor(impressions) unexpected error = %v", err)
	}
	if _, ok := processor.(*ImpressionProcessor); !ok {
		t.Errorf("CreateProcessor(impressions) returned %T, want *ImpressionProcessor", processor)
	}

	processor, err = factory.CreateProcessor(DataTypeClicks, "data.csv", sink, nil)
	if err != nil {
		t.Fatalf("CreateProcessor(clicks) unexpected error = %v", err)
	}
	if _, ok := processor.(*ClicksConversionsProcessor); !ok {
		t.Errorf("CreateProcessor(clicks) returned %T, want *ClicksConversionsProcessor", processor)
	}

	processor, err = factory.CreateProcessor(DataTypeBidRequests, "data.avro", sink, nil)
	if err != nil {
		t.Fatalf("CreateProcessor(bidrequests) unexpected error = %v", err)
	}
	if _, ok := processor.(*BidRequestsProcessor); !ok {
		t.Errorf("CreateProcessor(bidrequests) returned %T, want *BidRequestsProcessor", processor)
	}
}

func TestProcessorFactory_CreateProcessor_AutoDetect(t *testing.T) {
	factory := NewProcessorFactory()
	sink := NewDiscardSink()

	tests := []struct {
		name     string
		dataType DataType
		filePath string
	}{
		{"auto json", DataTypeAuto, "impressions.json"},
		{"auto csv", DataTypeAuto, "clicks.csv"},
		{"auto avro", DataTypeAuto, "bids.avro"},
		{"empty type gzipped avro", "", "bids.avro.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor, err := factory.CreateProcessor(tt.dataType, tt.filePath, sink, nil)
			if err != nil {
				t.Fatalf("CreateProcessor() unexpected error = %v", err)
			}
			if processor == nil {
				t.Fatal("CreateProcessor() returned nil processor")
			}
		})
	}
}

func TestProcessorFactory_CreateProcessor_UnknownExtension(t *testing.T) {
	factory := NewProcessorFactory()

	_, err := factory.CreateProcessor(DataTypeAuto, "data.txt", NewDiscardSink(), nil)
	if err == nil {
		t.Fatal("CreateProcessor() expected error but got none")
	}
	if !strings.Contains(err.Error(), "cannot detect data type") {
		t.Errorf("CreateProcessor() error = %v, want cannot detect data type", err)
	}
}

func TestProcessorFactory_CreateProcessor_UnsupportedType(t *testing.T) {
	factory := NewProcessorFactory()

	_, err := factory.CreateProcessor(DataType("video"), "data.json", NewDiscardSink(), nil)
	if err == nil {
		t.Fatal("CreateProcessor() expected error but got none")
	}
	if !strings.Contains(err.Error(), "unsupported data type") {
		t.Errorf("CreateProcessor() error = %v, want unsupported data type", err)
	}
}
