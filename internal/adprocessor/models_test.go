package adprocessor

import (
	"strings"
	"testing"
	"time"
)

func TestDataType_Validate(t *testing.T) {
	tests := []struct {
		name     string
		dataType DataType
		wantErr  bool
	}{
		{"impressions", DataTypeImpressions, false},
		{"clicks", DataTypeClicks, false},
		{"bidrequests", DataTypeBidRequests, false},
		{"auto", DataTypeAuto, false},
		{"unknown", DataType("video"), true},
		{"empty", DataType(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dataType.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error but got none")
				}
				if !strings.Contains(err.Error(), "data type must be one of") {
					t.Errorf("Validate() error = %v, want data type must be one of", err)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantErr   bool
		errSubstr string
	}{
		{
			name:   "valid config",
			config: Config{InputPath: "data.json", DataType: DataTypeAuto, SinkType: "console", LogLevel: "info"},
		},
		{
			name:   "empty log level is allowed",
			config: Config{InputPath: "data.json", DataType: DataTypeAuto, SinkType: "discard"},
		},
		{
			name:      "missing input path",
			config:    Config{DataType: DataTypeAuto, SinkType: "console"},
			wantErr:   true,
			errSubstr: "input path is required",
		},
		{
			name:      "invalid data type",
			config:    Config{InputPath: "data.json", DataType: "video", SinkType: "console"},
			wantErr:   true,
			errSubstr: "data type must be one of",
		},
		{
			name:      "invalid sink type",
			config:    Config{InputPath: "data.json", DataType: DataTypeAuto, SinkType: "tape"},
			wantErr:   true,
			errSubstr: "sink type must be one of: console, discard",
		},
		{
			name:      "invalid log level",
			config:    Config{InputPath: "data.json", DataType: DataTypeAuto, SinkType: "console", LogLevel: "trace"},
			wantErr:   true,
			errSubstr: "log level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Validate() error = %v, want substring %q", err, tt.errSubstr)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	config := Config{InputPath: "data.json"}
	config.SetDefaults()

	if config.DataType != DataTypeAuto {
		t.Errorf("SetDefaults() DataType = %s, want auto", config.DataType)
	}
	if config.SinkType != "console" {
		t.Errorf("SetDefaults() SinkType = %s, want console", config.SinkType)
	}
	if config.LogLevel != "info" {
		t.Errorf("SetDefaults() LogLevel = %s, want info", config.LogLevel)
	}

	// Existing values are not overwritten
	config = Config{InputPath: "data.json", DataType: DataTypeClicks, SinkType: "discard", LogLevel: "debug"}
	config.SetDefaults()

	if config.DataType != DataTypeClicks {
		t.Errorf("SetDefaults() overwrote DataType = %s", config.DataType)
	}
	if config.SinkType != "discard" {
		t.Errorf("SetDefaults() overwrote SinkType = %s", config.SinkType)
	}
	if config.LogLevel != "debug" {
		t.Errorf("SetDefaults() overwrote LogLevel = %s", config.LogLevel)
	}
}

func TestIngestStats(t *testing.T) {
	stats := IngestStats{StartTime: time.Now()}

	stats.AddFileProcessed()
	stats.AddFileProcessed()
	stats.AddFileProcessed()
	stats.AddFileFailed()
	stats.AddRecords(120)

	if stats.FilesProcessed != 3 {
		t.Errorf("FilesProcessed = %d, want 3", stats.FilesProcessed)
	}
	if stats.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", stats.FilesFailed)
	}
	if stats.RecordsStored != 120 {
		t.Errorf("RecordsStored = %d, want 120", stats.RecordsStored)
	}
	if stats.SuccessRate() != 75.0 {
		t.Errorf("SuccessRate() = %.2f, want 75.00", stats.SuccessRate())
	}
	if stats.FailureRate() != 25.0 {
		t.Errorf("FailureRate() = %.2f, want 25.00", stats.FailureRate())
	}
}

func TestIngestStats_EmptyRates(t *testing.T) {
	stats := IngestStats{}

	if stats.SuccessRate() != 0.0 {
		t.Errorf("SuccessRate() = %.2f, want 0.00", stats.SuccessRate())
	}
	if stats.FailureRate() != 0.0 {
		t.Errorf("FailureRate() = %.2f, want 0.00", stats.FailureRate())
	}
}

func TestIngestStats_String(t *testing.T) {
	stats := IngestStats{FilesProcessed: 1, FilesFailed: 1, RecordsStored: 5}

	result := stats.String()
	if !strings.Contains(result, "1 processed (50.00%)") {
		t.Errorf("String() = %s, want processed percentage", result)
	}
	if !strings.Contains(result, "Records: 5") {
		t.Errorf("String() = %s, want record count", result)
	}
}

func TestIngestStats_CompactFormat(t *testing.T) {
	stats := IngestStats{RecordsStored: 5, Duration: 500 * time.Millisecond}

	want := "5 records, Duration: 0.500s"
	if stats.CompactFormat() != want {
		t.Errorf("CompactFormat() = %s, want %s", stats.CompactFormat(), want)
	}

	stats.FilesFailed = 1
	want = "5 records, Failed files: 1, Duration: 0.500s"
	if stats.CompactFormat() != want {
		t.Errorf("CompactFormat() = %s, want %s", stats.CompactFormat(), want)
	}
}

func TestNewFetchState(t *testing.T) {
	state := NewFetchState()

	if state.Version != "1.0" {
		t.Errorf("NewFetchState() version = %s, want 1.0", state.Version)
	}
	if state.FetchedObjects == nil {
		t.Error("NewFetchState() FetchedObjects map is nil")
	}
	if state.FailedObjects == nil {
		t.Error("NewFetchState() FailedObjects map is nil")
	}
	if state.GetFetchedCount() != 0 || state.GetFailedCount() != 0 {
		t.Error("NewFetchState() counts should start at zero")
	}
	if err := state.Validate(); err != nil {
		t.Errorf("NewFetchState() should validate, got %v", err)
	}
}

func TestFetchState_Validate(t *testing.T) {
	tests := []struct {
		name      string
		state     FetchState
		errSubstr string
	}{
		{
			name:      "nil fetched objects",
			state:     FetchState{FailedObjects: make(map[string]ObjectState), Version: "1.0"},
			errSubstr: "fetched_objects map cannot be nil",
		},
		{
			name:      "nil failed objects",
			state:     FetchState{FetchedObjects: make(map[string]ObjectState), Version: "1.0"},
			errSubstr: "failed_objects map cannot be nil",
		},
		{
			name:      "empty version",
			state:     FetchState{FetchedObjects: make(map[string]ObjectState), FailedObjects: make(map[string]ObjectState)},
			errSubstr: "version cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if err == nil {
				t.Fatal("Validate() expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.errSubstr)
			}
		})
	}
}

func TestFetchState_Counts(t *testing.T) {
	state := NewFetchState()
	state.FetchedObjects["data/a.json"] = ObjectState{Key: "data/a.json", ETag: "e1", Size: 10, FetchedAt: time.Now()}
	state.FetchedObjects["data/b.csv"] = ObjectState{Key: "data/b.csv", ETag: "e2", Size: 20, FetchedAt: time.Now()}
	state.FailedObjects["data/c.avro"] = ObjectState{Key: "data/c.avro", ETag: "e3", Size: 30, FetchedAt: time.Now()}

	if state.GetFetchedCount() != 2 {
		t.Errorf("GetFetchedCount() = %d, want 2", state.GetFetchedCount())
	}
	if state.GetFailedCount() != 1 {
		t.Errorf("GetFailedCount() = %d, want 1", state.GetFailedCount())
	}
}

func TestObjectState_Validate(t *testing.T) {
	valid := ObjectState{Key: "data/a.json", ETag: "e1", Size: 100, FetchedAt: time.Now()}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}

	tests := []struct {
		name      string
		state     ObjectState
		errSubstr string
	}{
		{
			name:      "empty key",
			state:     ObjectState{ETag: "e1", Size: 100, FetchedAt: time.Now()},
			errSubstr: "key cannot be empty",
		},
		{
			name:      "empty etag",
			state:     ObjectState{Key: "data/a.json", Size: 100, FetchedAt: time.Now()},
			errSubstr: "etag cannot be empty",
		},
		{
			name:      "negative size",
			state:     ObjectState{Key: "data/a.json", ETag: "e1", Size: -1, FetchedAt: time.Now()},
			errSubstr: "size must be non-negative",
		},
		{
			name:      "zero fetched_at",
			state:     ObjectState{Key: "data/a.json", ETag: "e1", Size: 100},
			errSubstr: "fetched_at cannot be zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if err == nil {
				t.Fatal("Validate() expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.errSubstr)
			}
		})
	}
}
