package adprocessor

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileHandler handles input file validation and opening. Inputs with a
// .gz suffix are decompressed transparently so every format parser sees
// the plain byte stream.
type FileHandler struct{}

// NewFileHandler creates a new FileHandler instance
func NewFileHandler() *FileHandler {
	return &FileHandler{}
}

// ValidateInputFile checks if the input file exists and is readable.
// A missing file surfaces as the file-not-found error kind.
func (fh *FileHandler) ValidateInputFile(filePath string) error {
	if strings.TrimSpace(filePath) == "" {
		return NewFileError(filePath, fmt.Errorf("file path cannot be empty"))
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewFileNotFoundError(filePath)
		}
		return NewFileError(filePath, err)
	}

	if info.IsDir() {
		return NewFileError(filePath, fmt.Errorf("path is a directory, not a file"))
	}

	// Try to open the file to check permissions
	file, err := os.Open(filePath)
	if err != nil {
		return NewFileError(filePath, err)
	}
	file.Close()

	return nil
}

// Open opens an input file for reading, wrapping .gz inputs in a gzip
// reader. The caller owns the returned ReadCloser.
func (fh *FileHandler) Open(filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewFileNotFoundError(filePath)
		}
		return nil, NewFileError(filePath, err)
	}

	if !strings.EqualFold(filepath.Ext(filePath), ".gz") {
		return file, nil
	}

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, NewFileError(filePath, fmt.Errorf("failed to create gzip reader: %w", err))
	}

	return &gzipReadCloser{gz: gzipReader, file: file}, nil
}

// gzipReadCloser reads decompressed data and closes both the gzip
// stream and the underlying file.
type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// DetectDataType infers the processor type from the file name. A .gz
// suffix is stripped before the format extension is examined.
func DetectDataType(filePath string) (DataType, error) {
	name := strings.ToLower(filePath)
	name = strings.TrimSuffix(name, ".gz")

	switch filepath.Ext(name) {
	case ".json":
		return DataTypeImpressions, nil
	case ".csv":
		return DataTypeClicks, nil
	case ".avro":
		return DataTypeBidRequests, nil
	default:
		return "", fmt.Errorf("cannot detect data type from file name: %s", filePath)
	}
}

// DataFileExtensions returns the file extensions the ingest pipeline
// understands, including the gzip-wrapped variants.
func DataFileExtensions() []string {
	return []string{".json", ".csv", ".avro", ".json.gz", ".csv.gz", ".avro.gz"}
}
