package main

import (
	"fmt"

	"github.com/Aryanshanu/pesto/internal/adprocessor"
	"github.com/spf13/cobra"
)

var (
	inputFile   string
	inputFiles  []string
	inputDir    string
	recursive   bool
	dataType    string
	sinkType    string
	logLevel    string
	logFilePath string
	configFile  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest ad data files",
	Long: `Ingest ad data files and write the parsed records to the configured
storage sink.

The data type is inferred from the file extension (.json for impressions,
.csv for clicks/conversions, .avro for bid requests) unless set with --type.
Gzip-compressed files are decompressed transparently.

Examples:
  # Ingest a single file
  adprocessor ingest -i impressions.json

  # Force the data type
  adprocessor ingest -i day1.json --type impressions

  # Ingest multiple files
  adprocessor ingest --input-files impressions.json,clicks.csv

  # Ingest a directory of files
  adprocessor ingest -d /path/to/deliveries/

  # Ingest a directory recursively, discarding the output
  adprocessor ingest -d /path/to/deliveries/ -r --sink discard`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cliConfig, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %v", err)
	}

	// Override with command line flags (flags take precedence)
	if cmd.Flags().Changed("input") {
		cliConfig.Input = inputFile
	}
	if cmd.Flags().Changed("input-files") {
		cliConfig.InputFiles = inputFiles
	}
	if cmd.Flags().Changed("type") {
		cliConfig.DataType = dataType
	}
	if cmd.Flags().Changed("sink") {
		cliConfig.Sink = sinkType
	}
	if cmd.Flags().Changed("log-level") {
		cliConfig.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cliConfig.LogFile = logFilePath
	}

	if err := cliConfig.Validate(); err != nil {
		return fmt.Errorf("configuration error: %v", err)
	}

	logger, logFile := newLogger(cliConfig.LogLevel, cliConfig.LogFile)
	if logFile != nil {
		defer logFile.Close()
	}

	config := cliConfig.ToIngestConfig()

	var inputPaths []string

	if inputDir != "" {
		// Directory mode - scan for data files
		inputPaths, err = scanDirectoryForDataFiles(inputDir, recursive, logger)
		if err != nil {
			return fmt.Errorf("failed to scan directory: %v", err)
		}
		if len(inputPaths) == 0 {
			return fmt.Errorf("no data files found in directory: %s", inputDir)
		}
	} else if len(cliConfig.InputFiles) > 0 {
		inputPaths = cliConfig.InputFiles
	} else if cliConfig.Input != "" {
		inputPaths = []string{cliConfig.Input}
	} else {
		return fmt.Errorf("one of --input, --input-files, or --input-dir must be specified")
	}

	factory := adprocessor.NewSinkFactory()
	sink, err := factory.CreateSink(config.SinkType)
	if err != nil {
		return fmt.Errorf("failed to create sink: %v", err)
	}
	defer sink.Close()

	pipeline := adprocessor.NewIngestPipeline(sink, logger)

	if len(inputPaths) == 1 {
		config.InputPath = inputPaths[0]
		return pipeline.ProcessFile(config)
	}
	return pipeline.ProcessBatch(inputPaths, config)
}

func init() {
	ingestCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input data file path")
	ingestCmd.Flags().StringSliceVar(&inputFiles, "input-files", []string{}, "Multiple input data files (comma-separated)")
	ingestCmd.Flags().StringVarP(&inputDir, "input-dir", "d", "", "Input directory containing data files")
	ingestCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan directories recursively")

	ingestCmd.Flags().StringVarP(&dataType, "type", "t", "auto", "Data type (impressions, clicks, bidrequests, auto)")
	ingestCmd.Flags().StringVar(&sinkType, "sink", "console", "Storage sink (console, discard)")

	ingestCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	ingestCmd.Flags().StringVar(&logFilePath, "log-file", "", "Also write logs to this file")

	ingestCmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
}
