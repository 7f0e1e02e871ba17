package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"diagramdb/src/directors"
	"diagramdb/src/server"
	"diagramdb/src/settings"

	"go.uber.org/zap"
)

// printUsage prints helpful usage information
func printUsage() {
	fmt.Fprintln(os.Stderr, "diagramdb - a file-backed store for diagram documents")
	fmt.Fprintln(os.Stderr, "\nUsage:")
	fmt.Fprintln(os.Stderr, "  diagramdb [options]")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	flag.PrintDefaults()

	fmt.Fprintln(os.Stderr, "\nExamples:")
	fmt.Fprintln(os.Stderr, "  diagramdb --datadir=/data --port=8080")
	fmt.Fprintln(os.Stderr, "  diagramdb --datadir=/data --export=backup.bson")
}

func main() {
	args := settings.GetSettings()

	flag.StringVar(&args.DataDir, "datadir", args.DataDir, "Directory holding diagrams, filters and config")
	flag.StringVar(&args.LogDir, "logdir", "", "Directory to store log files (default: stdout only)")
	flag.StringVar(&args.Host, "host", args.Host, "Host name or IP address to listen on")
	flag.IntVar(&args.Port, "port", args.Port, "Port for the HTTP server")
	flag.BoolVar(&args.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&args.Debug, "debug", false, "Enable debug mode")
	flag.BoolVar(&args.PrintToScreen, "print", args.PrintToScreen, "Print log messages to screen")
	flag.BoolVar(&args.JournalEnabled, "journal", false, "Record every mutation in the journal")
	flag.StringVar(&args.JournalDir, "journaldir", "", "Journal directory (default: {datadir}/journal)")
	flag.IntVar(&args.JournalRetentionDays, "journalretention", args.JournalRetentionDays, "Days of journal files to keep (0 keeps all)")
	flag.BoolVar(&args.VerifyWrites, "verifywrites", args.VerifyWrites, "Re-read every document after writing it")
	flag.Int64Var(&args.MaxBodyBytes, "maxbodybytes", args.MaxBodyBytes, "Maximum request body size in bytes")
	flag.StringVar(&args.ExportArchive, "export", "", "Write a BSON archive of the store to this path and exit")
	flag.StringVar(&args.ImportArchive, "import", "", "Restore the BSON archive at this path and exit")
	flag.Usage = printUsage

	flag.Parse()

	applyEnvironment(args)

	if err := validateArguments(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		printUsage()
		os.Exit(1)
	}

	logger, err := buildLogger(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	if args.Verbose {
		sugar.Infow("diagramdb starting with options",
			"dataDir", args.DataDir,
			"logDir", args.LogDir,
			"host", args.Host,
			"port", args.Port,
			"journal", args.JournalEnabled,
			"verifyWrites", args.VerifyWrites,
			"version", args.Version)
	}

	srv, err := server.InitServer(args, sugar)
	if err != nil {
		sugar.Fatalw("Failed to initialize server", "error", err)
	}

	if args.ExportArchive != "" || args.ImportArchive != "" {
		code := runArchiveMode(args, directors.GetServiceManager(), sugar)
		ctx, cancel := context.WithTimeout(context.Background(), args.ShutdownTimeout)
		if err := srv.Stop(ctx); err != nil {
			sugar.Warnw("Error closing store", "error", err)
		}
		cancel()
		os.Exit(code)
	}

	if err := srv.Start(); err != nil {
		sugar.Fatalw("Failed to start server", "error", err)
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)

	sig := <-shutdownSignal
	sugar.Infow("Shutting down server", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), args.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		sugar.Errorw("Error stopping server", "error", err)
	}
}

// applyEnvironment lets DIAGRAMS_PATH and PORT override the flags.
func applyEnvironment(args *settings.Arguments) {
	if dir := os.Getenv("DIAGRAMS_PATH"); dir != "" {
		args.DataDir = dir
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			args.Port = p
		} else {
			fmt.Fprintf(os.Stderr, "Ignoring invalid PORT %q\n", port)
		}
	}
}

func buildLogger(args *settings.Arguments) (*zap.Logger, error) {
	var config zap.Config
	if args.Debug {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
		if args.Verbose {
			config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
	}

	outputs := []string{}
	if args.PrintToScreen {
		outputs = append(outputs, "stdout")
	}
	if args.LogDir != "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logFilename := fmt.Sprintf("%s_%s_ServerLog.txt", timestamp, args.Host)
		outputs = append(outputs, filepath.Join(args.LogDir, logFilename))
	}
	if len(outputs) == 0 {
		outputs = append(outputs, "stderr")
	}
	config.OutputPaths = outputs

	return config.Build()
}

func runArchiveMode(args *settings.Arguments, services *directors.ServiceManager, logger *zap.SugaredLogger) int {
	if args.ExportArchive != "" {
		data, archive, err := services.ArchiveService.Export()
		if err != nil {
			logger.Errorw("Failed to export archive", "error", err)
			return 1
		}
		if err := os.WriteFile(args.ExportArchive, data, 0644); err != nil {
			logger.Errorw("Failed to write archive", "path", args.ExportArchive, "error", err)
			return 1
		}
		logger.Infow("Archive written", "path", args.ExportArchive, "archiveId", archive.ArchiveID)
		return 0
	}

	data, err := os.ReadFile(args.ImportArchive)
	if err != nil {
		logger.Errorw("Failed to read archive", "path", args.ImportArchive, "error", err)
		return 1
	}
	imported, err := services.ArchiveService.Import(data)
	if err != nil {
		logger.Errorw("Failed to import archive", "path", args.ImportArchive, "restored", imported, "error", err)
		return 1
	}
	logger.Infow("Archive restored", "path", args.ImportArchive, "documents", imported)
	return 0
}

// validateArguments validates the arguments and returns an error if invalid
func validateArguments(args *settings.Arguments) error {
	dirInfo, err := os.Stat(args.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(args.DataDir, 0755); err != nil {
				return fmt.Errorf("could not create data directory: %w", err)
			}
		} else {
			return fmt.Errorf("error accessing data directory: %w", err)
		}
	} else if !dirInfo.IsDir() {
		return fmt.Errorf("data directory path exists but is not a directory: %s", args.DataDir)
	}

	if args.LogDir != "" {
		if err := os.MkdirAll(args.LogDir, 0755); err != nil {
			return fmt.Errorf("could not create log directory: %w", err)
		}
	}

	if args.Port < 1 || args.Port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", args.Port)
	}

	if args.JournalRetentionDays < 0 {
		return fmt.Errorf("invalid journal retention: %d days", args.JournalRetentionDays)
	}

	if args.MaxBodyBytes < 0 {
		return fmt.Errorf("invalid max body size: %d", args.MaxBodyBytes)
	}

	if args.ExportArchive != "" && args.ImportArchive != "" {
		return fmt.Errorf("--export and --import cannot be used together")
	}

	return nil
}
