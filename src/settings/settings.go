package settings

import (
	"sync"
	"time"
)

type Arguments struct {
	// The root directory holding diagrams/, diagram_filters/ and config.json
	DataDir string
	LogDir  string

	// Directory for the mutation journal. Empty means {DataDir}/journal
	JournalDir string

	// the host name or IP address to listen on
	Host string

	// the port number to listen on
	Port int

	// Strongly verbose logging
	Verbose bool

	Debug         bool
	PrintToScreen bool

	// Record every successful mutation in the journal
	JournalEnabled bool

	// Journal files older than this many days are removed at startup. Zero keeps everything
	JournalRetentionDays int

	// Re-read and re-parse every document after it has been renamed into place
	VerifyWrites bool

	// Upper bound on request bodies
	MaxBodyBytes int64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// One-shot modes, the process exits after the archive is written or restored
	ExportArchive string
	ImportArchive string

	Version string
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the process-wide arguments, created with defaults on first use.
func GetSettings() *Arguments {
	once.Do(func() {
		instance = Defaults()
	})
	return instance
}

// Defaults returns a fresh Arguments with the values the flags default to.
func Defaults() *Arguments {
	return &Arguments{
		DataDir:              "/data",
		Host:                 "0.0.0.0",
		Port:                 80,
		PrintToScreen:        true,
		VerifyWrites:         true,
		JournalRetentionDays: 30,
		MaxBodyBytes:         10 << 20,
		ReadTimeout:          30 * time.Second,
		WriteTimeout:         30 * time.Second,
		ShutdownTimeout:      10 * time.Second,
		Version:              "0.1.0",
	}
}
