package filesink

import (
	"os"
	"strings"
	"time"
)

const (
	// DefaultQueueCapacity is the default bound of the event queue.
	DefaultQueueCapacity = 65536
	// DefaultFileMode sets the permissions for created output files.
	DefaultFileMode = os.FileMode(0o644)
	// DefaultArchiveFolderName is the default archive subdirectory name.
	DefaultArchiveFolderName = "archive"
	// DefaultFileNameFormat is the default template for archived file names.
	DefaultFileNameFormat = "{name}-{timestamp}{ext}"
	// DefaultTimestampLayout formats the roll timestamp in archive names.
	DefaultTimestampLayout = "2006-01-02T15-04-05"
	// DefaultAgeCheckInterval is the default retention sweep period.
	DefaultAgeCheckInterval = time.Minute

	hoursPerDay = 24
)

// RollingConfig controls size-based rolling and age-based retention.
// It is immutable after sink construction; one instance per sink.
type RollingConfig struct {
	// FileSizeLimitBytes is the size at which the active file is rolled.
	// Zero disables size rolling.
	FileSizeLimitBytes int64
	// RollToArchiveFolder places rolled files under ArchiveFolderName inside
	// the output directory instead of next to the active file.
	RollToArchiveFolder bool
	// ArchiveFolderName names the archive subdirectory.
	ArchiveFolderName string
	// RetentionDays is the age in days past which archived files are deleted.
	// Zero makes archived files immediately eligible for deletion.
	RetentionDays int
	// AgeCheckInterval is the period of the retention sweeper.
	AgeCheckInterval time.Duration
	// RollOnStartup rolls a pre-existing file at the output path once during
	// sink construction, before any new record is written.
	RollOnStartup bool
	// FileNameFormat is the template for archived file names. It consumes the
	// placeholders {timestamp}, {name} (base name without extension) and
	// {ext} (extension including its dot).
	FileNameFormat string
	// TimestampLayout is the time layout used for {timestamp}.
	TimestampLayout string
	// MaxArchivedFiles keeps at most this many archived files, deleting the
	// oldest beyond the limit on each sweep. Zero means no limit.
	MaxArchivedFiles int
	// FatalRetentionErrors stops the retention sweeper permanently after a
	// delete failure instead of retrying on the next tick. The failure is
	// reported through diagnostics either way.
	FatalRetentionErrors bool
}

// Config holds the full configuration for a Sink.
type Config struct {
	// Path is the active output file path.
	Path string
	// QueueCapacity bounds the event queue. Producers block while it is full.
	QueueCapacity int
	// Formatter renders records to the active file.
	Formatter Formatter
	// FileMode sets the permissions for created output files.
	FileMode os.FileMode
	// Rolling controls rolling and retention.
	Rolling RollingConfig
	// Diagnostics receives non-fatal human-readable event lines. Optional.
	Diagnostics DiagnosticHandler
	// MetricsReporter receives metrics snapshots. Optional.
	MetricsReporter MetricsReporter
}

// DefaultConfig returns a Config with defaults applied for everything except
// Path and Formatter, which have no usable defaults.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: DefaultQueueCapacity,
		FileMode:      DefaultFileMode,
		Rolling: RollingConfig{
			ArchiveFolderName: DefaultArchiveFolderName,
			FileNameFormat:    DefaultFileNameFormat,
			TimestampLayout:   DefaultTimestampLayout,
			AgeCheckInterval:  DefaultAgeCheckInterval,
		},
	}
}

// withDefaults fills zero values with their defaults without touching fields
// the caller set explicitly.
func (c Config) withDefaults() Config {
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}

	if c.FileMode == 0 {
		c.FileMode = DefaultFileMode
	}

	if c.Rolling.ArchiveFolderName == "" {
		c.Rolling.ArchiveFolderName = DefaultArchiveFolderName
	}

	if c.Rolling.FileNameFormat == "" {
		c.Rolling.FileNameFormat = DefaultFileNameFormat
	}

	if c.Rolling.TimestampLayout == "" {
		c.Rolling.TimestampLayout = DefaultTimestampLayout
	}

	if c.Rolling.AgeCheckInterval == 0 {
		c.Rolling.AgeCheckInterval = DefaultAgeCheckInterval
	}

	return c
}

// Validate checks the configuration for values the sink cannot operate with.
func (c Config) Validate() error {
	if c.Path == "" {
		return ErrPathRequired
	}

	if c.Formatter == nil {
		return ErrFormatterRequired
	}

	if c.QueueCapacity <= 0 {
		return ErrInvalidCapacity
	}

	if c.Rolling.AgeCheckInterval <= 0 {
		return ErrInvalidAgeCheckInterval
	}

	if c.Rolling.RetentionDays < 0 {
		return ErrInvalidRetention
	}

	if !strings.Contains(c.Rolling.FileNameFormat, "{timestamp}") {
		return ErrInvalidFileNameFormat
	}

	return nil
}
