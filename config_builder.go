package filesink

import (
	"os"
	"time"
)

// ConfigBuilder provides a fluent API for constructing sink configurations.
// It allows for more readable and chainable configuration setup.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new builder with sensible defaults.
// This is the entry point for the fluent configuration API.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: DefaultConfig(),
	}
}

// WithPath sets the active output file path.
func (b *ConfigBuilder) WithPath(path string) *ConfigBuilder {
	b.config.Path = path

	return b
}

// WithQueueCapacity sets the bound of the event queue.
func (b *ConfigBuilder) WithQueueCapacity(capacity int) *ConfigBuilder {
	b.config.QueueCapacity = capacity

	return b
}

// WithFormatter sets the record formatter.
func (b *ConfigBuilder) WithFormatter(formatter Formatter) *ConfigBuilder {
	b.config.Formatter = formatter

	return b
}

// WithFileMode sets the permissions used for created output files.
func (b *ConfigBuilder) WithFileMode(mode os.FileMode) *ConfigBuilder {
	b.config.FileMode = mode

	return b
}

// WithDiagnostics sets the handler receiving non-fatal diagnostic lines.
func (b *ConfigBuilder) WithDiagnostics(handler DiagnosticHandler) *ConfigBuilder {
	b.config.Diagnostics = handler

	return b
}

// WithMetricsReporter sets the handler receiving metrics snapshots.
func (b *ConfigBuilder) WithMetricsReporter(reporter MetricsReporter) *ConfigBuilder {
	b.config.MetricsReporter = reporter

	return b
}

// WithFileSizeLimit enables size-based rolling once the active file reaches
// the given number of bytes. Zero disables size rolling.
func (b *ConfigBuilder) WithFileSizeLimit(limitBytes int64) *ConfigBuilder {
	b.config.Rolling.FileSizeLimitBytes = limitBytes

	return b
}

// WithArchiveFolder places rolled files in the named subdirectory of the
// output directory.
func (b *ConfigBuilder) WithArchiveFolder(name string) *ConfigBuilder {
	b.config.Rolling.RollToArchiveFolder = true
	if name != "" {
		b.config.Rolling.ArchiveFolderName = name
	}

	return b
}

// WithRetentionDays sets the age in days past which archived files are
// deleted. Zero makes archived files immediately eligible.
func (b *ConfigBuilder) WithRetentionDays(days int) *ConfigBuilder {
	b.config.Rolling.RetentionDays = days

	return b
}

// WithAgeCheckInterval sets the retention sweep period.
func (b *ConfigBuilder) WithAgeCheckInterval(interval time.Duration) *ConfigBuilder {
	b.config.Rolling.AgeCheckInterval = interval

	return b
}

// WithRollOnStartup rolls a pre-existing output file once during sink
// construction.
func (b *ConfigBuilder) WithRollOnStartup() *ConfigBuilder {
	b.config.Rolling.RollOnStartup = true

	return b
}

// WithFileNameFormat sets the archive name template. The template consumes
// the placeholders {timestamp}, {name} and {ext}.
func (b *ConfigBuilder) WithFileNameFormat(format string) *ConfigBuilder {
	b.config.Rolling.FileNameFormat = format

	return b
}

// WithTimestampLayout sets the time layout used for {timestamp}.
func (b *ConfigBuilder) WithTimestampLayout(layout string) *ConfigBuilder {
	b.config.Rolling.TimestampLayout = layout

	return b
}

// WithMaxArchivedFiles keeps at most the given number of archived files.
func (b *ConfigBuilder) WithMaxArchivedFiles(limit int) *ConfigBuilder {
	b.config.Rolling.MaxArchivedFiles = limit

	return b
}

// WithFatalRetentionErrors stops the retention sweeper permanently after a
// delete failure instead of retrying on the next tick.
func (b *ConfigBuilder) WithFatalRetentionErrors() *ConfigBuilder {
	b.config.Rolling.FatalRetentionErrors = true

	return b
}

// Build finalizes the configuration, applying defaults and validating it.
func (b *ConfigBuilder) Build() (Config, error) {
	cfg := b.config.withDefaults()

	err := cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}
