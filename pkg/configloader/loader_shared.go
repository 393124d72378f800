package configloader

import (
	"os"
	"time"

	"github.com/hyp3rd/filesink"
)

// rawConfig mirrors the loadable subset of filesink.Config. Pointer fields
// distinguish "unset" from zero values so defaults survive partial documents.
type rawConfig struct {
	Path          string  `mapstructure:"path" yaml:"path"`
	QueueCapacity *int    `mapstructure:"queue_capacity" yaml:"queue_capacity"`
	FileMode      *uint32 `mapstructure:"file_mode" yaml:"file_mode"`
	Rolling       struct {
		FileSizeLimitBytes   *int64 `mapstructure:"file_size_limit_bytes" yaml:"file_size_limit_bytes"`
		RollToArchiveFolder  *bool  `mapstructure:"roll_to_archive_folder" yaml:"roll_to_archive_folder"`
		ArchiveFolderName    string `mapstructure:"archive_folder_name" yaml:"archive_folder_name"`
		RetentionDays        *int   `mapstructure:"retention_days" yaml:"retention_days"`
		AgeCheckSeconds      *int   `mapstructure:"age_check_seconds" yaml:"age_check_seconds"`
		RollOnStartup        *bool  `mapstructure:"roll_on_startup" yaml:"roll_on_startup"`
		FileNameFormat       string `mapstructure:"file_name_format" yaml:"file_name_format"`
		TimestampLayout      string `mapstructure:"timestamp_layout" yaml:"timestamp_layout"`
		MaxArchivedFiles     *int   `mapstructure:"max_archived_files" yaml:"max_archived_files"`
		FatalRetentionErrors *bool  `mapstructure:"fatal_retention_errors" yaml:"fatal_retention_errors"`
	} `mapstructure:"rolling" yaml:"rolling"`
}

func applyRaw(raw rawConfig) *filesink.Config {
	cfg := filesink.DefaultConfig()

	if raw.Path != "" {
		cfg.Path = raw.Path
	}

	if raw.QueueCapacity != nil {
		cfg.QueueCapacity = *raw.QueueCapacity
	}

	if raw.FileMode != nil {
		cfg.FileMode = os.FileMode(*raw.FileMode)
	}

	if raw.Rolling.FileSizeLimitBytes != nil {
		cfg.Rolling.FileSizeLimitBytes = *raw.Rolling.FileSizeLimitBytes
	}

	if raw.Rolling.RollToArchiveFolder != nil {
		cfg.Rolling.RollToArchiveFolder = *raw.Rolling.RollToArchiveFolder
	}

	if raw.Rolling.ArchiveFolderName != "" {
		cfg.Rolling.ArchiveFolderName = raw.Rolling.ArchiveFolderName
	}

	if raw.Rolling.RetentionDays != nil {
		cfg.Rolling.RetentionDays = *raw.Rolling.RetentionDays
	}

	if raw.Rolling.AgeCheckSeconds != nil {
		cfg.Rolling.AgeCheckInterval = time.Duration(*raw.Rolling.AgeCheckSeconds) * time.Second
	}

	if raw.Rolling.RollOnStartup != nil {
		cfg.Rolling.RollOnStartup = *raw.Rolling.RollOnStartup
	}

	if raw.Rolling.FileNameFormat != "" {
		cfg.Rolling.FileNameFormat = raw.Rolling.FileNameFormat
	}

	if raw.Rolling.TimestampLayout != "" {
		cfg.Rolling.TimestampLayout = raw.Rolling.TimestampLayout
	}

	if raw.Rolling.MaxArchivedFiles != nil {
		cfg.Rolling.MaxArchivedFiles = *raw.Rolling.MaxArchivedFiles
	}

	if raw.Rolling.FatalRetentionErrors != nil {
		cfg.Rolling.FatalRetentionErrors = *raw.Rolling.FatalRetentionErrors
	}

	return &cfg
}

func allKeys() []string {
	return []string{
		"path",
		"queue_capacity",
		"file_mode",
		"rolling.file_size_limit_bytes",
		"rolling.roll_to_archive_folder",
		"rolling.archive_folder_name",
		"rolling.retention_days",
		"rolling.age_check_seconds",
		"rolling.roll_on_startup",
		"rolling.file_name_format",
		"rolling.timestamp_layout",
		"rolling.max_archived_files",
		"rolling.fatal_retention_errors",
	}
}
