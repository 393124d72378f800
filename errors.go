package filesink

import (
	"github.com/hyp3rd/ewrap"
)

// Common errors for the filesink package.
var (
	// ErrSinkClosed is returned by Emit once shutdown has been initiated, and
	// by Close on every call after the first.
	ErrSinkClosed = ewrap.New("sink is closed")

	// ErrPathRequired is returned when a config has no output file path.
	ErrPathRequired = ewrap.New("output file path is required")

	// ErrFormatterRequired is returned when a config has no formatter.
	ErrFormatterRequired = ewrap.New("formatter is required")

	// ErrInvalidCapacity is returned when the queue capacity is not positive.
	ErrInvalidCapacity = ewrap.New("queue capacity must be greater than zero")

	// ErrInvalidAgeCheckInterval is returned when the retention sweep interval
	// is not positive.
	ErrInvalidAgeCheckInterval = ewrap.New("age check interval must be greater than zero")

	// ErrInvalidRetention is returned when the retention window is negative.
	ErrInvalidRetention = ewrap.New("rolling retention days must not be negative")

	// ErrInvalidFileNameFormat is returned when the archive file name format
	// has no {timestamp} placeholder, which would make every roll collide.
	ErrInvalidFileNameFormat = ewrap.New("file name format must contain the {timestamp} placeholder")
)
