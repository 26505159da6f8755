package errors

import "fmt"

// Common error types.
var (
	// Argument errors.
	ErrBadArgument      = fmt.Errorf("bad argument")
	ErrRelativeURLEmpty = fmt.Errorf("relative URL cannot be empty")
	ErrBadRepoType      = fmt.Errorf("bad repo type")
	ErrInvalidPath      = fmt.Errorf("invalid path")

	// Download errors.
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrChecksumMismatch = fmt.Errorf("checksum mismatch")
	ErrUnknownAlgorithm = fmt.Errorf("unknown checksum algorithm")
	ErrSizeExceeded     = fmt.Errorf("response exceeds expected size")

	// Mirrorlist errors.
	ErrNoMirrors            = fmt.Errorf("no usable mirrors")
	ErrMirrorlistUnreadable = fmt.Errorf("failed to fetch mirrorlist")

	// Interrupt errors.
	ErrSignalSetup = fmt.Errorf("cannot install interrupt handler")
	ErrInterrupted = fmt.Errorf("interrupted by a SIGINT signal")

	// Config errors.
	ErrEmptyConfigPath  = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse      = fmt.Errorf("failed to parse config")
	ErrConfigValidation = fmt.Errorf("invalid configuration")
	ErrConfigEncode     = fmt.Errorf("failed to encode config")
	ErrVersionTooOld    = fmt.Errorf("client version is older than required version")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
