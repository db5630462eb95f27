package apperrors

import (
	"errors"
	"fmt"
)

// Pipeline errors represent failures while turning the remote artifact into a payload.
// Every error leaving the decode pipeline wraps exactly one of these.
var (
	// ErrNetwork indicates that the artifact could not be downloaded (transport failure or non-2xx status).
	ErrNetwork = errors.New("network error")

	// ErrMalformedArtifact indicates that the artifact text is not valid base64 or is too short
	// to hold an IV and an authentication tag.
	ErrMalformedArtifact = errors.New("malformed artifact")

	// ErrDecryption indicates an authentication tag mismatch or corrupted ciphertext.
	ErrDecryption = errors.New("decryption failed")

	// ErrDecompression indicates that the decrypted bytes are not a valid gzip stream.
	ErrDecompression = errors.New("decompression failed")

	// ErrParse indicates that the decompressed bytes are not the expected JSON document.
	ErrParse = errors.New("parse failed")

	// ErrCache indicates that the persistent cache is unavailable or returned corrupted data.
	// Callers degrade to a cache miss.
	ErrCache = errors.New("cache error")

	// ErrDataUnavailable indicates that no fund data could be loaded at all.
	ErrDataUnavailable = errors.New("fund data unavailable")
)

// Record errors represent data quality and programmer errors in the record builder.
var (
	// ErrMalformedRow indicates that a positional row has the wrong arity or a field of the wrong type.
	ErrMalformedRow = errors.New("malformed row")

	// ErrNilRecordSet indicates that a nil payload or record set was passed to the builder.
	ErrNilRecordSet = errors.New("nil record set")
)

// Lookup and validation errors.
var (
	// ErrFundNotFound indicates that no fund matches the requested slug or symbol.
	ErrFundNotFound = errors.New("fund not found")

	// ErrInvalidSetting indicates that a runtime setting value was rejected.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrSettingNotFound indicates that a setting has never been persisted.
	ErrSettingNotFound = errors.New("setting not found")
)

// FetchError describes a failed download. It matches ErrNetwork with errors.Is.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNetwork.
func (e *FetchError) Is(target error) bool {
	return target == ErrNetwork
}
