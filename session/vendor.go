// Package session drives one vendor feed session through its
// documented state machine, applying the retry, timeout, and
// skip-files policies the vendor's call surface requires.
package session

import "context"

// ResultCode is a vendor call's numeric return code. Only a subset is
// documented (see the constants below); anything else is treated as
// fatal.
type ResultCode int

const (
	CodeOK                  ResultCode = 0
	CodeDataBoundary        ResultCode = -1
	CodeFileNotYetDelivered ResultCode = -3
	CodeAuthNotSet          ResultCode = -100
	CodeUnsupportedSpec     ResultCode = -116
	CodeOtherSetupError     ResultCode = -203
	CodeAuthUnknownKey      ResultCode = -301
	CodeCorruptFileA        ResultCode = -402
	CodeCorruptFileB        ResultCode = -403
	CodeRateLimit           ResultCode = -421
	CodeDownloadFailed      ResultCode = -502
	CodeServerError         ResultCode = -503
)

// OpenResult is the out-parameter set of Vendor.Open.
type OpenResult struct {
	Code           ResultCode
	ReadCount      int
	DownloadCount  int
	LastFileTS     string
}

// ReadResult is the out-parameter set of Vendor.ReadRecord. Code
// follows the vendor's convention: >0 is the record length just
// copied into the buffer, 0 is end-of-stream, -1 is a file boundary,
// other negatives are documented error codes.
type ReadResult struct {
	Code     ResultCode
	Bytes    []byte
	FileName string
}

// Vendor is the opaque call surface the session manager drives. A real
// implementation wraps the platform-native in-process object; tests
// and simulations substitute an in-memory fake.
type Vendor interface {
	Initialise(ctx context.Context, serviceKey string) (ResultCode, error)
	Open(ctx context.Context, dataSpec string, fromTime string, option int) (OpenResult, error)
	RealTimeOpen(ctx context.Context, dataSpec string, key string) (OpenResult, error)
	Status(ctx context.Context) (ResultCode, error)
	ReadRecord(ctx context.Context, bufferSize int) (ReadResult, error)
	Skip(ctx context.Context) error
	FileDelete(ctx context.Context, fileName string) (ResultCode, error)
	Close(ctx context.Context) (ResultCode, error)
}

// Retryable reports whether a documented result code should be
// retried under the session manager's backoff policy, per SPEC_FULL.md
// §6.1's vendor-transport-error classification.
func (c ResultCode) Retryable() bool {
	switch c {
	case CodeOtherSetupError, CodeRateLimit, CodeDownloadFailed, CodeServerError:
		return true
	default:
		return false
	}
}

// Fatal reports whether a documented result code must never be
// retried: the two auth failures and the unsupported data-spec code.
func (c ResultCode) Fatal() bool {
	switch c {
	case CodeAuthNotSet, CodeUnsupportedSpec, CodeAuthUnknownKey:
		return true
	default:
		return false
	}
}

// Recoverable reports whether a read_record code names a damaged file
// the manager should delete and continue past, rather than treat as a
// transport failure.
func (c ResultCode) Recoverable() bool {
	return c == CodeCorruptFileA || c == CodeCorruptFileB
}
