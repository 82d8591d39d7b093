package uploader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed remote interaction. Classification happens
// at the transfer boundary; the orchestrator only branches on the kind.
type ErrorKind string

const (
	// KindQuotaExceeded halts the remaining batch as skipped: the remote
	// side will reject every subsequent attempt identically.
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	// KindAuth aborts the whole run: no later attempt can succeed either.
	KindAuth ErrorKind = "auth"
	// KindTransient is an ordinary per-item failure, eligible for retry on
	// the next run.
	KindTransient ErrorKind = "transient"
	// KindFatal is a per-item failure unlikely to heal on retry.
	KindFatal ErrorKind = "fatal"
)

// TransferError is the tagged failure result of a remote call.
type TransferError struct {
	Kind    ErrorKind
	Message string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed (%s): %s", e.Kind, e.Message)
}

// ErrBatchAborted wraps the condition that ended a run early.
var ErrBatchAborted = errors.New("batch aborted")

// KindOf extracts the classification from err, falling back to message
// hints for errors that arrive unwrapped from the transport stack.
func KindOf(err error) ErrorKind {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Kind
	}

	text := strings.ToLower(err.Error())
	quotaHints := []string{
		"uploadlimitexceeded",
		"exceeded the number of videos",
		"quotaexceeded",
		"dailylimitexceeded",
	}
	for _, h := range quotaHints {
		if strings.Contains(text, h) {
			return KindQuotaExceeded
		}
	}
	authHints := []string{
		"invalid_grant",
		"invalid credentials",
		"unauthorized",
		"autherror",
	}
	for _, h := range authHints {
		if strings.Contains(text, h) {
			return KindAuth
		}
	}
	transientHints := []string{
		"429",
		"too many requests",
		"rate limit",
		"timed out",
		"timeout",
		"temporarily unavailable",
		"connection reset",
		"service unavailable",
		"network is unreachable",
		"http error 5",
		"backend error",
	}
	for _, h := range transientHints {
		if strings.Contains(text, h) {
			return KindTransient
		}
	}
	return KindFatal
}
