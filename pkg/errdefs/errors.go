package errdefs

import "errors"

var (
	// ErrNotFound signals that the requested object doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParameter signals that the user input is invalid.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrConflict signals that some internal state conflicts with the requested action
	// and can't be performed. A change in state should be able to clear this error.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is used to signify that the user is not authorized to perform a
	// specific action
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable signals that the requested action/subsystem is not available.
	ErrUnavailable = errors.New("unavailable")

	// ErrForbidden signals that the requested action cannot be performed under any circumstances.
	// When a ErrForbidden is returned, the caller should never retry the action.
	ErrForbidden = errors.New("forbidden")

	// ErrSystem signals that some internal error occurred.
	// An example of this would be a failed mount request.
	ErrSystem = errors.New("system error")

	// ErrNotImplemented signals that the requested action/feature is not implemented on the system as configured.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnknown signals that the kind of error that occurred is not known.
	ErrUnknown = errors.New("unknown error")

	// ErrCanceled signals that the action was canceled.
	ErrCanceled = errors.New("canceled")

	// ErrDeadlineExceeded signals that the deadline was reached before the action completed.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrDataLoss indicates that data was lost or there is data corruption.
	ErrDataLoss = errors.New("data loss")

	// ErrAlreadyExists signals that resources is already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupported indicates that the action was not supported.
	ErrUnsupported = errors.New("unsupported")

	// ErrUnsupportedVersion indicates that target version was not supported.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrInvalidReference signals that a container or layout reference string
	// could not be parsed.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidDigest signals that a digest string is malformed or uses an
	// unrecognized algorithm.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrBadCredentialFormat signals that a credential store entry or
	// credential helper response could not be parsed.
	ErrBadCredentialFormat = errors.New("bad credential format")

	// ErrDigestMismatch signals that content read back from storage or the
	// wire did not hash to the digest it was addressed by.
	ErrDigestMismatch = errors.New("digest mismatch")

	// ErrProtocol signals a malformed or unexpected server response: a bad
	// WWW-Authenticate header, an unexpected status code, a missing Location.
	ErrProtocol = errors.New("protocol error")

	// ErrCredentialHelperFailed signals that a credential helper subprocess
	// exited non-zero or could not be invoked.
	ErrCredentialHelperFailed = errors.New("credential helper failed")

	// ErrTagRequired signals that an operation needed a tag or digest on a
	// reference that carried neither.
	ErrTagRequired = errors.New("tag or digest required")

	// ErrLayoutNotADirectory signals that an OCI image layout root exists but
	// is not a directory.
	ErrLayoutNotADirectory = errors.New("layout root is not a directory")
)
