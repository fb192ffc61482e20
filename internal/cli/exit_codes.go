package cli

import (
	goerrors "errors"

	"github.com/shipnote/shipnote/internal/bump"
	"github.com/shipnote/shipnote/internal/errors"
	"github.com/shipnote/shipnote/internal/gitrepo"
	"github.com/shipnote/shipnote/internal/publish"
)

// Exit codes for the shipnote CLI. These support programmatic composition
// and CI integration. "Nothing to release" exits 0: it is a normal outcome,
// not a failure.
const (
	// ExitSuccess indicates a full publish or a clean no-changes exit.
	ExitSuccess = 0

	// ExitHistoryError indicates tags or commits could not be read, or the
	// base tag did not parse as a version.
	ExitHistoryError = 1

	// ExitPublishFailed indicates a publish step failed; compensation has
	// restored the pre-run state.
	ExitPublishFailed = 2

	// ExitInvalidArguments indicates invalid command arguments.
	ExitInvalidArguments = 3

	// ExitConfigError indicates the configuration could not be loaded.
	ExitConfigError = 4
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var stepErr *publish.StepError
	if goerrors.As(err, &stepErr) {
		return ExitPublishFailed
	}

	var invalidBase *bump.ErrInvalidBaseVersion
	if goerrors.Is(err, gitrepo.ErrNoTagFound) ||
		goerrors.Is(err, gitrepo.ErrHistoryUnavailable) ||
		goerrors.As(err, &invalidBase) {
		return ExitHistoryError
	}

	if cliErr := errors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case errors.Configuration:
			return ExitConfigError
		case errors.Publish:
			return ExitPublishFailed
		case errors.History, errors.Version:
			return ExitHistoryError
		}
	}

	return ExitInvalidArguments
}
