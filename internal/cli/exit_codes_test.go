package cli

import (
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shipnote/shipnote/internal/bump"
	"github.com/shipnote/shipnote/internal/errors"
	"github.com/shipnote/shipnote/internal/gitrepo"
	"github.com/shipnote/shipnote/internal/publish"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"nil error": {
			err:  nil,
			want: ExitSuccess,
		},
		"publish step failure": {
			err:  &publish.StepError{Step: publish.StepTagPush, Err: goerrors.New("remote rejected")},
			want: ExitPublishFailed,
		},
		"wrapped publish step failure": {
			err:  fmt.Errorf("release: %w", &publish.StepError{Step: publish.StepReleaseCreate, Err: goerrors.New("503")}),
			want: ExitPublishFailed,
		},
		"no tag found": {
			err:  gitrepo.ErrNoTagFound,
			want: ExitHistoryError,
		},
		"history unavailable": {
			err:  fmt.Errorf("open: %w", gitrepo.ErrHistoryUnavailable),
			want: ExitHistoryError,
		},
		"invalid base version": {
			err:  &bump.ErrInvalidBaseVersion{Tag: "v1.x.0", Err: goerrors.New("parse")},
			want: ExitHistoryError,
		},
		"config cli error": {
			err:  errors.NewConfigError("bad config"),
			want: ExitConfigError,
		},
		"history cli error": {
			err:  errors.Wrap(goerrors.New("boom"), errors.History),
			want: ExitHistoryError,
		},
		"plain error defaults to invalid arguments": {
			err:  goerrors.New("unknown flag"),
			want: ExitInvalidArguments,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestDress(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want errors.ErrorCategory
	}{
		"publish step failure": {
			err:  &publish.StepError{Step: publish.StepTagCreate, Err: goerrors.New("exists")},
			want: errors.Publish,
		},
		"no tag": {
			err:  gitrepo.ErrNoTagFound,
			want: errors.History,
		},
		"history unavailable": {
			err:  gitrepo.ErrHistoryUnavailable,
			want: errors.History,
		},
		"invalid base": {
			err:  &bump.ErrInvalidBaseVersion{Tag: "vNaN", Err: goerrors.New("parse")},
			want: errors.Version,
		},
		"anything else": {
			err:  goerrors.New("unknown flag"),
			want: errors.Argument,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dressed := dress(tt.err)
			assert.Equal(t, tt.want, dressed.Category)
		})
	}
}
