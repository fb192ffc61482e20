package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipnote/shipnote/internal/forge"
	"github.com/shipnote/shipnote/internal/gitrepo"
	"github.com/shipnote/shipnote/internal/notes"
	"github.com/shipnote/shipnote/internal/publish"
	"github.com/shipnote/shipnote/internal/resolve"
)

type fakeHistory struct {
	base    string
	baseTag string
	tagErr  error
	commits []gitrepo.Commit
	logErr  error
}

func (f *fakeHistory) LatestVersionTag() (*semver.Version, string, error) {
	if f.tagErr != nil {
		return nil, "", f.tagErr
	}
	return semver.MustParse(f.base), f.baseTag, nil
}

func (f *fakeHistory) CommitsSince(string) ([]gitrepo.Commit, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	return f.commits, nil
}

func (f *fakeHistory) TagPrefix() string { return "v" }

type fakeResolver struct {
	resolutions []resolve.Resolution
}

func (f *fakeResolver) All(_ context.Context, commits []gitrepo.Commit) []resolve.Resolution {
	if f.resolutions != nil {
		return f.resolutions
	}
	out := make([]resolve.Resolution, len(commits))
	for i, c := range commits {
		out[i] = resolve.Resolution{Contributor: c.AuthorName}
	}
	return out
}

type fakePublisher struct {
	err error
	got []publish.Request
}

func (f *fakePublisher) Publish(_ context.Context, req publish.Request) (*forge.Release, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = append(f.got, req)
	return &forge.Release{TagName: req.TagName, Draft: req.Draft}, nil
}

func commitList(subjects ...string) []gitrepo.Commit {
	var out []gitrepo.Commit
	for i, s := range subjects {
		out = append(out, gitrepo.Commit{
			Hash:        "0123456789abcdef0123456789abcdef0123456" + string(rune('0'+i)),
			Subject:     s,
			AuthorName:  "Alice",
			AuthorEmail: "alice@example.com",
		})
	}
	return out
}

func TestBuildPlan_FeatureAndFix(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{
		base:    "1.2.3",
		baseTag: "v1.2.3",
		commits: commitList("feat: add export", "fix: crash on save"),
	}
	p := New(history, &fakeResolver{
		resolutions: []resolve.Resolution{
			{PRNumber: 10, Contributor: "alice"},
			{PRNumber: 11, Contributor: "bob"},
		},
	}, &fakePublisher{})

	plan, err := p.BuildPlan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v1.3.0", plan.TagName)
	assert.Equal(t, "1.3.0", plan.NextVersion.String())
	assert.Equal(t, 2, plan.CommitCount)
	require.Len(t, plan.Document.Features, 1)
	require.Len(t, plan.Document.Fixes, 1)
	assert.Equal(t, " (#10)", plan.Document.Features[0].Ref)
	assert.Equal(t, []string{"alice", "bob"}, plan.Document.Contributors)
	assert.Contains(t, plan.Body, "### Features\n- add export (#10)")
	assert.Contains(t, plan.Body, "### Bug Fixes\n- crash on save (#11)")
}

func TestBuildPlan_BreakingChange(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{
		base:    "1.2.3",
		baseTag: "v1.2.3",
		commits: commitList("fix!: drop legacy field"),
	}
	p := New(history, &fakeResolver{}, &fakePublisher{})

	plan, err := p.BuildPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", plan.TagName)
}

func TestBuildPlan_UnrecognizedPrefixIsPatch(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{
		base:    "1.2.3",
		baseTag: "v1.2.3",
		commits: commitList("chore: bump deps"),
	}
	p := New(history, &fakeResolver{}, &fakePublisher{})

	plan, err := p.BuildPlan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "v1.2.4", plan.TagName)
	require.Len(t, plan.Document.Other, 1)
	assert.Equal(t, "chore: bump deps", plan.Document.Other[0].Text)
	// Short-hash reference because no PR resolved.
	assert.Contains(t, plan.Document.Other[0].Ref, " (0123456")
}

func TestBuildPlan_NoCommits(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{base: "1.2.3", baseTag: "v1.2.3"}
	p := New(history, &fakeResolver{}, &fakePublisher{})

	_, err := p.BuildPlan(context.Background())
	assert.ErrorIs(t, err, notes.ErrNoChanges)
}

func TestBuildPlan_NoTag(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{tagErr: gitrepo.ErrNoTagFound}
	p := New(history, &fakeResolver{}, &fakePublisher{})

	_, err := p.BuildPlan(context.Background())
	assert.ErrorIs(t, err, gitrepo.ErrNoTagFound)
}

func TestBuildPlan_HistoryUnavailable(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{
		base:    "1.2.3",
		baseTag: "v1.2.3",
		logErr:  gitrepo.ErrHistoryUnavailable,
	}
	p := New(history, &fakeResolver{}, &fakePublisher{})

	_, err := p.BuildPlan(context.Background())
	assert.ErrorIs(t, err, gitrepo.ErrHistoryUnavailable)
}

func TestPublish_UsesPlanAndTitle(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{
		base:    "1.2.3",
		baseTag: "v1.2.3",
		commits: commitList("feat: add export"),
	}
	pub := &fakePublisher{}
	p := New(history, &fakeResolver{}, pub)

	plan, err := p.BuildPlan(context.Background())
	require.NoError(t, err)

	rel, err := p.Publish(context.Background(), plan, true)
	require.NoError(t, err)
	assert.Equal(t, "v1.3.0", rel.TagName)

	require.Len(t, pub.got, 1)
	assert.Equal(t, "Release v1.3.0", pub.got[0].Title)
	assert.Equal(t, plan.Body, pub.got[0].Body)
	assert.True(t, pub.got[0].Draft)
}

func TestPublish_PropagatesStepError(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{
		base:    "1.2.3",
		baseTag: "v1.2.3",
		commits: commitList("feat: add export"),
	}
	stepErr := &publish.StepError{Step: publish.StepTagPush, Err: errors.New("remote rejected")}
	p := New(history, &fakeResolver{}, &fakePublisher{err: stepErr})

	plan, err := p.BuildPlan(context.Background())
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), plan, true)
	var got *publish.StepError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, publish.StepTagPush, got.Step)
}
