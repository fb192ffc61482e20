// Package pipeline wires the release stages together: read history, compute
// the next version, classify commits, resolve contributors, build the
// document, and publish. Planning is read-only; publishing is the only phase
// that writes anywhere.
package pipeline

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/shipnote/shipnote/internal/bump"
	"github.com/shipnote/shipnote/internal/classify"
	"github.com/shipnote/shipnote/internal/forge"
	"github.com/shipnote/shipnote/internal/gitrepo"
	"github.com/shipnote/shipnote/internal/notes"
	"github.com/shipnote/shipnote/internal/publish"
	"github.com/shipnote/shipnote/internal/resolve"
)

// History is the commit/tag source for planning.
type History interface {
	LatestVersionTag() (*semver.Version, string, error)
	CommitsSince(tagName string) ([]gitrepo.Commit, error)
	TagPrefix() string
}

// ContributorResolver resolves pull requests and handles per commit.
type ContributorResolver interface {
	All(ctx context.Context, commits []gitrepo.Commit) []resolve.Resolution
}

// Publisher runs the write phase.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (*forge.Release, error)
}

// Pipeline executes one release run.
type Pipeline struct {
	history   History
	resolver  ContributorResolver
	publisher Publisher
	log       *log.Logger
}

// New creates a Pipeline.
func New(history History, resolver ContributorResolver, publisher Publisher) *Pipeline {
	return &Pipeline{
		history:   history,
		resolver:  resolver,
		publisher: publisher,
		log:       log.WithPrefix("pipeline"),
	}
}

// Plan is the read-only result of the front half of the pipeline: everything
// needed to publish, and everything needed to preview without publishing.
type Plan struct {
	BaseTag     string
	BaseVersion *semver.Version
	NextVersion *semver.Version
	TagName     string
	Kind        bump.Kind
	CommitCount int
	Document    *notes.Document
	Body        string
}

// BuildPlan computes the next version and the rendered release document. It
// performs no writes. Returns notes.ErrNoChanges when there is nothing to
// release, gitrepo.ErrNoTagFound when no base tag exists, and
// bump.ErrInvalidBaseVersion via the tag parse when the base tag is
// malformed.
func (p *Pipeline) BuildPlan(ctx context.Context) (*Plan, error) {
	base, baseTag, err := p.history.LatestVersionTag()
	if err != nil {
		return nil, err
	}
	p.log.Debug("base release", "tag", baseTag)

	commits, err := p.history.CommitsSince(baseTag)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, notes.ErrNoChanges
	}

	// Bump detection and classification are independent passes over the
	// same commit list, in the same traversal order.
	var (
		kind    bump.Kind
		entries = make([]classify.Entry, len(commits))
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		subjects := make([]string, len(commits))
		for i, c := range commits {
			subjects[i] = c.Subject
		}
		kind = bump.Resolve(subjects)
		return nil
	})
	g.Go(func() error {
		for i, c := range commits {
			entries[i] = classify.Classify(c.Subject)
		}
		return nil
	})
	_ = g.Wait() // both passes are pure and never fail

	resolutions := p.resolver.All(ctx, commits)
	handles := make([]string, len(resolutions))
	for i, res := range resolutions {
		entries[i].Ref = classify.FormatRef(res.PRNumber, commits[i].Hash)
		handles[i] = res.Contributor
	}

	doc, err := notes.Build(entries, handles)
	if err != nil {
		return nil, err
	}
	body, err := notes.RenderMarkdownString(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering release notes: %w", err)
	}

	next := bump.Next(base, kind)
	plan := &Plan{
		BaseTag:     baseTag,
		BaseVersion: base,
		NextVersion: next,
		TagName:     bump.FormatTag(next, p.history.TagPrefix()),
		Kind:        kind,
		CommitCount: len(commits),
		Document:    doc,
		Body:        body,
	}
	p.log.Debug("plan built", "next", plan.TagName, "bump", kind.String(), "commits", len(commits))
	return plan, nil
}

// Publish executes the write phase for a prepared plan. The release title is
// "Release <tag>".
func (p *Pipeline) Publish(ctx context.Context, plan *Plan, draft bool) (*forge.Release, error) {
	return p.publisher.Publish(ctx, publish.Request{
		TagName: plan.TagName,
		Title:   "Release " + plan.TagName,
		Body:    plan.Body,
		Draft:   draft,
	})
}
