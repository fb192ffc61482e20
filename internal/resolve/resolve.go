// Package resolve looks up the pull request and contributor handle for each
// commit in a release range. Lookups hit the forge API, so they run across a
// bounded worker pool; every result is indexed back to its commit so callers
// keep the original traversal order. All lookup failures are non-fatal and
// fall through the precedence chain.
package resolve

import (
	"context"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/shipnote/shipnote/internal/gitrepo"
)

// Forge is the subset of the forge client the resolver needs.
type Forge interface {
	PullRequestForCommit(ctx context.Context, sha string) (int, error)
	PullRequestAuthor(ctx context.Context, number int) (string, error)
}

// Resolution is the per-commit lookup outcome. PRNumber is 0 when no pull
// request was found; Contributor is never empty (the raw author name is the
// final fallback).
type Resolution struct {
	PRNumber    int
	Contributor string
}

// Resolver resolves commits concurrently against a forge.
type Resolver struct {
	forge       Forge
	concurrency int
	timeout     time.Duration
	log         *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency bounds the worker pool (default 4).
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n >= 1 {
			r.concurrency = n
		}
	}
}

// WithTimeout bounds each per-commit lookup (default 30s). On timeout the
// lookup is treated as "not found", same as an explicit failure.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) { r.log = logger }
}

// New creates a Resolver over the given forge.
func New(forge Forge, opts ...Option) *Resolver {
	r := &Resolver{
		forge:       forge,
		concurrency: 4,
		timeout:     30 * time.Second,
		log:         log.WithPrefix("resolve"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// noReplyPattern matches the VCS-native no-reply address forms
// <id>+<handle>@users.noreply.<host> and <handle>@users.noreply.<host>.
var noReplyPattern = regexp.MustCompile(`^(?:\d+\+)?([A-Za-z0-9-]+)@users\.noreply\.`)

// HandleFromNoReply extracts the handle embedded in a no-reply author email.
// It returns "" when the email does not match the pattern. No network call
// is involved.
func HandleFromNoReply(email string) string {
	if m := noReplyPattern.FindStringSubmatch(email); m != nil {
		return m[1]
	}
	return ""
}

// All resolves every commit and returns results indexed by the commit's
// position in the input. Commits are processed concurrently; the output
// order is the input order.
func (r *Resolver) All(ctx context.Context, commits []gitrepo.Commit) []Resolution {
	results := make([]Resolution, len(commits))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, c := range commits {
		i, c := i, c
		g.Go(func() error {
			results[i] = r.one(ctx, c)
			return nil
		})
	}

	// Workers never return errors: lookup failures degrade to fallbacks.
	_ = g.Wait()
	return results
}

// one resolves a single commit. The pull request number is looked up for the
// reference suffix regardless of how the contributor resolves; the
// contributor precedence is no-reply email, then PR author, then the raw
// author name from history.
func (r *Resolver) one(ctx context.Context, c gitrepo.Commit) Resolution {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pr, err := r.forge.PullRequestForCommit(lookupCtx, c.Hash)
	if err != nil {
		r.log.Debug("pull request lookup failed", "hash", c.Hash, "err", err)
		pr = 0
	}

	res := Resolution{PRNumber: pr}

	if handle := HandleFromNoReply(c.AuthorEmail); handle != "" {
		res.Contributor = handle
		return res
	}

	if pr > 0 {
		login, err := r.forge.PullRequestAuthor(lookupCtx, pr)
		if err == nil && login != "" {
			res.Contributor = login
			return res
		}
		if err != nil {
			r.log.Debug("pull request author lookup failed", "pr", pr, "err", err)
		}
	}

	res.Contributor = c.AuthorName
	return res
}
