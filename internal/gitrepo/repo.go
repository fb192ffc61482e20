// Package gitrepo reads commit history and manages version tags through the
// go-git library, so the tool works without a git CLI installation. It is
// the history provider for the release pipeline: latest version tag, commits
// since that tag, and local/remote tag lifecycle for publishing.
package gitrepo

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/shipnote/shipnote/internal/bump"
)

// ErrNoTagFound indicates the repository has no tag parseable as a release
// version. Bootstrapping the first release tag is out of scope; at least one
// prior release must exist.
var ErrNoTagFound = errors.New("no version tag found")

// ErrHistoryUnavailable indicates the underlying repository could not be
// read at all, as opposed to being readable but missing a tag.
var ErrHistoryUnavailable = errors.New("commit history unavailable")

// Commit is one history entry. Identity is the full 40-hex hash.
type Commit struct {
	Hash        string
	Subject     string
	AuthorName  string
	AuthorEmail string
}

// Repository wraps an opened git repository.
type Repository struct {
	repo      *git.Repository
	remote    string
	tagPrefix string
	log       *log.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithRemote sets the remote used for pushing and deleting tags.
func WithRemote(name string) Option {
	return func(r *Repository) {
		if name != "" {
			r.remote = name
		}
	}
}

// WithTagPrefix sets the version tag prefix (default "v").
func WithTagPrefix(prefix string) Option {
	return func(r *Repository) {
		if prefix != "" {
			r.tagPrefix = prefix
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Repository) { r.log = logger }
}

// Open opens the repository at path, traversing up the directory tree to
// find the repository root. An empty path means the current directory.
func Open(path string, opts ...Option) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening repository at %q: %v", ErrHistoryUnavailable, path, err)
	}

	r := &Repository{
		repo:      repo,
		remote:    git.DefaultRemoteName,
		tagPrefix: "v",
		log:       log.WithPrefix("gitrepo"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// TagPrefix returns the configured version tag prefix.
func (r *Repository) TagPrefix() string { return r.tagPrefix }

// LatestVersionTag returns the highest release version among the
// repository's tags, together with its tag name. Tags that do not parse as
// <prefix><major>.<minor>.<patch> are ignored. Returns ErrNoTagFound when no
// tag parses.
func (r *Repository) LatestVersionTag() (*semver.Version, string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, "", fmt.Errorf("%w: listing tags: %v", ErrHistoryUnavailable, err)
	}

	var (
		best     *semver.Version
		bestName string
	)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		v, err := bump.ParseTag(name, r.tagPrefix)
		if err != nil {
			return nil // not a release tag
		}
		if best == nil || v.GreaterThan(best) {
			best, bestName = v, name
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: iterating tags: %v", ErrHistoryUnavailable, err)
	}
	if best == nil {
		return nil, "", ErrNoTagFound
	}

	r.log.Debug("latest version tag", "tag", bestName)
	return best, bestName, nil
}

// CommitsSince returns the commits reachable from HEAD but not from the tag,
// i.e. <tag>..HEAD, in the order the log walk yields them (newest first).
// That single order is what the bump scan, classification and rendering all
// honor.
func (r *Repository) CommitsSince(tagName string) ([]Commit, error) {
	tagCommit, err := r.tagCommit(tagName)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]bool)
	ancestors := object.NewCommitPreorderIter(tagCommit, nil, nil)
	if err := ancestors.ForEach(func(c *object.Commit) error {
		excluded[c.Hash] = true
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: walking tag ancestors: %v", ErrHistoryUnavailable, err)
	}

	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: resolving HEAD: %v", ErrHistoryUnavailable, err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("%w: reading log: %v", ErrHistoryUnavailable, err)
	}

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if excluded[c.Hash] {
			return nil
		}
		commits = append(commits, Commit{
			Hash:        c.Hash.String(),
			Subject:     subjectLine(c.Message),
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking log: %v", ErrHistoryUnavailable, err)
	}

	r.log.Debug("commits since tag", "tag", tagName, "count", len(commits))
	return commits, nil
}

// tagCommit resolves a tag name to the commit it points at, peeling
// annotated tag objects.
func (r *Repository) tagCommit(tagName string) (*object.Commit, error) {
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(tagName), true)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving tag %q: %v", ErrHistoryUnavailable, tagName, err)
	}

	hash := ref.Hash()
	if tagObj, err := r.repo.TagObject(hash); err == nil {
		hash = tagObj.Target
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: reading commit for tag %q: %v", ErrHistoryUnavailable, tagName, err)
	}
	return commit, nil
}

// subjectLine returns the first line of a commit message.
func subjectLine(message string) string {
	for i := 0; i < len(message); i++ {
		if message[i] == '\n' {
			return trimCR(message[:i])
		}
	}
	return trimCR(message)
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

// RemoteURL returns the first URL of the configured push remote, used to
// derive the forge owner/repo pair.
func (r *Repository) RemoteURL() (string, error) {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return "", fmt.Errorf("looking up remote %q: %w", r.remote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", r.remote)
	}
	return urls[0], nil
}
