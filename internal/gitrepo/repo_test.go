package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepo is a scratch repository with helpers for building history.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
	when time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &testRepo{
		t:    t,
		dir:  dir,
		repo: repo,
		wt:   wt,
		when: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) commit(subject, authorName, authorEmail string) plumbing.Hash {
	r.t.Helper()

	// Each commit touches the same file so history stays linear.
	path := filepath.Join(r.dir, "notes.txt")
	require.NoError(r.t, os.WriteFile(path, []byte(subject+"\n"), 0o644))
	_, err := r.wt.Add("notes.txt")
	require.NoError(r.t, err)

	r.when = r.when.Add(time.Minute)
	hash, err := r.wt.Commit(subject+"\n\nbody text\n", &git.CommitOptions{
		Author: &object.Signature{Name: authorName, Email: authorEmail, When: r.when},
	})
	require.NoError(r.t, err)
	return hash
}

func (r *testRepo) tag(name string, hash plumbing.Hash) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, hash, nil)
	require.NoError(r.t, err)
}

func (r *testRepo) open(opts ...Option) *Repository {
	r.t.Helper()
	repo, err := Open(r.dir, opts...)
	require.NoError(r.t, err)
	return repo
}

func TestOpen_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}

func TestLatestVersionTag_PicksHighestVersion(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	h1 := tr.commit("feat: one", "Alice", "alice@example.com")
	h2 := tr.commit("feat: two", "Alice", "alice@example.com")
	h3 := tr.commit("feat: three", "Alice", "alice@example.com")

	// v1.10.0 is highest by semver even though v1.9.0 was tagged later.
	tr.tag("v1.9.0", h3)
	tr.tag("v1.10.0", h2)
	tr.tag("v0.1.0", h1)
	tr.tag("nightly-build", h3)

	repo := tr.open()
	v, name, err := repo.LatestVersionTag()
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", v.String())
	assert.Equal(t, "v1.10.0", name)
}

func TestLatestVersionTag_NoReleaseTags(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	h := tr.commit("feat: one", "Alice", "alice@example.com")
	tr.tag("nightly-build", h)

	repo := tr.open()
	_, _, err := repo.LatestVersionTag()
	assert.ErrorIs(t, err, ErrNoTagFound)
}

func TestLatestVersionTag_CustomPrefix(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	h := tr.commit("feat: one", "Alice", "alice@example.com")
	tr.tag("release-1.2.3", h)

	repo := tr.open(WithTagPrefix("release-"))
	v, name, err := repo.LatestVersionTag()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())
	assert.Equal(t, "release-1.2.3", name)
}

func TestCommitsSince(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit("feat: before release", "Alice", "alice@example.com")
	tagged := tr.commit("fix: last released change", "Alice", "alice@example.com")
	tr.tag("v1.2.3", tagged)
	tr.commit("feat: add export", "Bob", "12345+bob@users.noreply.example.com")
	tr.commit("fix: crash on save", "Carol", "carol@example.com")

	repo := tr.open()
	commits, err := repo.CommitsSince("v1.2.3")
	require.NoError(t, err)
	require.Len(t, commits, 2)

	// Newest first, only commits after the tag.
	assert.Equal(t, "fix: crash on save", commits[0].Subject)
	assert.Equal(t, "Carol", commits[0].AuthorName)
	assert.Equal(t, "carol@example.com", commits[0].AuthorEmail)
	assert.Equal(t, "feat: add export", commits[1].Subject)
	assert.Len(t, commits[0].Hash, 40)
}

func TestCommitsSince_NothingNew(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tagged := tr.commit("fix: only change", "Alice", "alice@example.com")
	tr.tag("v1.0.0", tagged)

	repo := tr.open()
	commits, err := repo.CommitsSince("v1.0.0")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestCommitsSince_UnknownTag(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit("fix: only change", "Alice", "alice@example.com")

	repo := tr.open()
	_, err := repo.CommitsSince("v9.9.9")
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}

func TestCreateDeleteTag(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit("feat: one", "Alice", "alice@example.com")
	repo := tr.open()

	require.NoError(t, repo.CreateTag("v1.0.0"))
	assert.True(t, repo.TagExists("v1.0.0"))

	// Creating the same tag twice fails.
	assert.Error(t, repo.CreateTag("v1.0.0"))

	require.NoError(t, repo.DeleteTag("v1.0.0"))
	assert.False(t, repo.TagExists("v1.0.0"))
}

func TestPushAndDeleteRemoteTag(t *testing.T) {
	t.Parallel()

	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	tr := newTestRepo(t)
	tr.commit("feat: one", "Alice", "alice@example.com")
	_, err = tr.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{remoteDir},
	})
	require.NoError(t, err)

	repo := tr.open()
	require.NoError(t, repo.CreateTag("v1.0.0"))

	ctx := context.Background()
	require.NoError(t, repo.PushTag(ctx, "v1.0.0"))

	bare, err := git.PlainOpen(remoteDir)
	require.NoError(t, err)
	_, err = bare.Reference(plumbing.NewTagReferenceName("v1.0.0"), false)
	require.NoError(t, err, "tag should exist on the remote after push")

	require.NoError(t, repo.DeleteRemoteTag(ctx, "v1.0.0"))
	_, err = bare.Reference(plumbing.NewTagReferenceName("v1.0.0"), false)
	assert.Error(t, err, "tag should be gone from the remote after delete")
}

func TestRemoteURL(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit("feat: one", "Alice", "alice@example.com")
	_, err := tr.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/octo-org/widget.git"},
	})
	require.NoError(t, err)

	repo := tr.open()
	url, err := repo.RemoteURL()
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octo-org/widget.git", url)
}

func TestRemoteURL_MissingRemote(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit("feat: one", "Alice", "alice@example.com")

	repo := tr.open()
	_, err := repo.RemoteURL()
	assert.Error(t, err)
}

func TestIsSSHURL(t *testing.T) {
	t.Parallel()

	assert.True(t, isSSHURL("git@github.com:o/r.git"))
	assert.True(t, isSSHURL("ssh://git@github.com/o/r.git"))
	assert.True(t, isSSHURL("git+ssh://git@github.com/o/r.git"))
	assert.False(t, isSSHURL("https://github.com/o/r.git"))
	assert.False(t, isSSHURL("/srv/git/r.git"))
}
