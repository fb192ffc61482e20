package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// CreateTag creates a lightweight tag at HEAD. It fails if the tag already
// exists.
func (r *Repository) CreateTag(name string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolving HEAD: %w", err)
	}
	if _, err := r.repo.CreateTag(name, head.Hash(), nil); err != nil {
		return fmt.Errorf("creating tag %q: %w", name, err)
	}
	r.log.Debug("tag created", "tag", name, "hash", head.Hash().String())
	return nil
}

// DeleteTag deletes a local tag.
func (r *Repository) DeleteTag(name string) error {
	if err := r.repo.DeleteTag(name); err != nil {
		return fmt.Errorf("deleting tag %q: %w", name, err)
	}
	r.log.Debug("tag deleted", "tag", name)
	return nil
}

// TagExists reports whether a local tag with the given name exists.
func (r *Repository) TagExists(name string) bool {
	_, err := r.repo.Reference(plumbing.NewTagReferenceName(name), false)
	return err == nil
}

// PushTag pushes a single tag to the configured remote.
func (r *Repository) PushTag(ctx context.Context, name string) error {
	spec := config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", name, name))
	if err := r.push(ctx, spec); err != nil {
		return fmt.Errorf("pushing tag %q to %q: %w", name, r.remote, err)
	}
	r.log.Debug("tag pushed", "tag", name, "remote", r.remote)
	return nil
}

// DeleteRemoteTag deletes a tag on the configured remote by pushing an empty
// source refspec.
func (r *Repository) DeleteRemoteTag(ctx context.Context, name string) error {
	spec := config.RefSpec(fmt.Sprintf(":refs/tags/%s", name))
	if err := r.push(ctx, spec); err != nil {
		return fmt.Errorf("deleting tag %q on %q: %w", name, r.remote, err)
	}
	r.log.Debug("remote tag deleted", "tag", name, "remote", r.remote)
	return nil
}

func (r *Repository) push(ctx context.Context, spec config.RefSpec) error {
	url, err := r.RemoteURL()
	if err != nil {
		return err
	}

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       authForURL(url, r.log),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}
