package cli

import (
	"time"

	"github.com/shipnote/shipnote/internal/config"
	"github.com/shipnote/shipnote/internal/errors"
	"github.com/shipnote/shipnote/internal/forge"
	"github.com/shipnote/shipnote/internal/gitrepo"
	"github.com/shipnote/shipnote/internal/pipeline"
	"github.com/shipnote/shipnote/internal/publish"
	"github.com/shipnote/shipnote/internal/resolve"
)

// buildPipeline wires the repository, forge client, resolver and publisher
// from the loaded configuration. Every command that touches history goes
// through here.
func buildPipeline() (*pipeline.Pipeline, *gitrepo.Repository, *config.Configuration, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, errors.Configuration,
			"Check .shipnote/config.yml for syntax errors",
			"Run 'shipnote init' to write a fresh config template")
	}

	repo, err := gitrepo.Open(repoFlag,
		gitrepo.WithRemote(cfg.Remote),
		gitrepo.WithTagPrefix(cfg.TagPrefix),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	remoteURL, err := repo.RemoteURL()
	if err != nil {
		return nil, nil, nil, errors.WrapWithMessage(err, errors.Configuration,
			"resolving forge repository",
			"Configure a remote named '"+cfg.Remote+"' or set 'remote' in the config")
	}
	owner, name, err := forge.ParseRemoteURL(remoteURL)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, errors.Configuration,
			"The remote URL must point at a forge repository (https or ssh)")
	}

	timeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	client := forge.NewClient(owner, name,
		forge.WithBaseURL(cfg.APIBaseURL),
		forge.WithToken(cfg.Token),
		forge.WithTimeout(timeout),
	)

	resolver := resolve.New(client,
		resolve.WithConcurrency(cfg.Concurrency),
		resolve.WithTimeout(timeout),
	)

	publisher := publish.New(repo, client)

	return pipeline.New(repo, resolver, publisher), repo, cfg, nil
}
