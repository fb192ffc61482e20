// Package publish drives the write phase of a release: create the version
// tag, push it, create the draft release. Each completed step registers a
// compensating action; when a later step fails, the stack is unwound in
// reverse so any failure leaves the repository and the remote exactly as
// they were before the run.
package publish

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/shipnote/shipnote/internal/forge"
)

// Step identifies a publish stage for error reporting.
type Step int

const (
	// StepTagCreate creates the local tag.
	StepTagCreate Step = iota
	// StepTagPush pushes the tag to the remote.
	StepTagPush
	// StepReleaseCreate creates the release record on the forge.
	StepReleaseCreate
)

// String returns the failure kind name for the step.
func (s Step) String() string {
	switch s {
	case StepTagCreate:
		return "TagCreateFailed"
	case StepTagPush:
		return "TagPushFailed"
	default:
		return "ReleaseCreateFailed"
	}
}

// StepError reports which publish step failed. RollbackErrs carries any
// failures of the compensating actions themselves; when it is empty the
// pre-run state was fully restored.
type StepError struct {
	Step         Step
	Err          error
	RollbackErrs []error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Step, e.Err)
	if len(e.RollbackErrs) > 0 {
		msg += fmt.Sprintf(" (rollback incomplete: %v)", e.RollbackErrs)
	}
	return msg
}

func (e *StepError) Unwrap() error { return e.Err }

// Tagger is the tag lifecycle the publisher drives.
type Tagger interface {
	CreateTag(name string) error
	DeleteTag(name string) error
	PushTag(ctx context.Context, name string) error
	DeleteRemoteTag(ctx context.Context, name string) error
}

// Releaser creates the release record.
type Releaser interface {
	CreateRelease(ctx context.Context, req forge.ReleaseRequest) (*forge.Release, error)
}

// Publisher publishes one release per invocation. Nothing prevents two
// simultaneous invocations from racing to the same next version; mutual
// exclusion is a deployment concern, not part of this contract.
type Publisher struct {
	tags     Tagger
	releases Releaser
	log      *log.Logger
}

// New creates a Publisher.
func New(tags Tagger, releases Releaser) *Publisher {
	return &Publisher{
		tags:     tags,
		releases: releases,
		log:      log.WithPrefix("publish"),
	}
}

// Request describes the release to publish.
type Request struct {
	TagName string
	Title   string
	Body    string
	Draft   bool
}

// Publish creates the tag, pushes it, and creates the release. On failure it
// unwinds the completed steps in reverse and returns a *StepError naming the
// failed step. Rollback actions run sequentially to completion; their own
// failures are surfaced on the returned error.
func (p *Publisher) Publish(ctx context.Context, req Request) (*forge.Release, error) {
	var compensations []func() error

	rollback := func() []error {
		var errs []error
		for i := len(compensations) - 1; i >= 0; i-- {
			if err := compensations[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errs
	}

	if err := p.tags.CreateTag(req.TagName); err != nil {
		// Nothing completed yet, nothing to roll back.
		return nil, &StepError{Step: StepTagCreate, Err: err}
	}
	compensations = append(compensations, func() error {
		p.log.Debug("rolling back local tag", "tag", req.TagName)
		return p.tags.DeleteTag(req.TagName)
	})

	if err := p.tags.PushTag(ctx, req.TagName); err != nil {
		return nil, &StepError{Step: StepTagPush, Err: err, RollbackErrs: rollback()}
	}
	compensations = append(compensations, func() error {
		p.log.Debug("rolling back remote tag", "tag", req.TagName)
		return p.tags.DeleteRemoteTag(ctx, req.TagName)
	})

	rel, err := p.releases.CreateRelease(ctx, forge.ReleaseRequest{
		TagName: req.TagName,
		Name:    req.Title,
		Body:    req.Body,
		Draft:   req.Draft,
	})
	if err != nil {
		return nil, &StepError{Step: StepReleaseCreate, Err: err, RollbackErrs: rollback()}
	}

	p.log.Info("release published", "tag", req.TagName, "draft", req.Draft)
	return rel, nil
}
