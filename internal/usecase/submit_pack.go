package usecase

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/ports"
)

// SubmitPack validates a pack and, when clean, publishes it into the
// showcase tree under the submitter's username.
type SubmitPack struct {
	validate *ValidatePack
	store    ports.ShowcaseStore
	confirm  ports.Confirmer
	now      func() time.Time
}

func NewSubmitPack(validate *ValidatePack, store ports.ShowcaseStore, confirm ports.Confirmer) *SubmitPack {
	return &SubmitPack{
		validate: validate,
		store:    store,
		confirm:  confirm,
		now:      time.Now,
	}
}

type SubmitParams struct {
	Dir      string
	Username string

	// AssumeYes skips the overwrite confirmation.
	AssumeYes bool
}

type SubmitResult struct {
	Report     *domain.Report
	Submission domain.Submission

	// Cancelled is set when the user declined an overwrite. Not an error.
	Cancelled bool
}

func (s *SubmitPack) Run(p SubmitParams) (SubmitResult, error) {
	if !domain.ValidUsername(p.Username) {
		return SubmitResult{}, &domain.OpError{
			Op:   "submit.username",
			Kind: domain.KindUsage,
			Err:  fmt.Errorf("%q is not a valid username", p.Username),
		}
	}

	rep, manifest, err := s.validate.Run(p.Dir)
	if err != nil {
		return SubmitResult{}, err
	}
	res := SubmitResult{Report: rep}
	if rep.HasFailures() {
		return res, &domain.OpError{
			Op:   "submit.validate",
			Kind: domain.KindExecution,
			Path: p.Dir,
			Err:  domain.ErrExecution,
		}
	}

	packName := manifest.Name
	if packName == "" {
		packName = filepath.Base(p.Dir)
	}

	dest := s.store.Destination(p.Username, packName)
	if s.store.Exists(dest) && !p.AssumeYes {
		ok, err := s.confirm.Confirm(fmt.Sprintf("%s already exists in the showcase. Overwrite?", dest))
		if err != nil {
			return res, err
		}
		if !ok {
			res.Cancelled = true
			return res, nil
		}
	}

	sub := domain.Submission{
		PackName:    packName,
		Author:      "@" + p.Username,
		Version:     manifest.Version,
		Description: manifest.Description,
		SubmittedAt: s.now().UTC(),
		Destination: dest,
	}

	if err := s.store.Publish(p.Dir, dest, sub); err != nil {
		return res, err
	}

	res.Submission = sub
	return res, nil
}
