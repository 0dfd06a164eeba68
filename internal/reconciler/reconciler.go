package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zyprctl/zyprctl/internal/models"
)

// Zypper is the slice of the zypper client the reconciler needs. Tests
// substitute a fake.
type Zypper interface {
	ListRepositories(ctx context.Context, token string) ([]models.ExistingRepository, error)
	AddRepository(ctx context.Context, d models.RepositoryDescriptor) error
	RemoveRepository(ctx context.Context, aliasOrURI string) error
	RefreshRepository(ctx context.Context, aliasOrURI string) error
}

// Options tune a single reconciliation run.
type Options struct {
	// RunRefresh forces a metadata refresh after the repository has been
	// added or modified.
	RunRefresh bool
}

// Reconciler converges a single zypper repository entry towards a desired
// descriptor. It holds no state across runs; every invocation queries the
// system fresh.
type Reconciler struct {
	zypper Zypper
}

// New creates a reconciler backed by the given zypper client.
func New(zypper Zypper) *Reconciler {
	return &Reconciler{zypper: zypper}
}

// Validate checks the parameter combination for the requested state before
// any external command runs.
func Validate(d models.RepositoryDescriptor, state models.State) error {
	switch state {
	case models.StatePresent, models.StateAbsent:
	default:
		return validationError(fmt.Errorf("state must be %q or %q, got %q",
			models.StatePresent, models.StateAbsent, state))
	}

	if state == models.StatePresent && d.URI == "" {
		return validationError(fmt.Errorf("state=present requires a repository URI"))
	}
	if state == models.StateAbsent && d.URI == "" && d.Alias == "" {
		return validationError(fmt.Errorf("an alias or repository URI is required when state=absent"))
	}

	if d.IsRepoFile() {
		if d.Alias != "" {
			return validationError(fmt.Errorf("do not supply a name when adding repo files; the file names itself"))
		}
	} else if d.Alias == "" && state == models.StatePresent {
		return validationError(fmt.Errorf("a name is required when adding non repo-file sources"))
	}

	return nil
}

// Probe looks the repository up by its identity token and reports whether
// it exists and whether it differs from the descriptor. More than one match
// for a single token is a configuration ambiguity and aborts the run.
func (r *Reconciler) Probe(ctx context.Context, d models.RepositoryDescriptor) (models.ReconcileResult, error) {
	token := d.IdentityToken()
	if token == "" {
		return models.ReconcileResult{}, nil
	}

	repos, err := r.zypper.ListRepositories(ctx, token)
	if err != nil {
		return models.ReconcileResult{}, err
	}

	switch len(repos) {
	case 0:
		return models.ReconcileResult{}, nil
	case 1:
		differs := attributesDiffer(repos[0].Attributes(), d.ExpectedAttributes())
		return models.ReconcileResult{Exists: true, Differs: differs}, nil
	default:
		return models.ReconcileResult{}, &models.ReconcileError{
			Type: models.ErrAmbiguousIdentity,
			Err:  fmt.Errorf("more than one repository matched %q: %+v", token, repos),
		}
	}
}

// AddOrModify adds the repository, removing the existing entry first when
// asked to. zypper has no atomic replace, so a modify is remove-then-add;
// if the add fails after the remove succeeded the repository stays absent.
func (r *Reconciler) AddOrModify(ctx context.Context, d models.RepositoryDescriptor, removeFirst bool) (bool, error) {
	if removeFirst {
		if _, err := r.Remove(ctx, d); err != nil {
			return false, err
		}
	}

	if err := r.zypper.AddRepository(ctx, d); err != nil {
		if removeFirst {
			// No rollback: the old entry is already gone at this point.
			logrus.Warnf("Repository %s was removed but re-adding it failed", d.URI)
		}
		return false, err
	}
	return true, nil
}

// Remove drops the repository, addressing it by alias when one is known and
// by URI otherwise.
func (r *Reconciler) Remove(ctx context.Context, d models.RepositoryDescriptor) (bool, error) {
	target := d.Alias
	if target == "" {
		target = d.URI
	}
	if err := r.zypper.RemoveRepository(ctx, target); err != nil {
		return false, err
	}
	return true, nil
}

// Reconcile drives the full validate, query, apply, report cycle for one
// repository descriptor.
func (r *Reconciler) Reconcile(ctx context.Context, d models.RepositoryDescriptor, state models.State, opts Options) (models.ReconcileReport, error) {
	report := models.ReconcileReport{
		Repo:  d.URI,
		State: string(state),
		Name:  d.Alias,
	}

	if err := Validate(d, state); err != nil {
		return report, err
	}

	result, err := r.Probe(ctx, d)
	if err != nil {
		return report, err
	}
	logrus.Debugf("Repository %q: exists=%t differs=%t", d.IdentityToken(), result.Exists, result.Differs)

	switch state {
	case models.StatePresent:
		if result.Exists && !result.Differs {
			return report, nil
		}
		changed, err := r.AddOrModify(ctx, d, result.Differs)
		if err != nil {
			return report, err
		}
		report.Changed = changed

		if opts.RunRefresh {
			target := d.Alias
			if target == "" {
				target = d.URI
			}
			if err := r.zypper.RefreshRepository(ctx, target); err != nil {
				return report, err
			}
		}

	case models.StateAbsent:
		if !result.Exists {
			return report, nil
		}
		changed, err := r.Remove(ctx, d)
		if err != nil {
			return report, err
		}
		report.Changed = changed
	}

	return report, nil
}

// attributesDiffer compares an existing entry against the attributes the
// descriptor pins down. Trailing path separators are insignificant; zypper
// reports URLs both with and without them depending on version.
func attributesDiffer(existing, expected map[string]string) bool {
	for key := range expected {
		if _, ok := existing[key]; !ok {
			return true
		}
	}
	for key, value := range existing {
		want, ok := expected[key]
		if !ok {
			continue
		}
		if strings.TrimRight(value, "/") != strings.TrimRight(want, "/") {
			return true
		}
	}
	return false
}

func validationError(err error) error {
	return &models.ReconcileError{Type: models.ErrValidation, Err: err}
}
