package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zyprctl/zyprctl/internal/models"
	"github.com/zyprctl/zyprctl/internal/reconciler"
	"github.com/zyprctl/zyprctl/internal/zypper"
)

// EnsureConfig carries the declarative parameters for one reconciliation
// run. It is bound to flags at the boundary and converted to a descriptor
// before anything touches zypper.
type EnsureConfig struct {
	Name            string
	Repo            string
	State           string
	Description     string
	DisableGPGCheck bool
	Refresh         bool
	Priority        int
	Disabled        bool
	RunRefresh      bool
}

// NewEnsureCmd creates the ensure command
func NewEnsureCmd() *cobra.Command {
	var config EnsureConfig

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Converge a repository to the desired state",
		Long: `Queries zypper for a repository matching the given name or URI,
compares it against the requested attributes and adds, replaces or removes
the entry so the system matches the declaration. Runs that find nothing to
do report changed=false and leave the system untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptor, state, err := buildDescriptor(cmd, &config)
			if err != nil {
				return emitFailure(err)
			}

			logrus.Debugf("Configuration: %+v", config)

			rec := newReconciler(cmd)
			report, err := rec.Reconcile(cmd.Context(), descriptor, state, reconciler.Options{
				RunRefresh: config.RunRefresh,
			})
			if err != nil {
				return emitFailure(err)
			}
			return emitJSON(report)
		},
	}

	addDescriptorFlags(cmd, &config)
	cmd.Flags().StringVarP(&config.State, "state", "s", string(models.StatePresent), "Desired state (present or absent)")
	cmd.Flags().StringVarP(&config.Description, "description", "d", "", "Description of the repository")
	cmd.Flags().BoolVar(&config.DisableGPGCheck, "disable-gpg-check", false, "Disable GPG signature checking for the repository")
	cmd.Flags().BoolVar(&config.Refresh, "refresh", true, "Enable autorefresh of the repository")
	cmd.Flags().IntVarP(&config.Priority, "priority", "p", 99, "Repository priority")
	cmd.Flags().BoolVar(&config.Disabled, "disabled", false, "Add the repository in disabled state")
	cmd.Flags().BoolVar(&config.RunRefresh, "run-refresh", false, "Refresh repository metadata after adding or modifying it")

	return cmd
}

// addDescriptorFlags binds the identity flags shared by ensure and status.
func addDescriptorFlags(cmd *cobra.Command, config *EnsureConfig) {
	cmd.Flags().StringVarP(&config.Name, "name", "n", "", "Alias for the repository (not used when adding repo files)")
	cmd.Flags().StringVarP(&config.Repo, "repo", "r", "", "URI of the repository or .repo file")
}

// buildDescriptor validates the parameter combination and converts the flag
// values into the descriptor the reconciler consumes.
func buildDescriptor(cmd *cobra.Command, config *EnsureConfig) (models.RepositoryDescriptor, models.State, error) {
	descriptor := descriptorFromConfig(config, cmd.Flags().Changed("priority"), cmd.Flags().Changed("disabled"))
	state := models.State(config.State)

	if err := reconciler.Validate(descriptor, state); err != nil {
		return models.RepositoryDescriptor{}, state, err
	}
	return descriptor, state, nil
}

// descriptorFromConfig maps the flag values onto a descriptor. Optional
// attributes only make it in when their flag was set explicitly, so an
// untouched default never participates in the difference check.
func descriptorFromConfig(config *EnsureConfig, prioritySet, disabledSet bool) models.RepositoryDescriptor {
	descriptor := models.RepositoryDescriptor{
		Alias:            config.Name,
		URI:              config.Repo,
		Description:      config.Description,
		GPGCheckDisabled: config.DisableGPGCheck,
		Autorefresh:      config.Refresh,
	}
	if prioritySet {
		priority := config.Priority
		descriptor.Priority = &priority
	}
	if disabledSet {
		enabled := !config.Disabled
		descriptor.Enabled = &enabled
	}
	return descriptor
}

// newReconciler wires the real zypper client using the persistent flags.
func newReconciler(cmd *cobra.Command) *reconciler.Reconciler {
	binary, _ := cmd.Flags().GetString("zypper")
	client := zypper.NewClient(zypper.NewExecRunner(), binary)
	return reconciler.New(client)
}

// emitJSON prints the result object on stdout for the host framework.
func emitJSON(v interface{}) error {
	out, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}

// emitFailure prints the structured failure report and propagates the error
// so the process exits non-zero.
func emitFailure(err error) error {
	if jsonErr := emitJSON(models.NewFailureReport(err)); jsonErr != nil {
		return jsonErr
	}
	return err
}
