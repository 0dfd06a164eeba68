package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zyprctl/zyprctl/internal/models"
	"github.com/zyprctl/zyprctl/internal/repofile"
)

// StatusReport is the read-only probe result.
type StatusReport struct {
	models.ReconcileResult
	Repo  string `json:"repo,omitempty"`
	Name  string `json:"name,omitempty"`
	Alias string `json:"alias,omitempty"`
}

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var config EnsureConfig

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether a repository exists and matches",
		Long: `Queries zypper for a repository matching the given name or URI and
reports whether it exists and whether its attributes differ from the
declaration. Never modifies the system.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Repo == "" && config.Name == "" {
				return emitFailure(&models.ReconcileError{
					Type: models.ErrValidation,
					Err:  fmt.Errorf("a name or repository URI is required"),
				})
			}

			descriptor := models.RepositoryDescriptor{
				Alias: config.Name,
				URI:   config.Repo,
			}

			// Local repo files carry their own alias; recover it so the
			// probe can match by the identity zypper actually stores.
			if descriptor.Alias == "" && descriptor.IsRepoFile() {
				if path, ok := repofile.LocalPath(descriptor.URI); ok {
					if _, err := os.Stat(path); err == nil {
						definition, err := repofile.Inspect(path)
						if err != nil {
							return emitFailure(err)
						}
						logrus.Debugf("Repo file %s declares alias %q", path, definition.Alias)
						descriptor.Alias = definition.Alias
						descriptor.Name = definition.Name
						if definition.BaseURL != "" {
							descriptor.URI = definition.BaseURL
						}
					}
				}
			}

			rec := newReconciler(cmd)
			result, err := rec.Probe(cmd.Context(), descriptor)
			if err != nil {
				return emitFailure(err)
			}

			return emitJSON(StatusReport{
				ReconcileResult: result,
				Repo:            config.Repo,
				Name:            config.Name,
				Alias:           descriptor.Alias,
			})
		},
	}

	addDescriptorFlags(cmd, &config)

	return cmd
}
