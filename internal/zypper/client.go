package zypper

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zyprctl/zyprctl/internal/models"
)

// DefaultBinary is where zypper lives on SUSE systems.
const DefaultBinary = "/usr/bin/zypper"

// exitNoRepositories is ZYPPER_EXIT_NO_REPOS: the system has no repositories
// defined. For a scoped listing that simply means "no match".
const exitNoRepositories = 6

// Client issues zypper subcommands through a Runner and translates their
// exit codes and output into typed results.
type Client struct {
	runner Runner
	binary string
}

// NewClient creates a zypper client. An empty binary path selects
// DefaultBinary.
func NewClient(runner Runner, binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{runner: runner, binary: binary}
}

// ListRepositories queries the repositories matching the given identity
// token via `zypper -x lr <token>` and decodes the XML output. A zypper
// "no repositories defined" exit is a valid empty result, every other
// non-zero exit is fatal and carries the captured output verbatim.
func (c *Client) ListRepositories(ctx context.Context, token string) ([]models.ExistingRepository, error) {
	args := []string{"-x", "lr", token}
	result, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return nil, &models.ReconcileError{
			Type: models.ErrExternalCommand,
			Err:  fmt.Errorf("failed to execute %q: %w", c.commandLine(args), err),
		}
	}

	switch result.ExitCode {
	case 0:
		return decodeRepoList(result.Stdout)
	case exitNoRepositories:
		return nil, nil
	default:
		return nil, &models.ReconcileError{
			Type:     models.ErrExternalCommand,
			Err:      fmt.Errorf("failed to execute %q", c.commandLine(args)),
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}
}

// AddRepository registers the repository described by d via `zypper ar`.
// Repo-file URIs self-describe their alias and must not be given one;
// every other source gets the descriptor's alias appended.
func (c *Client) AddRepository(ctx context.Context, d models.RepositoryDescriptor) error {
	args := []string{"ar", "--check", "-t", "plaindir"}
	if d.Description != "" {
		args = append(args, "--name", d.Description)
	}
	if d.GPGCheckDisabled {
		args = append(args, "--no-gpgcheck")
	}
	if d.Autorefresh {
		args = append(args, "--refresh")
	}
	if d.Priority != nil {
		args = append(args, "--priority", strconv.Itoa(*d.Priority))
	}
	if d.Enabled != nil && !*d.Enabled {
		args = append(args, "--disable")
	}

	args = append(args, d.URI)
	if !d.IsRepoFile() {
		args = append(args, d.Alias)
	}

	logrus.Infof("Adding repository %s", d.URI)
	return c.mutate(ctx, args)
}

// RemoveRepository removes the repository identified by its alias or, when
// no alias is known, its URI.
func (c *Client) RemoveRepository(ctx context.Context, aliasOrURI string) error {
	logrus.Infof("Removing repository %s", aliasOrURI)
	return c.mutate(ctx, []string{"rr", aliasOrURI})
}

// RefreshRepository forces a metadata refresh of a single repository.
func (c *Client) RefreshRepository(ctx context.Context, aliasOrURI string) error {
	logrus.Infof("Refreshing repository %s", aliasOrURI)
	return c.mutate(ctx, []string{"refresh", "--repo", aliasOrURI})
}

// mutate runs a state-changing zypper invocation that must exit 0. The
// error message prefers stderr and falls back to stdout, matching how
// zypper reports its own failures.
func (c *Client) mutate(ctx context.Context, args []string) error {
	result, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return &models.ReconcileError{
			Type: models.ErrExternalCommand,
			Err:  fmt.Errorf("failed to execute %q: %w", c.commandLine(args), err),
		}
	}
	if result.ExitCode != 0 {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		if msg == "" {
			msg = fmt.Sprintf("failed to execute %q", c.commandLine(args))
		}
		return &models.ReconcileError{
			Type:     models.ErrExternalCommand,
			Err:      fmt.Errorf("%s", msg),
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}
	return nil
}

func (c *Client) commandLine(args []string) string {
	return c.binary + " " + strings.Join(args, " ")
}
