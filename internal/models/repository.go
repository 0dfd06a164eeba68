package models

import (
	"strconv"
	"strings"
)

// RepoFileSuffix marks source URIs that point at a repo file. Repo files
// self-describe their alias, so zypper must not be handed one explicitly.
const RepoFileSuffix = ".repo"

// State is the desired state of a repository entry.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// RepositoryDescriptor is the desired state of a single zypper repository.
// It is built once at the CLI boundary and passed by value into the
// reconciler; nothing in here is mutated after construction.
type RepositoryDescriptor struct {
	Alias       string
	Name        string
	URI         string
	Description string

	GPGCheckDisabled bool
	Autorefresh      bool

	// Optional attributes: folded into the difference check and the add
	// invocation only when the caller supplied them.
	Priority *int
	Enabled  *bool
}

// IsRepoFile reports whether the source URI points at a repo file.
func (d RepositoryDescriptor) IsRepoFile() bool {
	return strings.HasSuffix(d.URI, RepoFileSuffix)
}

// IdentityToken resolves the key used to look the repository up, trying
// alias, name and URI in that order. Empty string means no identity is
// resolvable and the repository cannot exist yet.
func (d RepositoryDescriptor) IdentityToken() string {
	if d.Alias != "" {
		return d.Alias
	}
	if d.Name != "" {
		return d.Name
	}
	return d.URI
}

// ExpectedAttributes returns the attributes the descriptor pins down, keyed
// the way zypper reports them. Only supplied values participate in the
// difference check, so a repository differing in an attribute the caller
// never mentioned still counts as unchanged.
func (d RepositoryDescriptor) ExpectedAttributes() map[string]string {
	attrs := make(map[string]string)
	if d.Alias != "" {
		attrs["alias"] = d.Alias
	}
	if d.Name != "" {
		attrs["name"] = d.Name
	}
	if d.URI != "" {
		attrs["url"] = d.URI
	}
	if d.Priority != nil {
		attrs["priority"] = strconv.Itoa(*d.Priority)
	}
	if d.Enabled != nil {
		attrs["enabled"] = boolAttr(*d.Enabled)
	}
	return attrs
}

// ExistingRepository is one entry from zypper's repository list. It is
// queried fresh on every invocation and never cached.
type ExistingRepository struct {
	Alias       string
	Name        string
	Priority    string
	Enabled     string
	Autorefresh string
	GPGCheck    string
	URL         string
}

// Attributes returns the entry as the flat key/value set the difference
// check operates on.
func (r ExistingRepository) Attributes() map[string]string {
	return map[string]string{
		"alias":       r.Alias,
		"name":        r.Name,
		"priority":    r.Priority,
		"enabled":     r.Enabled,
		"autorefresh": r.Autorefresh,
		"gpgcheck":    r.GPGCheck,
		"url":         r.URL,
	}
}

// ReconcileResult is the outcome of probing for an existing repository.
type ReconcileResult struct {
	Exists  bool `json:"exists"`
	Differs bool `json:"differs"`
}

// ReconcileReport is the final result object handed back to the host
// framework on success.
type ReconcileReport struct {
	Changed bool   `json:"changed"`
	Repo    string `json:"repo"`
	State   string `json:"state"`
	Name    string `json:"name,omitempty"`
}

// FailureReport is the structured failure object emitted when an invocation
// aborts.
type FailureReport struct {
	Msg            string `json:"msg"`
	ZypperExitCode *int   `json:"zypper_exit_code,omitempty"`
	Stdout         string `json:"stdout,omitempty"`
	Stderr         string `json:"stderr,omitempty"`
}

func boolAttr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
