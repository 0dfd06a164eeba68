package repofile

import (
	"fmt"
	"strings"

	"github.com/zyprctl/zyprctl/internal/models"
	"gopkg.in/ini.v1"
)

// Definition is the repository definition a .repo file describes about
// itself: the section name is the alias, the keys mirror zypper's own
// attribute names.
type Definition struct {
	Alias       string
	Name        string
	BaseURL     string
	Enabled     string
	Autorefresh string
	GPGCheck    string
}

// LocalPath extracts a filesystem path from a repo-file URI, accepting
// plain paths and file:// URLs. Remote URLs return ok=false; they are
// fetched by zypper itself, never by this tool.
func LocalPath(uri string) (string, bool) {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://"), true
	}
	if strings.Contains(uri, "://") {
		return "", false
	}
	return uri, true
}

// Inspect parses a local .repo file and returns its first repository
// definition. Repo files are INI; the section header names the alias.
func Inspect(path string) (Definition, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Definition{}, &models.ReconcileError{
			Type: models.ErrValidation,
			Err:  fmt.Errorf("cannot parse repo file %s: %w", path, err),
		}
	}

	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		return Definition{
			Alias:       section.Name(),
			Name:        section.Key("name").String(),
			BaseURL:     section.Key("baseurl").String(),
			Enabled:     section.Key("enabled").String(),
			Autorefresh: section.Key("autorefresh").String(),
			GPGCheck:    section.Key("gpgcheck").String(),
		}, nil
	}

	return Definition{}, &models.ReconcileError{
		Type: models.ErrValidation,
		Err:  fmt.Errorf("repo file %s defines no repository", path),
	}
}
