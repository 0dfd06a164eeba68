package zypper

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/zyprctl/zyprctl/internal/models"
)

// xmlStream is the root element of `zypper -x` output.
type xmlStream struct {
	XMLName  xml.Name    `xml:"stream"`
	RepoList xmlRepoList `xml:"repo-list"`
}

type xmlRepoList struct {
	Repos []xmlRepo `xml:"repo"`
}

type xmlRepo struct {
	Alias       string   `xml:"alias,attr"`
	Name        string   `xml:"name,attr"`
	Priority    string   `xml:"priority,attr"`
	Enabled     string   `xml:"enabled,attr"`
	Autorefresh string   `xml:"autorefresh,attr"`
	GPGCheck    string   `xml:"gpgcheck,attr"`
	URLs        []string `xml:"url"`
}

// decodeRepoList parses the XML emitted by `zypper -x lr` into typed
// repository entries. Older zypper versions print a bare <repo-list> root
// instead of wrapping it in <stream>; both shapes are accepted. A <repo>
// without a nested <url> element is malformed output, not a recoverable
// condition.
func decodeRepoList(output string) ([]models.ExistingRepository, error) {
	var list xmlRepoList

	var stream xmlStream
	if err := xml.Unmarshal([]byte(output), &stream); err == nil {
		list = stream.RepoList
	} else {
		if err := xml.Unmarshal([]byte(output), &list); err != nil {
			return nil, &models.ReconcileError{
				Type: models.ErrMalformedOutput,
				Err:  fmt.Errorf("cannot parse zypper repository list: %w", err),
			}
		}
	}

	repos := make([]models.ExistingRepository, 0, len(list.Repos))
	for _, repo := range list.Repos {
		url := ""
		if len(repo.URLs) > 0 {
			url = strings.TrimSpace(repo.URLs[0])
		}
		if url == "" {
			return nil, &models.ReconcileError{
				Type: models.ErrMalformedOutput,
				Err:  fmt.Errorf("repository %q has no <url> element in zypper output", repo.Alias),
			}
		}

		repos = append(repos, models.ExistingRepository{
			Alias:       repo.Alias,
			Name:        repo.Name,
			Priority:    repo.Priority,
			Enabled:     repo.Enabled,
			Autorefresh: repo.Autorefresh,
			GPGCheck:    repo.GPGCheck,
			URL:         url,
		})
	}
	return repos, nil
}
