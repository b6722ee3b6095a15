package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huangsam/debtlens/schema"
)

var repoPartRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// RepoRef identifies a repository either on GitHub or on the local disk.
type RepoRef struct {
	Kind  schema.SourceKind
	Owner string
	Name  string
	Path  string // Absolute directory for local repositories
}

// String returns "owner/name" for GitHub repositories and the directory for local ones.
func (r RepoRef) String() string {
	if r.Kind == schema.LocalSource {
		return r.Path
	}
	return r.Owner + "/" + r.Name
}

// ParseRepoRef parses a repository identifier.
//
// Accepted forms are owner/repo, github.com/owner/repo, https://github.com/owner/repo(.git)
// and an existing local directory. The source kind restricts which forms are accepted;
// AutoSource prefers an existing directory over a GitHub slug.
func ParseRepoRef(raw string, source schema.SourceKind) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, fmt.Errorf("%w: repository identifier is empty", ErrInvalidInput)
	}

	if source != schema.GitHubSource {
		if info, err := os.Stat(raw); err == nil && info.IsDir() {
			abs, err := filepath.Abs(raw)
			if err != nil {
				return RepoRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return RepoRef{Kind: schema.LocalSource, Path: filepath.Clean(abs)}, nil
		}
		if source == schema.LocalSource {
			return RepoRef{}, fmt.Errorf("%w: %q is not a directory", ErrInvalidInput, raw)
		}
	}

	slug := raw
	for _, prefix := range []string{"https://", "http://", "www."} {
		slug = strings.TrimPrefix(slug, prefix)
	}
	slug = strings.TrimPrefix(slug, "github.com/")
	slug = strings.TrimSuffix(strings.TrimSuffix(slug, "/"), ".git")

	parts := strings.Split(slug, "/")
	if len(parts) != 2 || !validRepoPart(parts[0]) || !validRepoPart(parts[1]) {
		return RepoRef{}, fmt.Errorf("%w: cannot parse repository %q, expected owner/repo", ErrInvalidInput, raw)
	}
	return RepoRef{Kind: schema.GitHubSource, Owner: parts[0], Name: parts[1]}, nil
}

func validRepoPart(s string) bool {
	return s != "." && s != ".." && repoPartRegex.MatchString(s)
}
