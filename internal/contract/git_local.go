package contract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/debtlens/schema"
	"github.com/sirupsen/logrus"
)

// logFieldSep separates fields of the git log format. It cannot appear in names or subjects.
const logFieldSep = "\x1f"

// LocalGit implements Fetcher over a local checkout. Files are read from the
// working tree and history comes from the local 'git' binary.
type LocalGit struct {
	Extensions  []string
	Excludes    []string
	MaxFiles    int
	MaxFileSize int64
}

var _ Fetcher = &LocalGit{} // Compile-time check

// NewLocalGit creates a local fetcher bounded by the configuration.
func NewLocalGit(cfg *Config) *LocalGit {
	return &LocalGit{
		Extensions:  cfg.Extensions,
		Excludes:    cfg.Excludes,
		MaxFiles:    cfg.MaxFiles,
		MaxFileSize: cfg.MaxFileSize,
	}
}

// Run executes a git command and returns its stdout output.
func (g *LocalGit) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("%w: git command failed in %q: %s", ErrUpstreamUnavailable, repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("%w: git command failed: %v. Ensure Git is installed and available on your PATH", ErrUpstreamUnavailable, err)
	}
	return out, nil
}

// ListFiles walks the working tree breadth first and returns at most MaxFiles code files.
func (g *LocalGit) ListFiles(ctx context.Context, repo RepoRef) ([]FileEntry, error) {
	if _, err := os.ReadDir(repo.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var files []FileEntry
	queue := []string{""}
	for len(queue) > 0 && len(files) < g.MaxFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(filepath.Join(repo.Path, filepath.FromSlash(dir)))
		if err != nil {
			LogWarn("Skipping unreadable directory", err, logrus.Fields{"path": dir})
			continue
		}
		for _, e := range entries {
			rel := path.Join(dir, e.Name())
			if e.IsDir() {
				if !strings.HasPrefix(e.Name(), ".") && !ShouldIgnore(rel+"/", g.Excludes) {
					queue = append(queue, rel)
				}
				continue
			}
			if !e.Type().IsRegular() || !g.accept(rel) {
				continue
			}
			info, err := e.Info()
			if err != nil || info.Size() > g.MaxFileSize {
				continue
			}
			files = append(files, FileEntry{Path: rel, Size: info.Size()})
			if len(files) >= g.MaxFiles {
				break
			}
		}
	}
	return files, nil
}

func (g *LocalGit) accept(rel string) bool {
	return HasAllowedExtension(rel, g.Extensions) && !ShouldIgnore(rel, g.Excludes)
}

// FetchFile reads one file from the working tree.
func (g *LocalGit) FetchFile(_ context.Context, repo RepoRef, entry FileEntry) (string, error) {
	data, err := os.ReadFile(filepath.Join(repo.Path, filepath.FromSlash(entry.Path)))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > g.MaxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, entry.Path, len(data))
	}
	return string(data), nil
}

// ListCommits returns up to n commits of HEAD ordered newest first.
func (g *LocalGit) ListCommits(ctx context.Context, repo RepoRef, n int) ([]schema.CommitInfo, error) {
	format := strings.Join([]string{"%H", "%an", "%aI", "%s"}, logFieldSep)
	out, err := g.Run(ctx, repo.Path, "log", fmt.Sprintf("-n%d", n), "--pretty=format:"+format)
	if err != nil {
		return nil, err
	}
	return parseCommitLog(string(out))
}

func parseCommitLog(out string) ([]schema.CommitInfo, error) {
	var commits []schema.CommitInfo
	for line := range strings.SplitSeq(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, logFieldSep, 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w: malformed git log line %q", ErrUpstreamUnavailable, line)
		}
		ts, err := time.Parse(time.RFC3339, parts[2])
		if err != nil {
			return nil, fmt.Errorf("%w: malformed commit date %q", ErrUpstreamUnavailable, parts[2])
		}
		commits = append(commits, schema.CommitInfo{
			Hash:      parts[0],
			Author:    parts[1],
			Timestamp: ts,
			Message:   parts[3],
		})
	}
	return commits, nil
}

// FetchCommit returns the per-file patches of one commit.
func (g *LocalGit) FetchCommit(ctx context.Context, repo RepoRef, info schema.CommitInfo) (schema.CommitDetail, error) {
	out, err := g.Run(ctx, repo.Path, "show", "--format=", "--patch", "--no-color", "--no-ext-diff", info.Hash)
	if err != nil {
		return schema.CommitDetail{}, err
	}
	detail := schema.CommitDetail{CommitInfo: info, Files: SplitUnifiedDiff(string(out))}
	for _, f := range detail.Files {
		add, del := CountPatchLines(f.Patch)
		detail.Additions += add
		detail.Deletions += del
	}
	return detail, nil
}

// SplitUnifiedDiff splits the output of git show/diff into one patch per file.
func SplitUnifiedDiff(diff string) []schema.FilePatch {
	var (
		files   []schema.FilePatch
		current *schema.FilePatch
		body    strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Patch = body.String()
			files = append(files, *current)
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(diff))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			current = &schema.FilePatch{Path: diffTarget(line)}
			continue
		}
		if current == nil {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()
	return files
}

// diffTarget extracts the b/ path of a "diff --git a/x b/y" header.
func diffTarget(header string) string {
	if i := strings.LastIndex(header, " b/"); i >= 0 {
		return header[i+3:]
	}
	return strings.TrimPrefix(header, "diff --git ")
}

// CountPatchLines counts added and removed lines of a unified diff. File headers
// are only recognized before the first hunk.
func CountPatchLines(patch string) (additions, deletions int) {
	inHunk := false
	for line := range strings.SplitSeq(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk && (strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}
