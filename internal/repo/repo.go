// Package repo holds the collaborators that sit around the documentation
// core: cloning a remote repository, reading git metadata and summarising
// the README.
package repo

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Commit describes the latest commit of a repository. Empty fields were not
// available.
type Commit struct {
	Hash    string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Author  string `json:"author,omitempty" yaml:"author,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Metadata is the git information shown in the document overview.
type Metadata struct {
	RemoteURL string `json:"remoteUrl,omitempty" yaml:"remoteUrl,omitempty"`
	Commit    Commit `json:"commit" yaml:"commit"`
}

// Empty reports whether no metadata field is set.
func (m *Metadata) Empty() bool {
	return m == nil || (m.RemoteURL == "" && m.Commit == Commit{})
}

// commitFormat separates fields with the ASCII unit separator so subjects
// containing "|" survive.
const commitFormat = "%H%x1f%an%x1f%ae%x1f%aI%x1f%s"

// ReadMetadata returns the remote URL and latest commit of the repository at
// dir. It returns nil when git is unavailable or dir is not a repository.
func ReadMetadata(ctx context.Context, dir string) *Metadata {
	if _, err := exec.LookPath("git"); err != nil {
		return nil
	}

	m := &Metadata{
		RemoteURL: runGit(ctx, dir, "remote", "get-url", "origin"),
	}
	if raw := runGit(ctx, dir, "log", "-1", "--format="+commitFormat); raw != "" {
		parts := strings.Split(raw, "\x1f")
		field := func(i int) string {
			if i < len(parts) {
				return strings.TrimSpace(parts[i])
			}
			return ""
		}
		m.Commit = Commit{
			Hash:    field(0),
			Author:  field(1),
			Email:   field(2),
			Date:    field(3),
			Message: field(4),
		}
	}
	if m.Empty() {
		return nil
	}
	return m
}

func runGit(ctx context.Context, dir string, args ...string) string {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}
