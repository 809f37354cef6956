package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// DefaultCloneTimeout bounds a clone when the caller passes zero.
const DefaultCloneTimeout = 5 * time.Minute

// IsURL reports whether target names a remote repository rather than a local
// path.
func IsURL(target string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "file://", "git@"} {
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}

// NameFromURL derives the checkout directory name: the last path segment
// without a trailing slash or ".git" suffix.
func NameFromURL(url string) string {
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return strings.TrimSuffix(url, ".git")
}

// Clone fetches url into outBase/<name> and returns the absolute checkout
// path. An existing checkout is reused. The clone is bounded by timeout and
// is not retried; any failure is a CloneFailed error.
func Clone(ctx context.Context, url, outBase string, timeout time.Duration, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultCloneTimeout
	}

	name := NameFromURL(url)
	if name == "" || name == "." || name == ".." {
		return "", docerr.Wrap(fmt.Errorf("cannot derive a directory name from %q", url),
			docerr.KindCloneFailed, "clone", url)
	}

	dest, err := filepath.Abs(filepath.Join(outBase, name))
	if err != nil {
		return "", docerr.Wrap(err, docerr.KindCloneFailed, "clone", url)
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		logger.Info("reusing existing checkout", "url", url, "path", dest)
		return dest, nil
	}
	if err := os.MkdirAll(outBase, 0o755); err != nil {
		return "", docerr.Wrap(err, docerr.KindCloneFailed, "clone", url)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("cloning repository", "url", url, "path", dest, "timeout", timeout)
	start := time.Now()

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", "--quiet", url, dest)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dest)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", timeout)
		} else if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", docerr.Wrap(err, docerr.KindCloneFailed, "clone", url)
	}

	logger.Info("clone complete", "path", dest, "duration", time.Since(start).Round(time.Millisecond))
	return dest, nil
}
