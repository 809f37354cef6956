package export

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// Save writes content to dest, creating missing parent directories. It
// returns false and logs the cause on any failure.
func Save(content, dest string, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	if err := SaveErr([]byte(content), dest); err != nil {
		logger.Error("cannot save document", "path", dest, "error", err)
		return false
	}
	logger.Info("document saved", "path", dest, "bytes", len(content))
	return true
}

// SaveErr writes data to dest through a temp file in the same directory, so
// readers never observe a partial document. Failures are PersistenceFailed.
func SaveErr(data []byte, dest string) error {
	wrap := func(err error) error {
		return docerr.Wrap(err, docerr.KindPersistenceFailed, "save", dest)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return wrap(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return wrap(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return wrap(err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return wrap(err)
	}
	return nil
}
