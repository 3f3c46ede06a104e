package sketch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotExt is the file extension of snapshot documents.
const SnapshotExt = ".json"

// SnapshotPath returns name with SnapshotExt appended unless it already
// ends in it.
func SnapshotPath(name string) string {
	if strings.EqualFold(filepath.Ext(name), SnapshotExt) {
		return name
	}
	return name + SnapshotExt
}

// SaveFile writes s to the file name, adding the .json extension when
// missing, and returns the path written. The document is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a partial snapshot.
func SaveFile(name string, s Snapshot) (string, error) {
	path := SnapshotPath(name)
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	Logger().Info("sketch: snapshot saved",
		slog.String("path", path),
		slog.Int("vertices", s.VertexCount()),
		slog.Int("runs", len(s.Runs)))
	return path, nil
}

// LoadFile reads and validates the snapshot stored at path.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	s, err := Deserialize(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	Logger().Info("sketch: snapshot read",
		slog.String("path", path),
		slog.Int("vertices", s.VertexCount()),
		slog.Int("runs", len(s.Runs)))
	return s, nil
}

// LoadAsync reads the snapshot at path on a new goroutine and passes the
// result to post. The load cannot be cancelled once started; if ctx is done
// by the time it completes, the result is discarded instead of posted.
func LoadAsync(ctx context.Context, path string, post func(SnapshotLoaded)) {
	go func() {
		s, err := LoadFile(path)
		if ctx.Err() != nil {
			Logger().Debug("sketch: snapshot load discarded", slog.String("path", path))
			return
		}
		post(SnapshotLoaded{Path: path, Snapshot: s, Err: err})
	}()
}
