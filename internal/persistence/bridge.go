package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/storage"
)

// DefaultFileName is the data file kept in the desktop data directory.
const DefaultFileName = "notes.json"

// HostBridge is the capability a desktop host offers for durable file
// storage. When one is present the file backend is used exclusively.
type HostBridge interface {
	// SaveNotes replaces the data file with data.
	SaveNotes(ctx context.Context, data []byte) error
	// LoadNotes returns the data file, or nil without error when it does not exist.
	LoadNotes(ctx context.Context) ([]byte, error)
	// ExportNotes writes data to an arbitrary path.
	ExportNotes(ctx context.Context, path string, data []byte) error
	// ImportNotes reads an arbitrary path.
	ImportNotes(ctx context.Context, path string) ([]byte, error)
}

// Quarantiner is implemented by bridges that can set a malformed data file
// aside so the next save does not overwrite it.
type Quarantiner interface {
	Quarantine(ctx context.Context) (string, error)
}

// DesktopBridge implements HostBridge over a local data directory.
type DesktopBridge struct {
	fs     *storage.FS
	file   string
	logger *slog.Logger

	recent *checksum.Ring // digests of the latest bytes read or written
}

// recentSums bounds how many of our own writes the watcher can recognise.
const recentSums = 16

var (
	_ HostBridge  = (*DesktopBridge)(nil)
	_ Quarantiner = (*DesktopBridge)(nil)
)

// NewDesktopBridge returns a bridge storing file (default notes.json) in fsys.
func NewDesktopBridge(fsys *storage.FS, file string, logger *slog.Logger) *DesktopBridge {
	if file == "" {
		file = DefaultFileName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DesktopBridge{fs: fsys, file: file, logger: logger, recent: checksum.NewRing(recentSums)}
}

// Path returns the absolute path of the data file.
func (b *DesktopBridge) Path() string {
	p, _ := b.fs.Abs(b.file)
	return p
}

// FileName returns the data file name relative to the data directory.
func (b *DesktopBridge) FileName() string { return b.file }

// LastChecksum returns the digest of the bytes last read or written.
func (b *DesktopBridge) LastChecksum() string { return b.recent.Last() }

// Known reports whether sum matches content this bridge recently read or
// wrote. The watcher uses it to ignore our own saves, including older ones
// whose events arrive late.
func (b *DesktopBridge) Known(sum string) bool { return b.recent.Contains(sum) }

func (b *DesktopBridge) remember(data []byte) { b.recent.Add(data) }

func (b *DesktopBridge) SaveNotes(_ context.Context, data []byte) error {
	// Record first: the watcher may see the rename before Write returns.
	b.remember(data)
	if err := b.fs.Write(b.file, data); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

func (b *DesktopBridge) LoadNotes(_ context.Context) ([]byte, error) {
	data, err := b.fs.Read(b.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	b.remember(data)
	return data, nil
}

func (b *DesktopBridge) ExportNotes(_ context.Context, path string, data []byte) error {
	if path == "" {
		return errors.New("export notes: empty path")
	}
	if err := storage.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("export notes: %w", err)
	}
	return nil
}

func (b *DesktopBridge) ImportNotes(_ context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("import notes: empty path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import notes: %w", err)
	}
	return data, nil
}

// Quarantine renames the data file to <file>.corrupt-<unix> and returns the
// new name.
func (b *DesktopBridge) Quarantine(_ context.Context) (string, error) {
	dst := b.file + ".corrupt-" + strconv.FormatInt(time.Now().Unix(), 10)
	if err := b.fs.Move(b.file, dst); err != nil {
		return "", fmt.Errorf("quarantine: %w", err)
	}
	b.logger.Warn("malformed data file set aside", slog.String("path", dst))
	return dst, nil
}
