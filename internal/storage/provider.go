// Package storage is the data-directory file abstraction used by the desktop
// bridge. Paths are relative to the directory root and may not escape it.
package storage

// Provider is the interface for data-directory file operations.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Abs resolves path to an absolute file-system path.
	Abs(path string) (string, error)
}
