package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
)

// ErrTransfer is returned when the object store couldn't produce the file.
// The record existed, so this is a 5xx rather than a 404.
var ErrTransfer = errors.New("failed to fetch file from object storage")

// Download resolves a record's remote path and fetches it into the
// collection-scoped local cache. The fetched file is verified to exist
// before anything is streamed, a partial or missing download must never
// reach the caller as an empty attachment.
func (l *Lifecycle) Download(ctx context.Context, webbotID int, fileID uint) (localPath, name string, err error) {
	rec, err := l.Store.FindByID(fileID)
	if err != nil {
		return "", "", err
	}

	// Record names are client input, keep only the final path segment so a
	// crafted name can't place the fetched bytes outside the cache
	name = path.Base(filepath.ToSlash(rec.Name))

	dir := filepath.Join(l.DownloadsPath, strconv.Itoa(webbotID))
	localPath = filepath.Join(dir, name)

	if !l.Objects.Get(ctx, rec.S3Path, localPath) {
		return "", "", fmt.Errorf("%w: %s", ErrTransfer, rec.S3Path)
	}

	if _, err := os.Stat(localPath); err != nil {
		return "", "", fmt.Errorf("%w: %s vanished after fetch", ErrTransfer, rec.S3Path)
	}

	return localPath, name, nil
}
