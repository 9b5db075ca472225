package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// S3Archiver uploads loaded interchange files under Prefix and removes the
// local copy.
type S3Archiver struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Archiver(client objectPutter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Key returns the object key for a file archived at t. Files are grouped by
// UTC day.
func (a *S3Archiver) Key(file string, t time.Time) string {
	return path.Join(a.prefix, t.UTC().Format("2006/01/02"), filepath.Base(file))
}

func (a *S3Archiver) Archive(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("failed to open interchange file: %w", err)
	}
	defer f.Close()

	key := a.Key(file, a.now())
	if err := PutFile(ctx, a.client, a.bucket, key, "application/n-quads", f); err != nil {
		return "", err
	}
	if err := os.Remove(file); err != nil {
		return key, fmt.Errorf("failed to remove archived file: %w", err)
	}
	return "s3://" + a.bucket + "/" + key, nil
}

// LocalArchiver renames loaded interchange files to a timestamped backup
// name inside Dir.
type LocalArchiver struct {
	dir string
	now func() time.Time
}

func NewLocalArchiver(dir string) *LocalArchiver {
	return &LocalArchiver{dir: dir, now: time.Now}
}

func (a *LocalArchiver) Archive(ctx context.Context, file string) (string, error) {
	dir := a.dir
	if dir == "" {
		dir = filepath.Dir(file)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	ext := filepath.Ext(file)
	stem := strings.TrimSuffix(filepath.Base(file), ext)
	dst := filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", stem, a.now().Format("20060102_150405"), ext))
	if err := os.Rename(file, dst); err != nil {
		return "", fmt.Errorf("failed to move interchange file to backup: %w", err)
	}
	return dst, nil
}
