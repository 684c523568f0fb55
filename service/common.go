package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Version is set at build time with -ldflags "-X board/service.Version=...".
var Version = "dev"

// backupFileName returns a fresh backup path inside dir.
func backupFileName(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("backup_%d.db", now.Unix()))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
