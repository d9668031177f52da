package persistence

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const backupSuffix = ".bak"

// backupFilename returns the sibling backup path for path at the
// given unix-millisecond timestamp: <stem>_<millis>.bak<ext> (spec
// §6 "Backups use suffix .bak inserted before the extension with a
// unix-millisecond timestamp"). Grounded on FileManager::getBackupFilename.
func backupFilename(path string, millis int64) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return stem + "_" + strconv.FormatInt(millis, 10) + backupSuffix + ext
}

// createBackup copies path to a timestamped backup file, then removes
// the oldest backups beyond maxBackups (spec §4.6 "Backup policy").
func (m *Manager) createBackup(path string, maxBackups int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dst := backupFilename(path, m.clock())
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return m.cleanupOldBackups(path, maxBackups)
}

// findBackupFiles lists every backup sibling of path: files in path's
// directory whose name starts with path's stem and contains the
// backup suffix (grounded on FileManager::findBackupFiles).
func findBackupFiles(path string) ([]string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := filepath.Base(strings.TrimSuffix(path, ext))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var backups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, stem) && strings.Contains(name, backupSuffix) {
			backups = append(backups, filepath.Join(dir, name))
		}
	}
	return backups, nil
}

func (m *Manager) cleanupOldBackups(path string, maxBackups int) error {
	backups, err := findBackupFiles(path)
	if err != nil {
		return err
	}
	if len(backups) <= maxBackups {
		return nil
	}

	sort.Slice(backups, func(i, j int) bool {
		return modTime(backups[i]).Before(modTime(backups[j]))
	})

	toRemove := len(backups) - maxBackups
	for i := 0; i < toRemove; i++ {
		if err := os.Remove(backups[i]); err != nil {
			m.log.Warnf("failed to remove old backup %s: %v", backups[i], err)
		}
	}
	return nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
