package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/utils"
)

const (
	filePrefix     = "rentals_backup_"
	fileSuffix     = ".json"
	configFilename = "backup_config.json"
)

// DumpFunc writes a full database export. Injected so the service can be
// tested without a database.
type DumpFunc func(ctx context.Context, w io.Writer) error

// Service manages timestamped database exports in a backup directory,
// including rotation and a small persisted configuration.
type Service struct {
	Dir  string
	Dump DumpFunc
	Now  func() time.Time
}

// New returns a backup Service writing into dir.
func New(dir string, dump DumpFunc) *Service {
	return &Service{Dir: dir, Dump: dump, Now: time.Now}
}

func defaultConfig() models.BackupConfig {
	return models.BackupConfig{
		MaxBackups:     7,
		AutoBackup:     true,
		BackupInterval: 86400, // 24 hours
	}
}

func (s *Service) configPath() string {
	return filepath.Join(s.Dir, configFilename)
}

// GetConfig loads the backup configuration, merged over defaults. A missing
// or malformed file yields the defaults.
func (s *Service) GetConfig() models.BackupConfig {
	cfg := defaultConfig()
	data, err := os.ReadFile(s.configPath())
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaultConfig()
	}
	return cfg
}

// SaveConfig persists the backup configuration.
func (s *Service) SaveConfig(cfg models.BackupConfig) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configPath(), data, 0o644)
}

// UpdateMaxBackups changes the retention limit and prunes excess archives.
func (s *Service) UpdateMaxBackups(max int) error {
	if max < 1 || max > 50 {
		return fmt.Errorf("max_backups must be between 1 and 50")
	}
	cfg := s.GetConfig()
	cfg.MaxBackups = max
	if err := s.SaveConfig(cfg); err != nil {
		return err
	}
	s.CleanupOld(max)
	return nil
}

// Create writes a new timestamped backup archive, records the backup time and
// prunes archives beyond the retention limit.
func (s *Service) Create(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("backup failed: %w", err)
	}

	name := filePrefix + s.Now().Format("20060102_150405") + fileSuffix
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("backup failed: %w", err)
	}
	if err := s.Dump(ctx, f); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("backup failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("backup failed: %w", err)
	}

	cfg := s.GetConfig()
	cfg.LastBackupTime = s.Now().Format(time.RFC3339)
	if err := s.SaveConfig(cfg); err != nil {
		utils.GetLogger().Warn("Could not record backup time", zap.Error(err))
	}

	s.CleanupOld(cfg.MaxBackups)
	return name, nil
}

// List returns all backup archives with metadata, newest first.
func (s *Service) List() []models.BackupArchive {
	archives := []models.BackupArchive{}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return archives
	}
	for _, entry := range entries {
		if entry.IsDir() || !validName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		archives = append(archives, models.BackupArchive{
			Filename: entry.Name(),
			Size:     info.Size(),
			SizeMB:   float64(info.Size()) / (1024 * 1024),
			Created:  info.ModTime(),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Created.After(archives[j].Created)
	})
	return archives
}

// CleanupOld removes archives beyond the retention limit, oldest first.
func (s *Service) CleanupOld(max int) {
	archives := s.List()
	if len(archives) <= max {
		return
	}
	for _, archive := range archives[max:] {
		if err := os.Remove(filepath.Join(s.Dir, archive.Filename)); err != nil {
			utils.GetLogger().Warn("Could not remove old backup",
				zap.String("filename", archive.Filename), zap.Error(err))
		}
	}
}

// DeleteFiles removes the named archives. Names that are not valid backup
// filenames are rejected without touching the filesystem.
func (s *Service) DeleteFiles(names []string) (deleted, failed []string) {
	deleted = []string{}
	failed = []string{}
	for _, name := range names {
		if !validName(name) {
			failed = append(failed, name+": Invalid backup filename")
			continue
		}
		path := filepath.Join(s.Dir, name)
		if _, err := os.Stat(path); err != nil {
			failed = append(failed, name+": File not found")
			continue
		}
		if err := os.Remove(path); err != nil {
			failed = append(failed, name+": "+err.Error())
			continue
		}
		deleted = append(deleted, name)
	}
	return deleted, failed
}

// FilePath resolves an archive name to its full path. Returns false for
// invalid names or missing files.
func (s *Service) FilePath(name string) (string, bool) {
	if !validName(name) {
		return "", false
	}
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// LastBackupTime returns the recorded time of the most recent backup, or nil.
func (s *Service) LastBackupTime() *time.Time {
	cfg := s.GetConfig()
	if cfg.LastBackupTime == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, cfg.LastBackupTime)
	if err != nil {
		return nil
	}
	return &t
}

// validName guards path traversal: archive names must match the backup
// naming scheme exactly and contain no path components.
func validName(name string) bool {
	return strings.HasPrefix(name, filePrefix) &&
		strings.HasSuffix(name, fileSuffix) &&
		filepath.Base(name) == name
}
