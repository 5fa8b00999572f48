package models

import "time"

// BackupConfig is the persisted backup behaviour, stored as JSON next to the
// archives themselves.
type BackupConfig struct {
	MaxBackups     int    `json:"max_backups"`
	AutoBackup     bool   `json:"auto_backup"`
	BackupInterval int    `json:"backup_interval"` // seconds
	LastBackupTime string `json:"last_backup_time,omitempty"`
}

// BackupArchive describes one backup file on disk.
type BackupArchive struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	SizeMB   float64   `json:"size_mb"`
	Created  time.Time `json:"created"`
}
