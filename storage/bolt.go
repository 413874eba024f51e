package storage

import (
	"fmt"
	"music-api-go/logcolors"
	"os"
	"path/filepath"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "favorites"

	// openTimeout bounds the wait for bolt's file lock held by another process
	openTimeout = 2 * time.Second
)

// BoltBackend stores values in a single BoltDB bucket.
// Every call reads or writes the file; there is no memory copy.
type BoltBackend struct {
	db                 *bolt.DB
	dbPath             string
	backupPath         string
	compressionEnabled bool
}

// BackupInfo contains metadata about a backup file
type BackupInfo struct {
	FileName  string    `json:"fileName"`
	FilePath  string    `json:"filePath"`
	Size      int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBoltBackend opens (or creates) the database at dbPath
func NewBoltBackend(dbPath, backupPath string, compressionEnabled bool) (*BoltBackend, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	if backupPath != "" {
		if err := os.MkdirAll(backupPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	if info, err := os.Stat(dbPath); err == nil {
		log.Infof("%s Found existing database file at: %s (size: %d bytes)", logcolors.LogStorageInit, dbPath, info.Size())
	} else {
		log.Infof("%s Creating new database file at: %s", logcolors.LogStorageInit, dbPath)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	log.Infof("%s Bolt storage initialized at %s (compression: %v)", logcolors.LogStorage, dbPath, compressionEnabled)

	return &BoltBackend{
		db:                 db,
		dbPath:             dbPath,
		backupPath:         backupPath,
		compressionEnabled: compressionEnabled,
	}, nil
}

func (b *BoltBackend) Get(key string) ([]byte, bool, error) {
	var value []byte
	var found bool

	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}

		decoded, err := decompressBytes(data)
		if err != nil {
			log.Warnf("%s Failed to decompress value for key %s: %v", logcolors.LogStorage, key, err)
			decoded = data
		}
		// bolt memory is only valid inside the transaction
		value = append([]byte(nil), decoded...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Update runs fn inside a write transaction, so concurrent updates serialize
func (b *BoltBackend) Update(key string, fn UpdateFunc) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}

		var current []byte
		data := bucket.Get([]byte(key))
		found := data != nil
		if found {
			decoded, err := decompressBytes(data)
			if err != nil {
				// unreadable values are handed over as-is; the caller decides
				log.Warnf("%s Failed to decompress value for key %s: %v", logcolors.LogStorage, key, err)
				decoded = data
			}
			current = append([]byte(nil), decoded...)
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		if b.compressionEnabled {
			next, err = compressBytes(next)
			if err != nil {
				log.Errorf("%s Error compressing value for key %s: %v", logcolors.LogStorage, key, err)
				return err
			}
		}
		return bucket.Put([]byte(key), next)
	})
}

// Backup writes a consistent snapshot of the database into the backup directory
func (b *BoltBackend) Backup() (string, error) {
	if b.backupPath == "" {
		return "", fmt.Errorf("backup directory not configured")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	backupFilePath := filepath.Join(b.backupPath, fmt.Sprintf("favorites_backup_%s.db", timestamp))

	log.Infof("%s Creating backup at: %s", logcolors.LogBackup, backupFilePath)

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(backupFilePath, 0600)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	log.Infof("%s Backup created successfully: %s", logcolors.LogBackup, backupFilePath)
	return backupFilePath, nil
}

// ListBackups returns all backup files, oldest first
func (b *BoltBackend) ListBackups() ([]BackupInfo, error) {
	backups := []BackupInfo{}
	if b.backupPath == "" {
		return backups, nil
	}

	entries, err := os.ReadDir(b.backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return backups, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Warnf("%s Failed to get info for %s: %v", logcolors.LogBackup, entry.Name(), err)
			continue
		}

		backups = append(backups, BackupInfo{
			FileName:  entry.Name(),
			FilePath:  filepath.Join(b.backupPath, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].FileName < backups[j].FileName
	})
	return backups, nil
}

// Close closes the database connection
func (b *BoltBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
