package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// maxLineSize bounds a single JSONL line; question texts with long tables
// can run well past bufio's default token size.
const maxLineSize = 4 * 1024 * 1024

// Store reads and writes the dataset JSONL file. Every save takes a
// timestamped backup first and replaces the live file atomically.
type Store struct {
	path      string
	backupDir string
	logger    *zap.Logger
}

// NewStore creates a store for the given dataset file, placing backups in
// backupDir.
func NewStore(path, backupDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:      path,
		backupDir: backupDir,
		logger:    logger,
	}
}

// Path returns the dataset file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads all records from the dataset file. A missing file yields an
// empty dataset. Lines that fail to decode or validate are logged and
// skipped so one corrupt line never blocks access to the rest of the
// data, and an invalid legacy record never enters memory where it would
// block every later save.
func (s *Store) Load() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to open dataset file %s: %w", s.path, err)
	}
	defer f.Close()

	records := []Record{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			s.logger.Warn("skipping malformed dataset line",
				zap.Int("line", lineNo),
				zap.Error(err))
			continue
		}
		if err := rec.Validate(); err != nil {
			s.logger.Warn("skipping invalid dataset record",
				zap.Int("line", lineNo),
				zap.String("unique_id", rec.UniqueID),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", s.path, err)
	}
	return records, nil
}

// Backup copies the current dataset file into the backup directory under a
// timestamped name and returns the backup path. A missing dataset file is
// not an error; there is simply nothing to back up.
func (s *Store) Backup() (string, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat dataset file %s: %w", s.path, err)
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", s.backupDir, err)
	}
	name := fmt.Sprintf("backup_%s.jsonl", time.Now().Format("20060102_150405"))
	dst := filepath.Join(s.backupDir, name)
	if err := copyFile(s.path, dst); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", dst, err)
	}
	return dst, nil
}

// Save persists records to the dataset file. The sequence is strict:
// refuse an empty dataset, take a backup, sort into canonical order,
// write everything to a temp file with per-record revalidation, then
// rename the temp file over the live one. A failure at any step leaves
// the live file byte-identical to what it was. Returns the backup path.
func (s *Store) Save(records []Record) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("refusing to save an empty dataset to %s", s.path)
	}

	backupPath, err := s.Backup()
	if err != nil {
		return "", err
	}

	SortRecords(records)

	tmp := s.path + ".tmp"
	if err := s.writeAll(tmp, records); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to replace dataset file %s: %w", s.path, err)
	}

	s.logger.Info("dataset saved",
		zap.Int("records", len(records)),
		zap.String("path", s.path),
		zap.String("backup", backupPath))
	return backupPath, nil
}

func (s *Store) writeAll(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create temp dataset file %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("record %d (%s) failed validation: %w", i, records[i].UniqueID, err)
		}
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", records[i].UniqueID, err)
		}
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp dataset file %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
