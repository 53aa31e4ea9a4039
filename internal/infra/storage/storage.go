package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout is the suffix format of generated report files
const TimestampLayout = "20060102-150405"

// ValidateFilePath checks that path names a readable regular file. The
// returned error wraps the os.Stat error, so errors.Is(err, os.ErrNotExist) holds
// for missing files.
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s not found: %w", path, err)
		}
		return fmt.Errorf("failed to access %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", path, err)
	}
	_ = file.Close()

	return nil
}

// ComputeFileHash computes SHA256 hash of a file
func ComputeFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to compute hash: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// TimestampedName returns "<prefix>-<YYYYMMDD-HHMMSS><ext>".
func TimestampedName(prefix, ext string, at time.Time) string {
	return fmt.Sprintf("%s-%s%s", prefix, at.Format(TimestampLayout), ext)
}

// WriteTimestamped writes content to dir/TimestampedName(prefix, ext, at),
// creating dir if needed, and returns the written path.
func WriteTimestamped(dir, prefix, ext string, at time.Time, content []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, TimestampedName(prefix, ext, at))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// SaveJSON writes v as indented JSON to path
func SaveJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
