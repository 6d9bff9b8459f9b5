package seed

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ProcessedFile records a seed file that was imported.
type ProcessedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	Records     int       `json:"records"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Cache remembers imported files by path so unchanged files are not imported twice.
type Cache struct {
	ProcessedFiles map[string]ProcessedFile `json:"processed_files"`
}

// LoadCache reads the cache file. A missing or empty file yields an empty cache.
func LoadCache(cacheFile string) (*Cache, error) {
	cache := &Cache{
		ProcessedFiles: make(map[string]ProcessedFile),
	}

	data, err := os.ReadFile(cacheFile)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if cache.ProcessedFiles == nil {
		cache.ProcessedFiles = make(map[string]ProcessedFile)
	}

	return cache, nil
}

func (c *Cache) Save(cacheFile string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Unchanged reports whether path was imported before with the same hash.
func (c *Cache) Unchanged(path, hash string) (ProcessedFile, bool) {
	entry, ok := c.ProcessedFiles[path]
	return entry, ok && entry.FileHash == hash
}

func (c *Cache) Mark(path, hash string, records int, at time.Time) {
	c.ProcessedFiles[path] = ProcessedFile{
		FilePath:    path,
		FileHash:    hash,
		Records:     records,
		ProcessedAt: at,
	}
}

// FileHash returns the hex MD5 of the file at path.
func FileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
