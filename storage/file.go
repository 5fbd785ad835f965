package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/spf13/afero"
)

type fileRow struct {
	Address   string   `json:"address"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	IsPrivate bool     `json:"is_private"`
}

// FileStore keeps rows in memory and appends every new row to a file.
// The file is created on first use.
type FileStore struct {
	fs   afero.Fs
	path string

	mutex  sync.RWMutex
	rows   map[string]tracelib.CacheEntry
	file   afero.File
	loaded bool
}

func (f *FileStore) Get(ctx context.Context, address string) (tracelib.CacheEntry, bool, error) {
	if err := f.ensureLoaded(); err != nil {
		return tracelib.CacheEntry{}, false, err
	}

	f.mutex.RLock()
	defer f.mutex.RUnlock()

	entry, ok := f.rows[address]

	return entry, ok, nil
}

func (f *FileStore) Put(ctx context.Context, address string, entry tracelib.CacheEntry) error {
	if err := f.ensureLoaded(); err != nil {
		return err
	}

	row := fileRow{Address: address}
	row.Lat, row.Lng, row.IsPrivate = entry.Row()

	data, err := json.Marshal(&row)
	if err != nil {
		return fmt.Errorf("cannot encode row: %w", err)
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if _, err := f.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cannot write row: %w", err)
	}

	f.rows[address] = entry

	return nil
}

// Len returns a number of known addresses.
func (f *FileStore) Len() int {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	return len(f.rows)
}

func (f *FileStore) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.file == nil {
		return nil
	}

	err := f.file.Close()
	f.file = nil
	f.loaded = false

	return err
}

func (f *FileStore) ensureLoaded() error {
	f.mutex.RLock()
	loaded := f.loaded
	f.mutex.RUnlock()

	if loaded {
		return nil
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.loaded {
		return nil
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory for %s: %w", f.path, err)
	}

	file, err := f.fs.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", f.path, err)
	}

	rows, unterminated, err := readFileRows(f.fs, f.path)
	if err != nil {
		file.Close()

		return err
	}

	if unterminated {
		if _, err := file.Write([]byte{'\n'}); err != nil {
			file.Close()

			return fmt.Errorf("cannot write to %s: %w", f.path, err)
		}
	}

	f.rows = rows
	f.file = file
	f.loaded = true

	return nil
}

// readFileRows reads all rows, later rows win. Broken lines (for
// example, a half-written last line after a crash) are skipped. If the
// last line has no trailing newline, the second value is true.
func readFileRows(fs afero.Fs, path string) (map[string]tracelib.CacheEntry, bool, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, false, fmt.Errorf("cannot read %s: %w", path, err)
	}

	rv := map[string]tracelib.CacheEntry{}
	scanner := bufio.NewScanner(bytes.NewReader(content))

	for scanner.Scan() {
		row := fileRow{}

		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil || row.Address == "" {
			continue
		}

		rv[row.Address] = tracelib.CacheEntryFromRow(row.Lat, row.Lng, row.IsPrivate)
	}

	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return rv, len(content) > 0 && content[len(content)-1] != '\n', nil
}

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{
		fs:   fs,
		path: path,
	}
}
