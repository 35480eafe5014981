package library

import (
	"os"

	json "github.com/goccy/go-json"

	"tuner/internal/library/interfaces"
	"tuner/internal/models"
	"tuner/internal/providers"
	"tuner/internal/services"
)

// FileManager persists the library snapshot as a compressed JSON document.
// Writes are atomic from the reader's point of view: tmp file, fsync, rename.
type FileManager struct {
	service    services.LibraryServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.LibraryServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	doc := f.service.Snapshot()

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return &models.PersistenceError{Op: "encode", Err: err}
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return &models.PersistenceError{Op: "compress", Err: err}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return &models.PersistenceError{Op: "create", Err: err}
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return &models.PersistenceError{Op: "write", Err: err}
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return &models.PersistenceError{Op: "sync", Err: err}
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return &models.PersistenceError{Op: "close", Err: err}
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return &models.PersistenceError{Op: "rename", Err: err}
	}
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the library from disk. A missing file means a
// first-ever run: the built-in seed stations are installed instead. Older
// snapshot versions are migrated forward in one pass and the migrated
// document is written back before any caller sees it.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			if n := f.service.SeedIfEmpty(); n > 0 {
				f.logger.Infof(providers.TypeApp, "No snapshot found, seeded %d built-in frequencies", n)
			}
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var doc models.SnapshotDoc
	if err := json.Unmarshal(decompressedData, &doc); err != nil {
		return err
	}

	migrated, err := models.Migrate(&doc)
	if err != nil {
		return err
	}
	if migrated {
		f.logger.Warnf(providers.TypeApp, "Migrated snapshot from v%d format", storedVersion(decompressedData))
	}

	if err := f.service.Restore(&doc); err != nil {
		return err
	}

	if migrated {
		return f.SaveToFile(fileName)
	}
	return nil
}

func storedVersion(raw []byte) int {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Version < 1 {
		return 1
	}
	return probe.Version
}
