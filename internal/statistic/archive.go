package statistic

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"nltrack/internal/models"
	"nltrack/internal/providers"
	"nltrack/internal/statistic/interfaces"
	"nltrack/internal/structures"
)

// SnapshotArchive keeps a zstd-compressed JSON copy of every regenerated day so that
// compacted numbers can be audited after the store rows were replaced.
type SnapshotArchive struct {
	dir        string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

type archiveFile struct {
	Date string                     `json:"date"`
	Rows []models.AnalyticsSnapshot `json:"rows"`
}

// NewSnapshotArchive returns the archive and a cleanup that releases the compressor.
func NewSnapshotArchive(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) (*SnapshotArchive, func()) {
	archive := &SnapshotArchive{
		dir:        conf.Aggregation.ArchiveDir,
		compressor: compressor,
		logger:     logger,
	}
	return archive, archive.Close
}

func (a *SnapshotArchive) Enabled() bool {
	return a.dir != ""
}

func (a *SnapshotArchive) path(date string) string {
	return filepath.Join(a.dir, "snapshots-"+date+".json.zst")
}

// Save overwrites the day's archive through a temp file and rename.
func (a *SnapshotArchive) Save(date string, rows []models.AnalyticsSnapshot) error {
	if !a.Enabled() {
		return nil
	}
	if rows == nil {
		rows = []models.AnalyticsSnapshot{}
	}

	jsonData, err := json.Marshal(archiveFile{Date: date, Rows: rows})
	if err != nil {
		return err
	}
	data, err := a.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}

	fileName := a.path(date)
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// Load returns nil rows without an error when the day was never archived.
func (a *SnapshotArchive) Load(date string) ([]models.AnalyticsSnapshot, error) {
	if !a.Enabled() {
		return nil, nil
	}

	data, err := os.ReadFile(a.path(date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	decompressed, err := a.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}

	var stored archiveFile
	if err = json.Unmarshal(decompressed, &stored); err != nil {
		return nil, err
	}
	if stored.Date != date {
		a.logger.Warnf(providers.TypeAggregation, "Archive %s contains date %s", a.path(date), stored.Date)
		return nil, fmt.Errorf("archive date mismatch: want %s, got %s", date, stored.Date)
	}
	return stored.Rows, nil
}

func (a *SnapshotArchive) Close() {
	a.compressor.Close()
}
