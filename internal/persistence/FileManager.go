package persistence

import (
	"admission/internal/persistence/interfaces"
	"admission/internal/providers"
	"admission/internal/structures"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type contentSnapshot struct {
	SavedAt time.Time  `json:"saved_at"`
	Rows    [][]string `json:"rows"`
}

// FileManager persists the last successfully fetched content rows so the
// service can start serving menus while the spreadsheet is unreachable.
type FileManager struct {
	fileName   string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) interfaces.SnapshotInterface {
	return &FileManager{
		fileName:   conf.Persistence.FilePath,
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileManager) Save(rows [][]string) error {
	if f.fileName == "" {
		return nil
	}

	jsonData, err := json.Marshal(contentSnapshot{SavedAt: time.Now(), Rows: rows})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}
	return writeFileAtomic(f.fileName, data)
}

// Load returns nil rows when snapshots are disabled or none was written yet.
func (f *FileManager) Load() ([][]string, error) {
	if f.fileName == "" {
		return nil, nil
	}

	data, err := os.ReadFile(f.fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}

	var snapshot contentSnapshot
	if err := json.Unmarshal(decompressedData, &snapshot); err != nil {
		return nil, err
	}
	f.logger.Infof(providers.TypeApp, "Loaded content snapshot from %s (saved %s, %d rows)",
		f.fileName, snapshot.SavedAt.Format(time.DateTime), len(snapshot.Rows))
	return snapshot.Rows, nil
}
