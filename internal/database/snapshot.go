package database

import (
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"sdhash/internal/imageprocessing"
)

// snapshot is the persisted form of the index. Fingerprints are only
// comparable under the configuration that produced them, so it is
// stored alongside.
type snapshot struct {
	Config imageprocessing.Config `cbor:"config"`
	Images []ImageInfo            `cbor:"images"`
}

var snapshotEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Save writes the index to path, replacing any previous snapshot.
func (db *ImageDatabase) Save(path string) error {
	db.mutex.RLock()
	snap := snapshot{
		Config: db.hasher.Config(),
		Images: make([]ImageInfo, 0, len(db.images)),
	}
	for _, info := range db.images {
		snap.Images = append(snap.Images, info)
	}
	db.mutex.RUnlock()

	data, err := snapshotEncMode.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create snapshot file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write snapshot")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "failed to replace snapshot")
	}

	db.logger.Info("saved index snapshot", zap.String("path", path), zap.Int("images", len(snap.Images)))
	return nil
}

// LoadSnapshot restores images saved by Save. A missing file, or one
// written under a different hasher configuration, restores nothing.
func (db *ImageDatabase) LoadSnapshot(path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to read snapshot")
	}

	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return 0, errors.Wrap(err, "failed to decode snapshot")
	}
	if !snap.Config.Equal(db.hasher.Config()) {
		db.logger.Warn("ignoring snapshot built with a different hasher configuration", zap.String("path", path))
		return 0, nil
	}

	restored := 0
	for _, info := range snap.Images {
		if err := db.insert(info); err != nil {
			db.logger.Warn("skipping snapshot entry", zap.String("filename", info.Filename), zap.Error(err))
			continue
		}
		restored++
	}
	db.logger.Info("restored index snapshot", zap.String("path", path), zap.Int("images", restored))
	return restored, nil
}
