// Package database provides the fingerprint index of reference images
package database

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sdhash/internal/imageprocessing"
	"sdhash/internal/metrics"
)

// Error definitions
var (
	ErrDuplicate = stderrors.New("image already exists in database")
	ErrNotFound  = stderrors.New("image not found")
)

const thumbnailSize = 100

// ImageInfo represents an indexed reference image
type ImageInfo struct {
	Filename    string                      `json:"filename"`
	Fingerprint imageprocessing.Fingerprint `json:"fingerprint"`
	Kind        imageprocessing.Kind        `json:"kind"`
	Format      string                      `json:"format"`
	Width       int                         `json:"width"`
	Height      int                         `json:"height"`
	AddedAt     time.Time                   `json:"added_at"`
	Thumbnail   string                      `json:"thumbnail,omitempty"`
}

// Result is the outcome of fingerprinting one upload
type Result struct {
	Fingerprint imageprocessing.Fingerprint `json:"fingerprint"`
	Kind        imageprocessing.Kind        `json:"kind"`
	Format      string                      `json:"format"`
	Width       int                         `json:"width"`
	Height      int                         `json:"height"`
	Thumbnail   string                      `json:"-"`
}

// ImageDatabase indexes reference images by fingerprint. Two images are
// duplicates iff their fingerprints are equal, so lookups are exact.
type ImageDatabase struct {
	hasher *imageprocessing.Hasher
	images map[imageprocessing.Fingerprint]ImageInfo
	names  map[string]imageprocessing.Fingerprint
	mutex  sync.RWMutex
	cache  *cache.Cache
	logger *zap.Logger
}

// NewImageDatabase creates an empty index. Fingerprints of uploaded
// content are memoised for cacheTTL.
func NewImageDatabase(hasher *imageprocessing.Hasher, logger *zap.Logger, cacheTTL time.Duration) *ImageDatabase {
	return &ImageDatabase{
		hasher: hasher,
		images: make(map[imageprocessing.Fingerprint]ImageInfo),
		names:  make(map[string]imageprocessing.Fingerprint),
		cache:  cache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

// Hasher returns the hasher the index was built with.
func (db *ImageDatabase) Hasher() *imageprocessing.Hasher {
	return db.hasher
}

// Fingerprint decodes data and computes its fingerprint.
func (db *ImageDatabase) Fingerprint(data []byte) (Result, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if cached, ok := db.cache.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		return cached.(Result), nil
	}

	start := time.Now()
	res, err := db.analyze(data)
	if err != nil {
		metrics.FingerprintErrorsTotal.Inc()
		return Result{}, err
	}
	metrics.FingerprintsTotal.WithLabelValues(string(res.Kind)).Inc()
	metrics.FingerprintDuration.WithLabelValues(string(res.Kind)).Observe(time.Since(start).Seconds())

	db.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

func (db *ImageDatabase) analyze(data []byte) (Result, error) {
	src, format, err := imageprocessing.DecodeFrames(bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}
	fp, kind, err := db.hasher.FingerprintKind(src)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to fingerprint image")
	}
	first, err := imageprocessing.FirstFrame(src)
	if err != nil {
		return Result{}, err
	}
	b := first.Bounds()
	return Result{
		Fingerprint: fp,
		Kind:        kind,
		Format:      format,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Thumbnail:   imageprocessing.GenerateThumbnail(first, thumbnailSize),
	}, nil
}

// LoadImages indexes every supported image in imageDir that is not
// indexed yet, using up to workers goroutines. Unreadable files and
// duplicates are logged and skipped.
func (db *ImageDatabase) LoadImages(ctx context.Context, imageDir string, workers int) (int, error) {
	if _, err := os.Stat(imageDir); os.IsNotExist(err) {
		return 0, errors.Errorf("images directory does not exist: %s", imageDir)
	}

	files, err := os.ReadDir(imageDir)
	if err != nil {
		return 0, errors.Wrap(err, "could not read directory")
	}

	if workers < 1 {
		workers = 1
	}
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	var (
		mu     sync.Mutex
		loaded int
	)
	for _, file := range files {
		if file.IsDir() || !imageprocessing.IsImageFile(file.Name()) || db.hasName(file.Name()) {
			continue
		}
		fileName := file.Name()

		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(imageDir, fileName)
			data, err := os.ReadFile(path)
			if err != nil {
				db.logger.Warn("could not read file", zap.String("path", path), zap.Error(err))
				return nil
			}
			if _, err := db.AddImage(data, fileName); err != nil {
				db.logger.Warn("skipping image", zap.String("path", path), zap.Error(err))
				return nil
			}

			mu.Lock()
			loaded++
			mu.Unlock()
			db.logger.Debug("loaded image", zap.String("filename", fileName))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return loaded, err
	}
	db.logger.Info("loaded images into the database", zap.Int("loaded", loaded), zap.Int("total", db.Len()))
	return loaded, nil
}

func (db *ImageDatabase) hasName(filename string) bool {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	_, ok := db.names[filename]
	return ok
}

// FindMatch returns the indexed image with the given fingerprint
func (db *ImageDatabase) FindMatch(fp imageprocessing.Fingerprint) (ImageInfo, bool) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	info, ok := db.images[fp]
	if ok {
		metrics.DuplicatesTotal.Inc()
	}
	return info, ok
}

// AddImage fingerprints data and adds it to the index under filename
func (db *ImageDatabase) AddImage(data []byte, filename string) (ImageInfo, error) {
	res, err := db.Fingerprint(data)
	if err != nil {
		return ImageInfo{}, err
	}

	info := ImageInfo{
		Filename:    filename,
		Fingerprint: res.Fingerprint,
		Kind:        res.Kind,
		Format:      res.Format,
		Width:       res.Width,
		Height:      res.Height,
		AddedAt:     time.Now(),
		Thumbnail:   res.Thumbnail,
	}
	if err := db.insert(info); err != nil {
		return ImageInfo{}, err
	}
	return info, nil
}

func (db *ImageDatabase) insert(info ImageInfo) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if existing, ok := db.images[info.Fingerprint]; ok {
		metrics.DuplicatesTotal.Inc()
		return errors.Wrapf(ErrDuplicate, "as: %s", existing.Filename)
	}
	db.images[info.Fingerprint] = info
	db.names[info.Filename] = info.Fingerprint
	metrics.IndexedImages.Set(float64(len(db.images)))
	return nil
}

// Remove deletes the image with the given fingerprint from the index
func (db *ImageDatabase) Remove(fp imageprocessing.Fingerprint) (ImageInfo, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	info, ok := db.images[fp]
	if !ok {
		return ImageInfo{}, errors.Wrapf(ErrNotFound, "fingerprint %s", fp)
	}
	delete(db.images, fp)
	delete(db.names, info.Filename)
	metrics.IndexedImages.Set(float64(len(db.images)))
	return info, nil
}

// ListImages returns all indexed images, oldest first, without thumbnails
func (db *ImageDatabase) ListImages() []ImageInfo {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	images := make([]ImageInfo, 0, len(db.images))
	for _, info := range db.images {
		info.Thumbnail = ""
		images = append(images, info)
	}
	sort.Slice(images, func(i, j int) bool {
		if images[i].AddedAt.Equal(images[j].AddedAt) {
			return images[i].Filename < images[j].Filename
		}
		return images[i].AddedAt.Before(images[j].AddedAt)
	})
	return images
}

// Len returns the number of indexed images
func (db *ImageDatabase) Len() int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return len(db.images)
}
