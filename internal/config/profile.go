package config

import (
	"github.com/BurntSushi/toml"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/mcuadros/go-defaults"
	"github.com/pkg/errors"

	"sdhash/internal/imageprocessing"
)

// Profile is the on-disk form of a hasher configuration:
//
//	standard_width = 128
//	edge_width = 2
//	key_frames = [0, 5, 10, 20, 40, 80]
//	dct_core_width = 4
//	dct_coeff_buckets = 128
//	height_buckets = 32
type Profile struct {
	StandardWidth   int   `toml:"standard_width" default:"128"`
	EdgeWidth       *int  `toml:"edge_width"`
	KeyFrames       []int `toml:"key_frames"`
	DCTCoreWidth    int   `toml:"dct_core_width" default:"4"`
	DCTCoeffBuckets int   `toml:"dct_coeff_buckets" default:"128"`
	HeightBuckets   *int  `toml:"height_buckets"`
}

// LoadProfile reads a hasher configuration from a TOML file. Missing
// fields take the default values; key frames may be listed in any order
// and with repeats. An empty path yields the default configuration.
func LoadProfile(path string) (imageprocessing.Config, error) {
	if path == "" {
		return imageprocessing.DefaultConfig(), nil
	}

	var p Profile
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return imageprocessing.Config{}, errors.Wrapf(err, "failed to read profile %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return imageprocessing.Config{}, errors.Errorf("unknown profile key %q in %s", undecoded[0].String(), path)
	}
	return p.Config(), nil
}

// Config converts the profile into a hasher configuration.
func (p Profile) Config() imageprocessing.Config {
	defaults.SetDefaults(&p)
	def := imageprocessing.DefaultConfig()

	cfg := imageprocessing.Config{
		StandardWidth:   p.StandardWidth,
		EdgeWidth:       def.EdgeWidth,
		KeyFrames:       def.KeyFrames,
		DCTCoreWidth:    p.DCTCoreWidth,
		DCTCoeffBuckets: p.DCTCoeffBuckets,
		HeightBuckets:   def.HeightBuckets,
	}
	// zero is meaningful for these two, so they are pointers
	if p.EdgeWidth != nil {
		cfg.EdgeWidth = *p.EdgeWidth
	}
	if p.HeightBuckets != nil {
		cfg.HeightBuckets = *p.HeightBuckets
	}
	if len(p.KeyFrames) > 0 {
		cfg.KeyFrames = normalizeKeyFrames(p.KeyFrames)
	}
	return cfg
}

// normalizeKeyFrames sorts key frames and drops repeats.
func normalizeKeyFrames(frames []int) []int {
	set := treeset.NewWithIntComparator()
	for _, f := range frames {
		set.Add(f)
	}
	out := make([]int, 0, set.Size())
	it := set.Iterator()
	for it.Next() {
		out = append(out, it.Value().(int))
	}
	return out
}
