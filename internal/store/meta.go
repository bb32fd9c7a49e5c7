package store

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// GenerationMeta is the small JSON sidecar recorded next to a
// generation's symlink under var/generations/<N> — when it was created
// and which manifest produced it, so `config list` can show more than a
// bare number.
type GenerationMeta struct {
	RootPath  string
	CreatedAt time.Time
	Manifest  string
}

func (s *Store) metaPath(n int) string {
	return filepath.Join(s.Root, "var/generations", strconv.Itoa(n)+".json")
}

// writeGenerationMeta renders meta as JSON one field at a time (sjson
// preserves insertion order, so the sidecar reads in the same order it's
// written) and writes it next to the generation symlink.
func (s *Store) writeGenerationMeta(n int, meta GenerationMeta) error {
	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "rootPath", meta.RootPath); err != nil {
		return err
	}
	if doc, err = sjson.Set(doc, "createdAt", meta.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if doc, err = sjson.Set(doc, "manifest", meta.Manifest); err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(n), []byte(doc), 0o644)
}

// ReadGenerationMeta reads back the sidecar written for generation n. A
// generation created before this sidecar existed (or with it removed)
// reports a zero GenerationMeta with RootPath resolved from the symlink
// itself, not an error — the symlink is the source of truth, the sidecar
// only adds provenance.
func (s *Store) ReadGenerationMeta(n int) (GenerationMeta, error) {
	target, linkErr := s.GenerationTarget(n)
	data, err := os.ReadFile(s.metaPath(n))
	if err != nil {
		if linkErr != nil {
			return GenerationMeta{}, linkErr
		}
		return GenerationMeta{RootPath: target}, nil
	}
	res := gjson.ParseBytes(data)
	createdAt, _ := time.Parse(time.RFC3339, res.Get("createdAt").String())
	return GenerationMeta{
		RootPath:  res.Get("rootPath").String(),
		CreatedAt: createdAt,
		Manifest:  res.Get("manifest").String(),
	}, nil
}
