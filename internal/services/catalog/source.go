package catalog

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"vehicle-match-engine/internal/models"
)

// Source yields raw catalog documents.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// DirSource reads every *.json file of a local directory in name order.
type DirSource struct {
	Dir string
}

func (s DirSource) Documents(ctx context.Context) ([]Document, error) {
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog directory %s: %w", s.Dir, err)
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %s: %w", p, err)
		}
		docs = append(docs, Document{Name: filepath.Base(p), Data: data})
	}
	return docs, nil
}

// ObjectStore is the part of the S3 service a catalog source needs.
type ObjectStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

// S3Source reads the *.json objects under a prefix.
type S3Source struct {
	Store  ObjectStore
	Prefix string
}

func (s S3Source) Documents(ctx context.Context) ([]Document, error) {
	keys, err := s.Store.ListKeys(ctx, s.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog objects: %w", err)
	}

	var docs []Document
	for _, key := range keys {
		if !strings.EqualFold(path.Ext(key), ".json") {
			continue
		}
		data, err := s.Store.DownloadFile(ctx, key)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: path.Base(key), Data: data})
	}
	return docs, nil
}

// Load gathers the documents of every source and normalizes them in one pass.
// Earlier sources win ties when duplicates are merged. A failing source is
// reported and the remaining sources are still used.
func Load(ctx context.Context, n *Normalizer, sources ...Source) ([]models.Vehicle, []error) {
	var (
		docs []Document
		errs []error
	)
	for _, src := range sources {
		d, err := src.Documents(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, d...)
	}

	vehicles, normErrs := n.Normalize(docs...)
	return vehicles, append(errs, normErrs...)
}
