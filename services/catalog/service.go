package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/sourcegraph/conc/pool"

	"github.com/bardbit/stremio-mdblist-importer/config"
	"github.com/bardbit/stremio-mdblist-importer/models"
	"github.com/bardbit/stremio-mdblist-importer/services/mdblist"
)

//go:generate mockgen -source=service.go -destination=../../mocks/mock_list_fetcher.go -package=mocks

// ListFetcher fetches the items of a single list.
type ListFetcher interface {
	FetchItems(ctx context.Context, slug, apiKey string) mdblist.SourceOutcome
}

// Service merges several lists into one catalog.
type Service struct {
	fetcher ListFetcher
	cfg     config.CatalogSettings
}

func NewService(fetcher ListFetcher, cfg config.CatalogSettings) *Service {
	return &Service{fetcher: fetcher, cfg: cfg}
}

// Resolve fetches every list concurrently and returns their items of requestedType,
// deduplicated by id. The first list (in listIDs order) to mention an id decides its
// entry. Failed lists contribute nothing and are reported in Sources; Resolve itself
// never fails.
func (s *Service) Resolve(ctx context.Context, listIDs []string, requestedType, apiKey string) (resp models.CatalogResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[catalog] panic resolving %s catalog: %v", requestedType, r)
			resp = models.EmptyCatalog()
		}
	}()

	ids := dedupeListIDs(listIDs)
	if len(ids) == 0 {
		return models.EmptyCatalog()
	}
	if !s.cfg.SupportsType(requestedType) {
		log.Printf("[catalog] unsupported type %q requested", requestedType)
		return models.EmptyCatalog()
	}
	if limit := s.cfg.MaxListsPerRequest; limit > 0 && len(ids) > limit {
		log.Printf("[catalog] %d lists requested, keeping the first %d", len(ids), limit)
		ids = ids[:limit]
	}

	outcomes := s.fetchAll(ctx, ids, apiKey)
	resp = s.merge(ids, outcomes, requestedType)

	failed := resp.FailedSources()
	log.Printf("[catalog] %s catalog: %d lists, %d items, %d failed", requestedType, len(ids), len(resp.Metas), len(failed))
	return resp
}

func (s *Service) fetchAll(ctx context.Context, ids []string, apiKey string) []mdblist.SourceOutcome {
	outcomes := make([]mdblist.SourceOutcome, len(ids))

	workers := s.cfg.MaxConcurrency
	if workers <= 0 || workers > len(ids) {
		workers = len(ids)
	}

	p := pool.New().WithMaxGoroutines(workers)
	for i, slug := range ids {
		i, slug := i, slug
		p.Go(func() {
			outcomes[i] = s.fetchOne(ctx, slug, apiKey)
		})
	}
	p.Wait()
	return outcomes
}

func (s *Service) fetchOne(ctx context.Context, slug, apiKey string) (out mdblist.SourceOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = mdblist.SourceOutcome{Slug: slug, Err: fmt.Errorf("panic fetching list: %v", r)}
		}
	}()
	return s.fetcher.FetchItems(ctx, slug, apiKey)
}

func (s *Service) merge(ids []string, outcomes []mdblist.SourceOutcome, requestedType string) models.CatalogResponse {
	resp := models.CatalogResponse{
		Metas:   []models.MetaPreview{},
		Sources: make([]models.SourceReport, 0, len(ids)),
	}
	seen := make(map[string]struct{})

	for i, out := range outcomes {
		report := models.SourceReport{Slug: ids[i]}
		if out.Err != nil {
			report.Error = out.Err.Error()
			resp.Sources = append(resp.Sources, report)
			continue
		}
		report.Items = len(out.Items)
		for _, item := range out.Items {
			meta, ok := Canonicalize(item, requestedType, s.cfg.Namespace)
			if !ok {
				continue
			}
			if _, dup := seen[meta.ID]; dup {
				continue
			}
			seen[meta.ID] = struct{}{}
			resp.Metas = append(resp.Metas, meta)
			report.Accepted++
		}
		resp.Sources = append(resp.Sources, report)
	}
	return resp
}
