package embeddings

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"catalogstudio/internal/observability"
	"catalogstudio/internal/repository"
)

const chunkSize = 1000

// VectorStore is satisfied by *repository.VectorRepository.
type VectorStore interface {
	Save(ctx context.Context, p repository.StoredProduct, content string, embedding []float32) error
}

// ProductMarker is satisfied by *repository.ProductRepository.
type ProductMarker interface {
	MarkAsProcessed(ctx context.Context, id string) error
}

// RunWorkers embeds every product's content chunk by chunk. A product is
// marked processed only when all of its chunks were stored. It returns the
// number of products that failed.
func RunWorkers(
	ctx context.Context,
	products []repository.StoredProduct,
	embedder Embedder,
	vectors VectorStore,
	marker ProductMarker,
	workers int,
	log *zap.Logger,
) int {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	jobs := make(chan repository.StoredProduct)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if !process(ctx, p, embedder, vectors, marker, log) {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}

	for _, p := range products {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	return failed
}

func process(
	ctx context.Context,
	p repository.StoredProduct,
	embedder Embedder,
	vectors VectorStore,
	marker ProductMarker,
	log *zap.Logger,
) bool {
	log = log.With(zap.String("product", p.ID), zap.String("url", p.URL))
	success := true
	for _, c := range Chunk(p.Content, chunkSize) {
		embedding, err := embedder.Embed(ctx, c)
		if err != nil {
			log.Warn("embedding failed", zap.Error(err))
			success = false
			continue
		}
		if err := vectors.Save(ctx, p, c, embedding); err != nil {
			log.Warn("saving vector failed", zap.Error(err))
			success = false
			continue
		}
		observability.EmbeddingsTotal.Inc()
	}
	if !success {
		log.Error("product not embedded")
		return false
	}
	if err := marker.MarkAsProcessed(ctx, p.ID); err != nil {
		log.Error("marking product processed failed", zap.Error(err))
		return false
	}
	log.Info("product embedded")
	return true
}
