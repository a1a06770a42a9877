package providers

import (
	"context"
	"errors"
	"time"

	"github.com/samber/do/v2"

	"github.com/gamevault/gamevault-server/internal/catalog"
	"github.com/gamevault/gamevault-server/internal/config"
	"github.com/gamevault/gamevault-server/internal/logger"
)

const (
	storeGCInterval     = time.Hour
	storeGCDiscardRatio = 0.5
)

// CatalogWarmer populates the catalog cache in the background at startup.
type CatalogWarmer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (w *CatalogWarmer) Shutdown() error {
	w.cancel()
	select {
	case <-w.done:
		return nil
	case <-time.After(shutdownTimeout):
		return errors.New("catalog warm-up did not stop in time")
	}
}

// ProvideCatalogWarmer starts the warm-up when CATALOG_WARM_ON_START is set.
// Requests arriving first refresh the cache themselves.
func ProvideCatalogWarmer(i do.Injector) (*CatalogWarmer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cat := do.MustInvoke[*catalog.Catalog](i)

	ctx, cancel := context.WithCancel(context.Background())
	w := &CatalogWarmer{cancel: cancel, done: make(chan struct{})}

	if !cfg.Catalog.WarmOnStart {
		log.Info("Catalog warm-up disabled by configuration")
		close(w.done)
		return w, nil
	}

	go func() {
		defer close(w.done)
		start := time.Now()
		cat.Warm(ctx)
		log.Info("Catalog warm-up completed",
			"duration", time.Since(start),
			"counts", cat.Cache().Snapshot().Counts(),
		)
	}()

	return w, nil
}

// StoreGCJob runs periodic Badger value-log garbage collection.
type StoreGCJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *StoreGCJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideStoreGCJob provides the periodic value-log GC job.
func ProvideStoreGCJob(i do.Injector) (*StoreGCJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(storeGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n, err := storeHandle.CollectGarbage(ctx, storeGCDiscardRatio); err != nil {
					log.Warn("Value log GC failed", "error", err)
				} else if n > 0 {
					log.Info("Value log GC completed", "rewritten", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Store GC job started", "interval", storeGCInterval)

	return &StoreGCJob{cancel: cancel}, nil
}
