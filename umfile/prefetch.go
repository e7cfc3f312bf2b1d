package umfile

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/arloliu/mule/format"
	"github.com/arloliu/mule/internal/logger"
)

// Prefetch loads the data of fields with at most workers goroutines. A
// workers value below 1 means runtime.GOMAXPROCS(0). Padding fields and
// fields already loaded are skipped. fields must not hold the same Field
// twice.
//
// Land-sea mask fields, and the masks that land or sea packed fields decode
// against, are loaded before any worker starts.
//
// Prefetch returns the first error, after which no new field is started.
// It stops early when ctx is done and returns ctx.Err(). Progress is logged
// at Debug to the logger carried by ctx (see ContextWithLogger).
func Prefetch(ctx context.Context, fields []*Field, workers int) error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := logger.FromContext(ctx)

	var pending []int
	for i, fld := range fields {
		if fld == nil || fld.IsPadding() || fld.Loaded() {
			continue
		}
		if fld.StashCode() == format.StashLandSeaMask {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := fld.Data(); err != nil {
				return fmt.Errorf("field %d: %w", i, err)
			}

			continue
		}
		if dp, ok := fld.Provider().(*diskProvider); ok && dp.mask != nil && !dp.mask.Loaded() {
			if _, err := dp.mask.Data(); err != nil {
				return fmt.Errorf("field %d: read land-sea mask: %w", i, err)
			}
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return ctx.Err()
	}
	log.Debug("prefetch", "fields", len(pending), "workers", min(workers, len(pending)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	work := make(chan int)
	for range min(workers, len(pending)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					continue
				}
				if _, err := fields[i].Data(); err != nil {
					fail(fmt.Errorf("field %d: %w", i, err))
				}
			}
		}()
	}

feed:
	for _, i := range pending {
		select {
		case work <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		log.Debug("prefetch failed", "error", firstErr)
		return firstErr
	}

	return ctx.Err()
}
