// Package ops runs operations over several dashboards at once.
package ops

import (
	"context"
	"fmt"
	"sync"

	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/model"
)

// Refresher reloads one dashboard, bypassing any fresh cached copy.
type Refresher interface {
	Reload(ctx context.Context, d config.Dashboard) (*model.Dataset, error)
}

// RefreshResult counts the outcome of a RefreshAll call. Records holds the
// record count of every dashboard that loaded.
type RefreshResult struct {
	Completed int
	Failed    int
	Stale     int
	Records   map[string]int
	Errors    []error
}

// Select returns the dashboards with the given names, in the given order.
// No names selects every dashboard.
func Select(dashboards []config.Dashboard, names []string) ([]config.Dashboard, error) {
	if len(names) == 0 {
		return dashboards, nil
	}
	selected := make([]config.Dashboard, 0, len(names))
	for _, name := range names {
		found := false
		for _, d := range dashboards {
			if d.Name == name {
				selected = append(selected, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown dashboard %q", name)
		}
	}
	return selected, nil
}

// RefreshAll reloads dashboards with at most concurrency loads in flight.
// onProgress, when set, is called after each dashboard with the number done
// so far; calls are serialized.
func RefreshAll(ctx context.Context, r Refresher, dashboards []config.Dashboard, concurrency int, onProgress func(done, total int, name string, err error)) (*RefreshResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	result := &RefreshResult{Records: make(map[string]int)}
	total := len(dashboards)

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for _, d := range dashboards {
		select {
		case <-ctx.Done():
			wg.Wait()
			return result, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(d config.Dashboard) {
			defer wg.Done()
			defer func() { <-sem }()

			data, err := r.Reload(ctx, d)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Errorf("%s: %w", d.Name, err))
			} else {
				result.Completed++
				result.Records[d.Name] = len(data.Records)
				if data.Stale {
					result.Stale++
				}
			}
			if onProgress != nil {
				onProgress(result.Completed+result.Failed, total, d.Name, err)
			}
		}(d)
	}
	wg.Wait()
	return result, nil
}
