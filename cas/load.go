package cas

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"

	"cpk/ceramic"
)

type LoadConfig struct {
	Count       int                `json:"count"`
	Rate        float64            `json:"rate"`
	Concurrency int                `json:"concurrency"`
	StreamType  ceramic.StreamType `json:"stream_type"`
	Controller  string             `json:"controller"`
	Unique      bool               `json:"unique"`
}

func DefaultLoadConfig() LoadConfig {
	return LoadConfig{
		Count:       1,
		Rate:        10,
		Concurrency: 16,
		StreamType:  ceramic.TileStream,
		Controller:  "did:key:z6MkiTBz1ymuepAQ4HEHYSF1H8quG5GLVVQR3djdX3mDooWp",
		Unique:      true,
	}
}

// LoadResult latencies are in milliseconds
type LoadResult struct {
	Sent      int      `json:"sent"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Mean      float64  `json:"mean"`
	P99       float64  `json:"p99"`
	P999      float64  `json:"p999"`
	Errors    []string `json:"errors,omitempty"`
}

type loadState struct {
	mu        sync.Mutex
	durations []time.Duration
	result    LoadResult
}

func (s *loadState) record(d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations = append(s.durations, d)
	if err != nil {
		s.result.Failed++
		s.result.Errors = append(s.result.Errors, err.Error())
	} else {
		s.result.Succeeded++
	}
}

// Generate submits c.Count fresh stream CARs at no more than c.Rate
// requests per second with at most c.Concurrency in flight. Failed
// requests are not retried. When ctx is cancelled dispatch stops,
// in flight requests finish and the partial result is returned with
// the context error
func Generate(ctx context.Context, s Submitter, c LoadConfig) (LoadResult, error) {
	if c.Count <= 0 {
		return LoadResult{}, errors.New("count must be positive")
	}

	limit := rate.Limit(c.Rate)
	if c.Rate <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, 1)

	eg := errgroup.Group{}
	eg.SetLimit(max(c.Concurrency, 1))

	// In flight requests outlive cancellation
	submitCtx := context.WithoutCancel(ctx)

	state := &loadState{}
	var err error
	for i := 0; i < c.Count; i++ {
		if err = limiter.Wait(ctx); err != nil {
			break
		}

		root, data, cerr := ceramic.CreateStreamCAR(c.StreamType, c.Controller, c.Unique)
		if cerr != nil {
			err = cerr
			break
		}

		state.result.Sent++
		eg.Go(func() error {
			start := time.Now()
			_, err := s.Submit(submitCtx, AnchorRequest{Root: root, CAR: data})
			state.record(time.Since(start), err)
			return nil
		})
	}
	eg.Wait()

	state.result.Mean, state.result.P99, state.result.P999 = summarise(state.durations)
	return state.result, err
}

func summarise(durations []time.Duration) (mean, p99, p999 float64) {
	if len(durations) == 0 {
		return 0, 0, 0
	}

	fs := make([]float64, len(durations))
	for i := range fs {
		fs[i] = float64(durations[i]) / 1e6 // convert to milliseconds
	}
	slices.Sort(fs)

	return stat.Mean(fs, nil),
		stat.Quantile(0.99, stat.Empirical, fs, nil),
		stat.Quantile(0.999, stat.Empirical, fs, nil)
}
