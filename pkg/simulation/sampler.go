package simulation

import (
	"context"
	"fmt"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/internal/monitoring"
	"github.com/ducminhle1904/mc-portfolio/pkg/asset"
	"github.com/rs/zerolog"
)

const component = "sampler"

// DefaultChunkSize is the number of draws handed to a worker at once
const DefaultChunkSize = 250

// Sampler builds return matrices from asset profiles
type Sampler struct {
	streams   StreamFactory
	workers   int
	chunkSize int
	logger    zerolog.Logger
}

// SamplerOption configures a Sampler
type SamplerOption func(*Sampler)

// WithWorkers sets the worker count; 0 means one per CPU
func WithWorkers(n int) SamplerOption {
	return func(s *Sampler) { s.workers = n }
}

// WithChunkSize sets how many draws make up one job
func WithChunkSize(n int) SamplerOption {
	return func(s *Sampler) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithLogger sets the sampler logger
func WithLogger(l zerolog.Logger) SamplerOption {
	return func(s *Sampler) { s.logger = l }
}

// NewSampler creates a sampler drawing randomness from streams.
// A nil factory gets a randomly seeded one.
func NewSampler(streams StreamFactory, opts ...SamplerOption) *Sampler {
	if streams == nil {
		streams = NewSeededStreams(0)
	}
	s := &Sampler{
		streams:   streams,
		chunkSize: DefaultChunkSize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleReturns is a convenience wrapper around a default Sampler
func SampleReturns(ctx context.Context, profiles []asset.Profile, simulations int, streams StreamFactory) (*ReturnMatrix, error) {
	return NewSampler(streams).SampleReturns(ctx, profiles, simulations)
}

// SampleReturns simulates `simulations` paths per asset and returns their
// total returns as a simulations x assets matrix. The matrix is returned
// only once every path has been simulated.
func (s *Sampler) SampleReturns(ctx context.Context, profiles []asset.Profile, simulations int) (*ReturnMatrix, error) {
	if len(profiles) == 0 {
		return nil, perrors.New(perrors.ErrorCategoryValidation, perrors.ErrNoAssets, component, "sample", "at least one asset profile is required")
	}
	if simulations <= 0 {
		return nil, perrors.NewSimulationCountError(component, simulations)
	}
	if err := validateProfiles(profiles); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	tickers := make([]string, len(profiles))
	for i, p := range profiles {
		tickers[i] = p.Ticker
	}
	matrix := NewReturnMatrix(simulations, tickers)

	jobs := s.planJobs(profiles, simulations)

	pool := NewWorkerPool(ctx, s.workers, len(jobs), s.streams)
	pool.Start()
	defer pool.Stop()

	for _, job := range jobs {
		if err := pool.SubmitJob(job); err != nil {
			return nil, err
		}
	}

	for received := 0; received < len(jobs); received++ {
		select {
		case res := <-pool.GetResults():
			if res.Error != nil {
				return nil, fmt.Errorf("simulate %s draws %d-%d: %w", res.Job.Profile.Ticker, res.Job.From, res.Job.To, res.Error)
			}
			for i, r := range res.Returns {
				matrix.Set(res.Job.From+i, res.Job.AssetIndex, r)
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	elapsed := time.Since(startTime)
	monitoring.ObserveSampling(elapsed.Seconds())

	s.logger.Debug().
		Int("assets", len(profiles)).
		Int("simulations", simulations).
		Int("jobs", len(jobs)).
		Dur("elapsed", elapsed).
		Msg("return matrix sampled")

	return matrix, nil
}

func (s *Sampler) planJobs(profiles []asset.Profile, simulations int) []PathJob {
	chunk := s.chunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	jobs := make([]PathJob, 0, len(profiles)*((simulations+chunk-1)/chunk))
	for i, p := range profiles {
		for from := 0; from < simulations; from += chunk {
			to := from + chunk
			if to > simulations {
				to = simulations
			}
			jobs = append(jobs, PathJob{AssetIndex: i, Profile: p, From: from, To: to})
		}
	}
	return jobs
}

func validateProfiles(profiles []asset.Profile) error {
	for _, p := range profiles {
		if p.StepCount <= 0 {
			return perrors.NewConfigurationError(component, "sample "+p.Ticker, "step count must be positive").
				WithContext("steps", p.StepCount)
		}
		if !(p.InitialPrice > 0) {
			return perrors.NewInvalidPriceError(component, p.Ticker, 0, p.InitialPrice)
		}
		if p.Volatility < 0 {
			return perrors.New(perrors.ErrorCategoryValidation, perrors.ErrInvalidConfig, component, "sample "+p.Ticker,
				fmt.Sprintf("volatility must be non-negative, got %v", p.Volatility))
		}
	}
	return nil
}
