package simulation

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/ducminhle1904/mc-portfolio/internal/monitoring"
	"github.com/ducminhle1904/mc-portfolio/pkg/asset"
)

// WorkerPool manages parallel path simulation
type WorkerPool struct {
	workerCount int
	streams     StreamFactory
	jobQueue    chan PathJob
	resultQueue chan PathResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// PathJob asks for the total returns of draws [From, To) of one asset
type PathJob struct {
	AssetIndex int
	Profile    asset.Profile
	From       int
	To         int
}

// PathResult carries the returns of one job, in draw order
type PathResult struct {
	Job      PathJob
	Returns  []float64
	Duration time.Duration
	Error    error
}

// NewWorkerPool creates a new worker pool bound to ctx
func NewWorkerPool(ctx context.Context, workerCount, jobBufferSize int, streams StreamFactory) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		streams:     streams,
		jobQueue:    make(chan PathJob, jobBufferSize),
		resultQueue: make(chan PathResult, jobBufferSize),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue and waits for workers to exit
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.cancel()
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitJob submits a job to the pool
func (wp *WorkerPool) SubmitJob(job PathJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool) GetResults() <-chan PathResult {
	return wp.resultQueue
}

// worker owns one path buffer for its whole lifetime
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	var buf []float64

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			if need := job.Profile.StepCount + 1; cap(buf) < need {
				buf = make([]float64, need)
			}
			result := wp.processJob(job, buf[:job.Profile.StepCount+1])

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

// checkEvery is how many paths a worker simulates between cancellation checks
const checkEvery = 64

func (wp *WorkerPool) processJob(job PathJob, buf []float64) PathResult {
	startTime := time.Now()
	p := job.Profile

	returns := make([]float64, job.To-job.From)
	for draw := job.From; draw < job.To; draw++ {
		if (draw-job.From)%checkEvery == 0 {
			if err := wp.ctx.Err(); err != nil {
				return PathResult{Job: job, Error: err}
			}
		}
		src := wp.streams.Stream(job.AssetIndex, draw)
		SimulatePathInto(buf, p.InitialPrice, p.Drift, p.Volatility, src)
		returns[draw-job.From] = TotalReturn(buf)
	}

	monitoring.RecordPaths(p.Ticker, len(returns))

	return PathResult{
		Job:      job,
		Returns:  returns,
		Duration: time.Since(startTime),
	}
}
