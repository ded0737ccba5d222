package data

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// MemoryProvider serves histories supplied up front, e.g. inline in an API request
type MemoryProvider struct {
	mu      sync.RWMutex
	history map[string][]types.PricePoint
}

// NewMemoryProvider creates an empty in-memory provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{history: make(map[string][]types.PricePoint)}
}

// Name returns the name of the data provider
func (p *MemoryProvider) Name() string {
	return "memory"
}

// Add stores a copy of points for ticker
func (p *MemoryProvider) Add(ticker string, points []types.PricePoint) {
	stored := make([]types.PricePoint, len(points))
	copy(stored, points)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.history[strings.ToUpper(ticker)] = SortAndDedup(stored)
}

// AddCloses stores bare closing prices as consecutive daily points ending today
func (p *MemoryProvider) AddCloses(ticker string, closes []float64) {
	base := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -len(closes))
	points := make([]types.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = types.PricePoint{Timestamp: base.AddDate(0, 0, i+1), Close: c}
	}
	p.Add(ticker, points)
}

// History implements PriceHistoryProvider
func (p *MemoryProvider) History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	stored, ok := p.history[strings.ToUpper(ticker)]
	p.mu.RUnlock()

	points := FilterByDateRange(stored, start, end)
	if !ok || len(points) == 0 {
		return nil, noDataError(p.Name(), ticker, start, end)
	}

	out := make([]types.PricePoint, len(points))
	copy(out, points)
	return out, nil
}
