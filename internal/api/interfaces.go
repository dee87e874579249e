package api

import (
	"context"

	"github.com/neexbeast/citycast/internal/history"
	"github.com/neexbeast/citycast/internal/results"
)

// ResultsScreen defines the results-view operations needed by handlers.
type ResultsScreen interface {
	Refresh(ctx context.Context, client, city string) (results.View, error)
	ClearHistory(ctx context.Context, client string) (results.View, bool, error)
}

// HistoryReader defines the history read needed by handlers.
type HistoryReader interface {
	Load(ctx context.Context, client string) history.List
}

// Pinger reports backend connectivity for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}
