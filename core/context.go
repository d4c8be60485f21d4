package core

import (
	"context"

	"github.com/huangsam/eegstudy/internal/contract"
)

// Context keys for aggregation options
type contextKey string

const diagnosticsKey contextKey = "diagnostics"

// WithDiagnostics routes the diagnostics of aggregations run with ctx to d.
func WithDiagnostics(ctx context.Context, d contract.Diagnostics) context.Context {
	return context.WithValue(ctx, diagnosticsKey, d)
}

// diagnosticsFromContext returns the diagnostics set on ctx, or stderr
func diagnosticsFromContext(ctx context.Context) contract.Diagnostics {
	if d, ok := ctx.Value(diagnosticsKey).(contract.Diagnostics); ok && d != nil {
		return d
	}
	return contract.StderrDiagnostics{}
}
