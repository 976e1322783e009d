package storage

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var blobOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blob_operations_total",
		Help: "Total number of object storage operations",
	},
	[]string{"op", "result"},
)

// Instrumented wraps a Storage and counts every call by operation and outcome.
type Instrumented struct {
	next Storage
}

// WithMetrics returns s wrapped with Prometheus counters.
func WithMetrics(s Storage) *Instrumented {
	return &Instrumented{next: s}
}

func (i *Instrumented) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	err := i.next.Upload(ctx, key, reader, size, contentType)
	observe("upload", err)
	return err
}

func (i *Instrumented) Delete(ctx context.Context, key string) error {
	err := i.next.Delete(ctx, key)
	observe("delete", err)
	return err
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	blobOperationsTotal.WithLabelValues(op, result).Inc()
}
