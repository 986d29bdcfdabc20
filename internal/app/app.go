package app

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/ecom-admin/internal/adapter"
)

func initLogger(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

// tlsConfig returns nil when caFile is empty.
func tlsConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}
	return adapter.MakeTLSConfig(caFile, certFile, keyFile)
}

func fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
