package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/forgereview/internal/config"
)

// Open returns the store selected by cfg.Backend and a cleanup function that
// releases it.
func Open(ctx context.Context, cfg config.HistoryConfig, log zerolog.Logger) (Store, func(), error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path, log), func() {}, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, func() {}, errors.New("history.dsn is required for the postgres backend")
		}
		s, err := OpenPostgres(ctx, cfg.DSN, log)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database connection")
			}
		}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown history backend %q (valid: file, postgres)", cfg.Backend)
	}
}
