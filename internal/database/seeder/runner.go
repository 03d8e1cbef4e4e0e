package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"
)

type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

// Run executes every seeder. A failing seeder does not stop the others; all
// failures are returned together.
func (r Runner) Run(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	var errs []error
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx); err != nil {
			logger.Printf("[Seeder] failed | name=%s err=%v", s.Name(), err)
			errs = append(errs, fmt.Errorf("seed %s: %w", s.Name(), err))
			continue
		}
		logger.Printf("[Seeder] done | name=%s", s.Name())
	}
	return errors.Join(errs...)
}
