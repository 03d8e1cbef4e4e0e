package seeder

import (
	"context"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/repository"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context) error
}

// ContentSeeder makes sure a domain slot holds a readable list. With Reset
// the built-in defaults overwrite whatever is stored.
type ContentSeeder[T content.Record[T]] struct {
	Slot  *repository.Slot[T]
	Reset bool
}

func (s ContentSeeder[T]) Name() string { return s.Slot.Domain().String() }

func (s ContentSeeder[T]) Run(ctx context.Context) error {
	if s.Reset {
		return s.Slot.Save(ctx, s.Slot.Defaults())
	}
	_, err := s.Slot.Load(ctx)
	return err
}

// Defaults returns a seeder per content domain.
func Defaults(slots repository.ContentSlots, reset bool) []Seeder {
	return []Seeder{
		ContentSeeder[content.WorkEntry]{Slot: slots.WorkEntries, Reset: reset},
		ContentSeeder[content.Certificate]{Slot: slots.Certificates, Reset: reset},
		ContentSeeder[content.Project]{Slot: slots.Projects, Reset: reset},
	}
}
