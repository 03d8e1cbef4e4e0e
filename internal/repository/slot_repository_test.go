package repository

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

type failingStore struct {
	storage.Store
	getErr error
	setErr error
}

func (f failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func TestSlot_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := NewCertificateSlot(storage.NewMemory().Session(), quietLogger(), nil)

	lists := [][]content.Certificate{
		{},
		{{ID: "a", Title: "T", Issuer: "I", Date: "2024", Link: "https://x"}},
		{{ID: "a", Title: "T", Issuer: "I"}, {ID: "b", Title: "U", Issuer: "J", Description: "d"}},
	}
	for _, want := range lists {
		require.NoError(t, slot.Save(ctx, want))
		got, err := slot.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSlot_WorkEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := NewWorkEntrySlot(storage.NewMemory().Session(), quietLogger(), nil)

	want := []content.WorkEntry{
		{ID: "w1", Position: "Engineer", Organization: "Acme", Period: "2020 - 2022",
			Responsibilities: []string{"Build", "Ship"}, Skills: []string{"Go"}, Kind: content.KindWork},
		{ID: "w2", Position: "BSc", Organization: "Uni", Period: "2016 - 2020",
			Responsibilities: []string{}, Skills: []string{}, Kind: content.KindEducation},
		{ID: "w3", Position: "Maintainer", Organization: "OSS", Kind: content.KindProject},
	}
	require.NoError(t, slot.Save(ctx, want))

	got, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Nil(t, got[2].Responsibilities)
	assert.NotNil(t, got[1].Skills)
	assert.Empty(t, got[1].Skills)
}

func TestSlot_ProjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := NewProjectSlot(storage.NewMemory().Session(), quietLogger(), nil)

	want := []content.Project{
		{ID: "p1", Title: "Sync", Description: "d", Image: "/img/sync.png", Link: "https://x",
			Technologies: []string{"Go", "Redis"}, Featured: true},
		{ID: "p2", Title: "Blog", Technologies: []string{}, Featured: false},
	}
	require.NoError(t, slot.Save(ctx, want))

	got, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got[0].Featured)
	assert.False(t, got[1].Featured)
	assert.Empty(t, got[1].Technologies)
}

func TestSlot_EmptyListEncodesAsArray(t *testing.T) {
	slot := NewProjectSlot(storage.NewMemory().Session(), quietLogger(), nil)
	raw, err := slot.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestSlot_LoadAbsentSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory().Session()
	slot := NewProjectSlot(store, quietLogger(), nil)

	items, err := slot.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6)
	assert.Equal(t, "Tailwind Transition", items[5].Title)

	stored, present, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, items, stored)
}

func TestSlot_LoadMalformedSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"garbage":      "{not json",
		"null":         "null",
		"object":       `{"id":"1"}`,
		"duplicate id": `[{"id":"1","title":"a"},{"id":"1","title":"b"}]`,
		"missing id":   `[{"title":"a"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			mem := storage.NewMemory()
			mem.Raw("work-entries", raw)
			slot := NewWorkEntrySlot(mem.Session(), quietLogger(), nil)

			_, _, err := slot.Read(ctx)
			require.True(t, errors.Is(err, ErrMalformedContent))

			items, err := slot.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, content.DefaultWorkEntries(), items)

			again, present, err := slot.Read(ctx)
			require.NoError(t, err)
			assert.True(t, present)
			assert.Equal(t, items, again)
		})
	}
}

func TestSlot_LoadReturnsDefaultsWhenSeedingWriteFails(t *testing.T) {
	store := failingStore{Store: storage.NewMemory().Session(), setErr: errors.New("disk full")}
	slot := NewCertificateSlot(store, quietLogger(), nil)

	items, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, content.DefaultCertificates(), items)
}

func TestSlot_LoadPropagatesReadFailure(t *testing.T) {
	boom := errors.New("connection reset")
	store := failingStore{Store: storage.NewMemory().Session(), getErr: boom}
	slot := NewCertificateSlot(store, quietLogger(), nil)

	_, err := slot.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}
