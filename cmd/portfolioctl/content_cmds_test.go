package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/repository"
	"portfolio-sync/internal/storage"
)

func TestPrepareImport_AssignsIDsAndNormalizes(t *testing.T) {
	items, err := prepareImport([]content.Project{
		{ID: " keep ", Title: "  Kept  "},
		{Title: "Fresh", Technologies: []string{" Go ", ""}},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "keep", items[0].ID)
	assert.Equal(t, "Kept", items[0].Title)
	assert.NotEmpty(t, items[1].ID)
	assert.NotEqual(t, "keep", items[1].ID)
	assert.Equal(t, []string{"Go"}, items[1].Technologies)
}

func TestPrepareImport_RejectsInvalidAndDuplicates(t *testing.T) {
	_, err := prepareImport([]content.Certificate{{ID: "a", Title: "No issuer"}})
	assert.ErrorIs(t, err, content.ErrInvalidRecord)

	_, err = prepareImport([]content.Project{{ID: "a", Title: "One"}, {ID: " a", Title: "Two"}})
	assert.ErrorIs(t, err, errDuplicateID)
}

func TestDecodeList_YAMLAndJSON(t *testing.T) {
	fromYAML, err := decodeList[content.WorkEntry]([]byte(`
- position: Engineer
  organization: Acme
  skills: [Go]
`), formatYAML)
	require.NoError(t, err)
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "Acme", fromYAML[0].Organization)

	fromJSON, err := decodeList[content.WorkEntry]([]byte(`[{"position":"Engineer","organization":"Acme","skills":["Go"]}]`), formatJSON)
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromJSON)

	_, err = decodeList[content.WorkEntry]([]byte(`[]`), "toml")
	assert.ErrorIs(t, err, errUnknownFormat)
}

func TestEncodeList_RoundTripsThroughYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeList(&buf, content.DefaultCertificates(), formatYAML))

	back, err := decodeList[content.Certificate](buf.Bytes(), formatYAML)
	require.NoError(t, err)
	assert.Equal(t, content.DefaultCertificates(), back)

	buf.Reset()
	require.NoError(t, encodeList[content.Project](&buf, nil, formatJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, formatYAML, formatFromPath("x/projects.YML"))
	assert.Equal(t, formatYAML, formatFromPath("projects.yaml"))
	assert.Equal(t, formatJSON, formatFromPath("projects.json"))
	assert.Equal(t, formatJSON, formatFromPath("projects"))
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}

func TestExportSlot_AbsentSlotIsNotSeeded(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory().Session()
	slots := repository.NewContentSlots(store, log.New(io.Discard, "", 0), nil)

	var buf bytes.Buffer
	require.NoError(t, exportSlot(ctx, slots.Certificates, formatJSON, &buf))

	var got []content.Certificate
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, content.DefaultCertificates(), got)

	_, ok, err := store.Get(ctx, slots.Certificates.Key())
	require.NoError(t, err)
	assert.False(t, ok, "export must not write the defaults back")
}

func TestExportSlot_MalformedSlotIsLeftAlone(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory().Session()
	slots := repository.NewContentSlots(store, log.New(io.Discard, "", 0), nil)
	require.NoError(t, store.Set(ctx, slots.Projects.Key(), "not json"))

	var buf bytes.Buffer
	require.NoError(t, exportSlot(ctx, slots.Projects, formatJSON, &buf))

	var got []content.Project
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, content.DefaultProjects(), got)

	raw, ok, err := store.Get(ctx, slots.Projects.Key())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "not json", raw)
}

func TestExportSlot_StoredList(t *testing.T) {
	ctx := context.Background()
	slots := repository.NewContentSlots(storage.NewMemory().Session(), log.New(io.Discard, "", 0), nil)
	stored := []content.Project{{ID: "p1", Title: "Sync"}}
	require.NoError(t, slots.Projects.Save(ctx, stored))

	var buf bytes.Buffer
	require.NoError(t, exportSlot(ctx, slots.Projects, formatYAML, &buf))

	back, err := decodeList[content.Project](buf.Bytes(), formatYAML)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "p1", back[0].ID)
	assert.Equal(t, "Sync", back[0].Title)
}
