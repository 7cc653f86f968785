package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnstone-io/turnstone/internal/store"
	"github.com/turnstone-io/turnstone/internal/testutil"
	"github.com/turnstone-io/turnstone/pkg/types"
)

func testImporter(st Store) *Importer {
	return New(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestImportDirLoadsArchive(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "first.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-1"),
	})

	st := testutil.NewMockStore()
	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{})
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	res := batch.Results[0]
	assert.Equal(t, types.ImportSucceeded, res.Status)
	assert.Equal(t, types.StageLoaded, res.Stage)
	assert.Equal(t, "m-1", res.MatchID)
	assert.Equal(t, 1, batch.Succeeded())

	require.Equal(t, 1, st.LoadCount())
	assert.Equal(t, "m-1", st.Loaded[0].Match.MatchID)

	require.Len(t, st.Runs, 1)
	assert.Equal(t, types.ImportSucceeded, st.Runs[0].Status)
	assert.Equal(t, types.StageLoaded, st.Runs[0].Stage)
	assert.NotEmpty(t, st.Runs[0].ImportID)
	assert.Empty(t, st.Runs[0].Error)
}

func TestImportDirIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.zip"), []byte("not a zip"), 0o644))
	testutil.WriteArchive(t, dir, "good.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-2"),
	})

	st := testutil.NewMockStore()
	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{})
	require.NoError(t, err)

	// bad.zip sorts first and fails before its stage ever advances; the
	// good archive still loads.
	require.Len(t, batch.Results, 2)
	assert.Equal(t, 1, batch.Failed())
	assert.Equal(t, 1, batch.Succeeded())

	failed := batch.Results[0]
	assert.Equal(t, "bad.zip", failed.Archive)
	assert.Equal(t, types.StageDiscovered, failed.Stage)
	require.Error(t, failed.Err)

	// Both attempts are audited, the failure with its error message.
	require.Len(t, st.Runs, 2)
	assert.Equal(t, types.ImportFailed, st.Runs[0].Status)
	assert.NotEmpty(t, st.Runs[0].Error)
}

func TestImportDirDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "save.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-3"),
	})

	st := testutil.NewMockStore()
	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{DryRun: true})
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	res := batch.Results[0]
	assert.Equal(t, types.ImportDryRun, res.Status)
	assert.Equal(t, types.StageExtracted, res.Stage)
	assert.Positive(t, res.Counts.Total())
	assert.Equal(t, 1, batch.Succeeded())

	assert.Zero(t, st.LoadCount())
	assert.Empty(t, st.Runs)
}

func TestImportDirSkipsExistingMatch(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "save.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-4"),
	})

	st := testutil.NewMockStore()
	st.Existing["m-4"] = true

	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{})
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	assert.Equal(t, types.ImportSkipped, batch.Results[0].Status)
	assert.Equal(t, 1, batch.Skipped())
	assert.Zero(t, st.LoadCount())
}

func TestImportDirForceReimports(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "save.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-5"),
	})

	st := testutil.NewMockStore()
	st.Existing["m-5"] = true

	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{Force: true})
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	assert.Equal(t, types.ImportSucceeded, batch.Results[0].Status)
	require.Equal(t, 1, st.LoadCount())
	assert.True(t, st.Forced[0])
}

func TestImportDirConcurrentLoadRace(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "save.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-6"),
	})

	st := testutil.NewMockStore()
	st.LoadErr = store.ErrMatchExists

	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{})
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	assert.Equal(t, types.ImportSkipped, batch.Results[0].Status)
}

func TestImportDirLoadFailureAudited(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "save.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-7"),
	})

	st := testutil.NewMockStore()
	st.LoadErr = errors.New("connection reset")

	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{})
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	res := batch.Results[0]
	assert.Equal(t, types.ImportFailed, res.Status)
	assert.Equal(t, types.StageExtracted, res.Stage)

	require.Len(t, st.Runs, 1)
	assert.Contains(t, st.Runs[0].Error, "connection reset")
}

func TestImportDirIgnoresNonArchives(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.zip"), 0o755))

	st := testutil.NewMockStore()
	batch, err := testImporter(st).ImportDir(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.Empty(t, batch.Results)
}

func TestImportDirMissingDirectory(t *testing.T) {
	st := testutil.NewMockStore()
	_, err := testImporter(st).ImportDir(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
}

func TestImportDirCanceledContext(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "save.zip", map[string][]byte{
		"match.xml": testutil.SampleSaveXML("m-8"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := testutil.NewMockStore()
	batch, err := testImporter(st).ImportDir(ctx, dir, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, batch.Results)
	assert.Zero(t, st.LoadCount())
}
