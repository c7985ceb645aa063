package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// writeBaseline writes a minimal workbook; tiers lists the sheets to include.
func writeBaseline(t *testing.T, path string, tiers ...string) {
	t.Helper()
	f := excelize.NewFile()
	for i, tier := range tiers {
		name := tier + " Baseline"
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		rows := [][]interface{}{
			{"banner"},
			{"SORT ID", "Family", "Control Name", "NIST Control Description"},
			{"AC-02", "AC", "Account Management", "Define and document account types."},
		}
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func testSources(t *testing.T) (ports.Sources, string) {
	t.Helper()
	dir := t.TempDir()
	rfcDir := filepath.Join(dir, "rfcs")
	require.NoError(t, os.MkdirAll(rfcDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(rfcDir, "rfc-0007.md"),
		[]byte("# Significant Change Notifications\n\nRevises account management reviews under AC-2.\n"),
		0644,
	))
	baseline := filepath.Join(dir, "baseline.xlsx")
	writeBaseline(t, baseline, "Low", "Moderate", "High")
	return ports.Sources{BaselinePath: baseline, RFCDir: rfcDir}, baseline
}

func newTestApp(sources ports.Sources) *App {
	return New(NewCorpusLoader(), nil, "test", sources, zerolog.Nop())
}

func TestApp_QueryBeforeLoad(t *testing.T) {
	a := newTestApp(ports.Sources{})

	_, err := a.Search("anything", ports.SearchOptions{})
	var notReady *ports.IndexNotReadyError
	assert.True(t, errors.As(err, &notReady))

	_, _, err = a.Crosswalk(ports.BaselineLow)
	assert.True(t, errors.As(err, &notReady))

	assert.False(t, a.Ready())
	assert.False(t, a.Stats().Ready)
}

func TestApp_RefreshPublishes(t *testing.T) {
	sources, _ := testSources(t)
	a := newTestApp(sources)
	require.NoError(t, a.Refresh())

	result, err := a.Search("AC-2", ports.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "AC-2", result.Hits[0].ID)

	stats := a.Stats()
	assert.True(t, stats.Ready)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.Controls)
}

func TestApp_UnchangedSourcesSkipRebuild(t *testing.T) {
	sources, _ := testSources(t)
	a := newTestApp(sources)
	require.NoError(t, a.Refresh())

	first := a.Snapshot()
	require.NoError(t, a.Refresh())
	// Same fingerprint: the published snapshot is untouched.
	assert.Same(t, first, a.Snapshot())
}

func TestApp_FailedRefreshRetainsSnapshot(t *testing.T) {
	sources, baseline := testSources(t)
	a := newTestApp(sources)
	require.NoError(t, a.Refresh())
	good := a.Snapshot()

	// Replace the workbook with one missing the High sheet.
	writeBaseline(t, baseline, "Low", "Moderate")

	err := a.Refresh()
	var formatErr *ports.SourceFormatError
	require.True(t, errors.As(err, &formatErr))

	// Prior snapshot still answers queries.
	assert.Same(t, good, a.Snapshot())
	result, err := a.Search("account management", ports.SearchOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Hits)
}

// blockingLoader lets the test hold a load open to exercise coalescing.
type blockingLoader struct {
	mu      sync.Mutex
	loads   int
	release chan struct{}
}

func (l *blockingLoader) Load(ports.Sources) (*ports.Corpus, error) {
	l.mu.Lock()
	l.loads++
	l.mu.Unlock()
	<-l.release
	return ports.NewCorpus(), nil
}

func (l *blockingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

func TestApp_RefreshCoalesced(t *testing.T) {
	loader := &blockingLoader{release: make(chan struct{})}
	a := New(loader, nil, "test", ports.Sources{}, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- a.Refresh() }()

	// Wait until the first load is in flight, then stack up triggers.
	for loader.count() == 0 {
		time.Sleep(time.Millisecond)
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, a.Refresh()) // queued, returns immediately
	}

	close(loader.release)
	require.NoError(t, <-done)

	// Five overlapping triggers coalesce into a single queued rerun.
	assert.LessOrEqual(t, loader.count(), 2)
	assert.True(t, a.Ready())
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	sources, baseline := testSources(t)

	a, err := Fingerprint(sources)
	require.NoError(t, err)
	b, err := Fingerprint(sources)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	require.NoError(t, os.WriteFile(baseline, []byte("changed"), 0644))
	c, err := Fingerprint(sources)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
