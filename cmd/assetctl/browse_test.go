package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msb418/it-asset-tracker/internal/domain/models"
	"github.com/msb418/it-asset-tracker/internal/listview"
)

type fakeAPI struct {
	mu     sync.Mutex
	items  []models.Asset
	total  int64
	states []listview.State
	bulks  map[models.BulkAction][]string
}

func newFakeAPI(n int) *fakeAPI {
	f := &fakeAPI{bulks: map[models.BulkAction][]string{}}
	statuses := []models.AssetStatus{models.StatusRetired, models.StatusInStock, models.StatusRepair, models.StatusAssigned}
	for i := 0; i < n; i++ {
		f.items = append(f.items, models.Asset{
			ID:     fmt.Sprintf("id-%d", i+1),
			Name:   fmt.Sprintf("Asset %d", i+1),
			Status: statuses[i%len(statuses)],
		})
	}
	f.total = int64(n) * 3
	return f
}

func (f *fakeAPI) List(ctx context.Context, st listview.State, trash bool) (*models.AssetPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, st)
	items := append([]models.Asset(nil), f.items...)
	return &models.AssetPage{Items: items, Total: f.total, Page: st.Page, PageSize: st.PageSize}, nil
}

func (f *fakeAPI) Bulk(ctx context.Context, action models.BulkAction, ids []string) (*models.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulks[action] = ids
	return &models.MutationResult{OK: true, Affected: int64(len(ids))}, nil
}

func (f *fakeAPI) Labels(ctx context.Context, ids []string) ([]byte, error) {
	return []byte("<html></html>"), nil
}

func (f *fakeAPI) lastState() listview.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[len(f.states)-1]
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.states)
}

func newTestBrowser(t *testing.T, api *fakeAPI, out io.Writer, trash bool) *browser {
	t.Helper()
	b := newBrowser(context.Background(), api, out, trash, 20*time.Millisecond)
	t.Cleanup(func() { b.debounce.Stop() })
	require.NoError(t, b.reload())
	return b
}

func TestBrowser_SortAndStatusOrder(t *testing.T) {
	api := newFakeAPI(4)
	b := newTestBrowser(t, api, io.Discard, false)

	_, err := b.handle("sort status")
	require.NoError(t, err)

	st := api.lastState()
	assert.Equal(t, listview.ColumnStatus, st.Sort)
	assert.Equal(t, models.SortAsc, st.Order)

	var got []models.AssetStatus
	for _, r := range b.rows {
		got = append(got, r.Status)
	}
	assert.Equal(t, []models.AssetStatus{models.StatusInStock, models.StatusAssigned, models.StatusRepair, models.StatusRetired}, got)

	_, err = b.handle("sort status")
	require.NoError(t, err)
	assert.Equal(t, models.SortDesc, api.lastState().Order)
	assert.Equal(t, models.StatusRetired, b.rows[0].Status)

	_, err = b.handle("sort price")
	assert.Error(t, err)
}

func TestBrowser_StatusFilterResetsPage(t *testing.T) {
	api := newFakeAPI(10)
	b := newTestBrowser(t, api, io.Discard, false)

	_, err := b.handle("n")
	require.NoError(t, err)
	assert.Equal(t, 2, api.lastState().Page)

	_, err = b.handle("status In Stock")
	require.NoError(t, err)
	st := api.lastState()
	assert.Equal(t, models.StatusInStock, st.Status)
	assert.Equal(t, 1, st.Page)

	calls := api.calls()
	_, err = b.handle("status In Stock")
	require.NoError(t, err)
	assert.Equal(t, calls, api.calls(), "unchanged filter does not refetch")
}

func TestBrowser_Paging(t *testing.T) {
	api := newFakeAPI(10) // total 30, 3 pages
	b := newTestBrowser(t, api, io.Discard, false)

	_, err := b.handle("page 9")
	require.NoError(t, err)
	assert.Equal(t, 3, api.lastState().Page)

	calls := api.calls()
	_, err = b.handle("n")
	require.NoError(t, err)
	assert.Equal(t, calls, api.calls(), "already on the last page")

	_, err = b.handle("page x")
	assert.Error(t, err)
}

func TestBrowser_SearchIsDebounced(t *testing.T) {
	api := newFakeAPI(3)
	b := newTestBrowser(t, api, io.Discard, false)
	before := api.calls()

	for _, line := range []string{"/l", "/la", "/lap", "/laptop"} {
		_, err := b.handle(line)
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool { return api.calls() == before+1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "laptop", api.lastState().Query)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before+1, api.calls())
}

func TestBrowser_SelectionAndBulk(t *testing.T) {
	api := newFakeAPI(3)
	var out bytes.Buffer
	b := newTestBrowser(t, api, &out, false)

	_, err := b.handle("x 1 3")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[x]")

	_, err = b.handle("d")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"id-1", "id-3"}, api.bulks[models.BulkDelete])
	assert.Empty(t, b.sel.IDs(b.rows), "selection clears after a bulk action")

	_, err = b.handle("d")
	assert.EqualError(t, err, "nothing selected")

	_, err = b.handle("a")
	require.NoError(t, err)
	assert.Len(t, b.sel.IDs(b.rows), 3)
	_, err = b.handle("a")
	require.NoError(t, err)
	assert.Empty(t, b.sel.IDs(b.rows))

	_, err = b.handle("x 4")
	assert.Error(t, err)

	_, err = b.handle("r")
	assert.Error(t, err, "restore is only offered in the trash")
}

func TestBrowser_TrashActions(t *testing.T) {
	api := newFakeAPI(2)
	b := newTestBrowser(t, api, io.Discard, true)

	_, err := b.handle("x 2")
	require.NoError(t, err)
	_, err = b.handle("D")
	require.NoError(t, err)
	assert.Equal(t, []string{"id-2"}, api.bulks[models.BulkDestroy])

	_, err = b.handle("d")
	assert.Error(t, err)
}

func TestBrowser_QuitAndUnknown(t *testing.T) {
	b := newTestBrowser(t, newFakeAPI(1), io.Discard, false)

	quit, err := b.handle("q")
	require.NoError(t, err)
	assert.True(t, quit)

	quit, err = b.handle("frobnicate")
	assert.False(t, quit)
	assert.Error(t, err)
}
