package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/storage"
	"github.com/mmynk/storefront/internal/storage/sqlite"
	"github.com/mmynk/storefront/pkg/logging"
)

// staticFetcher returns a fixed body.
type staticFetcher struct {
	body  []byte
	err   error
	calls atomic.Int32
}

func (f *staticFetcher) FetchProducts(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	return f.body, f.err
}

// countingObserver records what the importer reports.
type countingObserver struct {
	runs map[bool]int
	rows map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{runs: map[bool]int{}, rows: map[string]int{}}
}

func (o *countingObserver) ObserveImportRun(ok bool)        { o.runs[ok]++ }
func (o *countingObserver) ObserveImportRow(outcome string) { o.rows[outcome]++ }

// failingStore fails inserts for one id and delegates everything else.
type failingStore struct {
	storage.ItemStore
	failID int64
}

func (s *failingStore) InsertItemIfAbsent(ctx context.Context, item *models.Item) (bool, error) {
	if item.ID == s.failID {
		return false, errors.New("constraint failed")
	}
	return s.ItemStore.InsertItemIfAbsent(ctx, item)
}

func newStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "data", "database.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newImporter(store storage.ItemStore, fetcher Fetcher, logs *bytes.Buffer, opts ...Option) *Importer {
	logger := logging.New(logs, slog.LevelDebug)
	return NewImporter(store, fetcher, append([]Option{WithLogger(logger)}, opts...)...)
}

// fakeProducts builds a products envelope with n random rows (ids 1..n).
func fakeProducts(t *testing.T, n int) []byte {
	t.Helper()
	faker := gofakeit.New(42)

	products := make([]map[string]any, n)
	for i := range products {
		products[i] = map[string]any{
			"id":                 i + 1,
			"title":              faker.ProductName(),
			"description":        faker.ProductDescription(),
			"price":              faker.Price(1, 500),
			"images":             []string{faker.URL(), faker.URL()},
			"category":           faker.ProductCategory(),
			"stock":              faker.IntRange(0, 100),
			"rating":             faker.Float64Range(0, 5),
			"discountPercentage": faker.Float64Range(0, 30),
			"brand":              faker.Company(),
			"sku":                faker.LetterN(8),
			"reviews": []map[string]any{
				{"rating": faker.IntRange(1, 5), "comment": faker.ProductDescription(), "reviewerName": faker.Name()},
			},
		}
	}

	body, err := json.Marshal(map[string]any{"products": products, "total": n, "skip": 0, "limit": n})
	require.NoError(t, err)
	return body
}

func TestImporter_ImportsAllRows(t *testing.T) {
	store := newStore(t)
	observer := newCountingObserver()
	var logs bytes.Buffer

	im := newImporter(store, &staticFetcher{body: fakeProducts(t, 25)}, &logs, WithObserver(observer))
	report, err := im.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 25, report.Total)
	assert.Equal(t, 25, report.Inserted)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Len(t, report.Rows, 25)

	count, err := store.CountItems(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	assert.Equal(t, 1, observer.runs[true])
	assert.Equal(t, 25, observer.rows["inserted"])
	assert.Contains(t, logs.String(), "Catalog import finished")
}

func TestImporter_IsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	body := fakeProducts(t, 10)
	var logs bytes.Buffer

	first, err := newImporter(store, &staticFetcher{body: body}, &logs).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Inserted)

	before, err := store.GetItem(ctx, 3)
	require.NoError(t, err)

	second, err := newImporter(store, &staticFetcher{body: body}, &logs).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 10, second.Skipped)
	assert.Zero(t, second.Failed)

	count, err := store.CountItems(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	after, err := store.GetItem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImporter_LaterFetchDoesNotRepairExistingRow(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	var logs bytes.Buffer

	bad := []byte(`{"products":[{"id":1,"title":"typo","description":"d","price":1,"stock":1}]}`)
	good := []byte(`{"products":[{"id":1,"title":"fixed","description":"d","price":1,"stock":1}]}`)

	_, err := newImporter(store, &staticFetcher{body: bad}, &logs).Run(ctx)
	require.NoError(t, err)
	report, err := newImporter(store, &staticFetcher{body: good}, &logs).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)

	item, err := store.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "typo", item.Title)
}

func TestImporter_BadPriceFailsOnlyThatRow(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	var logs bytes.Buffer

	body := []byte(`{"products":[
		{"id":1,"title":"A","description":"a","price":"9.99","stock":1},
		{"id":2,"title":"B","description":"b","price":"not a number","stock":1},
		{"id":3,"title":"C","description":"c","price":3,"stock":1}
	]}`)

	report, err := newImporter(store, &staticFetcher{body: body}, &logs).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Failed)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, int64(2), failures[0].ID)
	assert.Equal(t, ReasonInvalidPrice, failures[0].Reason)

	_, err = store.GetItem(ctx, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	for _, id := range []int64{1, 3} {
		_, err := store.GetItem(ctx, id)
		assert.NoError(t, err, "item %d should be present", id)
	}

	assert.Contains(t, logs.String(), "Failed to import item")
	assert.Contains(t, logs.String(), "reason=invalid_price")
}

func TestImporter_RowFailuresAreIndependent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	var logs bytes.Buffer

	body := []byte(`{"products":[
		{"id":1,"title":"A","price":1,"stock":1},
		{"title":"no id","price":1},
		"garbage",
		{"id":4,"title":"D","price":4,"stock":"lots"},
		{"id":5,"title":"E","price":5,"stock":5},
		{"id":6,"title":"F","price":6,"stock":6}
	]}`)

	im := newImporter(&failingStore{ItemStore: store, failID: 5}, &staticFetcher{body: body}, &logs)
	report, err := im.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 4, report.Failed)

	reasons := make(map[int]Reason)
	for _, f := range report.Failures() {
		reasons[f.Index] = f.Reason
	}
	assert.Equal(t, map[int]Reason{
		1: ReasonMissingID,
		2: ReasonInvalidRow,
		3: ReasonInvalidRow,
		4: ReasonInsertError,
	}, reasons)

	count, err := store.CountItems(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImporter_MalformedResponseLeavesTableUnchanged(t *testing.T) {
	bodies := map[string]string{
		"missing products":   `{"total":0}`,
		"products is object": `{"products":{"id":9,"title":"X","price":1,"stock":1}}`,
		"products is null":   `{"products":null}`,
		"not json":           `upstream error`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			observer := newCountingObserver()
			var logs bytes.Buffer

			// seed one row so "unchanged" is observable
			_, err := store.InsertItemIfAbsent(ctx, &models.Item{ID: 100, Title: "seed", Description: "s", Price: 1, Stock: 1})
			require.NoError(t, err)

			im := newImporter(store, &staticFetcher{body: []byte(body)}, &logs, WithObserver(observer))
			report, err := im.Run(ctx)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, report)

			count, err := store.CountItems(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			assert.NotContains(t, logs.String(), "item_id")
			assert.Equal(t, 1, observer.runs[false])
			assert.Empty(t, observer.rows)
		})
	}
}

func TestImporter_FetchErrorIsBatchFailure(t *testing.T) {
	store := newStore(t)
	var logs bytes.Buffer
	fetchErr := errors.New("connection refused")

	report, err := newImporter(store, &staticFetcher{err: fetchErr}, &logs).Run(context.Background())
	assert.ErrorIs(t, err, fetchErr)
	assert.Nil(t, report)
	assert.NotContains(t, logs.String(), "item_id")
}

func TestImporter_CancelledContextStopsBetweenRows(t *testing.T) {
	store := newStore(t)
	var logs bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newImporter(store, &staticFetcher{body: fakeProducts(t, 3)}, &logs).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Inserted)
}

func TestImporter_ConcreteScenario(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	var logs bytes.Buffer

	body := []byte(`{"products":[{"id":1,"title":"A","price":"9.99","images":["x.png"],"category":"c","stock":5}]}`)

	report, err := newImporter(store, &staticFetcher{body: body}, &logs).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)

	item, err := store.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9.99, item.Price)
	assert.Equal(t, []string{"x.png"}, item.ImageURLs())
	require.NotNil(t, item.Category)
	assert.Equal(t, "c", *item.Category)
	assert.Equal(t, int64(5), item.Stock)
	assert.Nil(t, item.Reviews)
}

func TestImporter_ImagesAndReviewsRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	var logs bytes.Buffer

	images := `["https://cdn.example.com/1.png","https://cdn.example.com/2.png"]`
	reviews := `[
		{"rating":4,"comment":"Nice","date":"2024-05-23T08:56:21.618Z","reviewerName":"Lucas Gordon","reviewerEmail":"lucas.gordon@x.dummyjson.com"},
		{"rating":4.5,"comment":"ok","helpful":3},
		{"reviewerName":"x"}
	]`
	body := []byte(`{"products":[{"id":77,"title":"Lamp","description":"d","price":10,"stock":2,
		"images":` + images + `,"reviews":` + reviews + `}]}`)

	report, err := newImporter(store, &staticFetcher{body: body}, &logs).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted, report.Failures())

	item, err := store.GetItem(ctx, 77)
	require.NoError(t, err)
	assert.JSONEq(t, images, string(item.Images))
	assert.JSONEq(t, reviews, string(item.Reviews))

	shown := item.ReviewList()
	require.Len(t, shown, 3)
	assert.Equal(t, 4.5, shown[1].Rating)
	assert.Equal(t, "x", shown[2].ReviewerName)
}

func TestImporter_LenientNumbers(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	var logs bytes.Buffer

	body := []byte(`{"products":[
		{"id":3,"title":"A","price":1,"stock":1.0},
		{"id":4.0,"title":"B","price":1,"stock":2},
		{"id":5,"title":"C","price":1,"stock":0.5}
	]}`)

	report, err := newImporter(store, &staticFetcher{body: body}, &logs).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, int64(5), report.Failures()[0].ID)
	assert.Equal(t, ReasonInvalidRow, report.Failures()[0].Reason)

	item, err := store.GetItem(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Stock)
}

func TestImporter_OverHTTP(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"products":[{"id":1,"title":"A","description":"a","price":1.5,"stock":1}],"total":1}`)
	}))
	defer srv.Close()

	store := newStore(t)
	var logs bytes.Buffer

	im := newImporter(store, NewHTTPFetcher(srv.URL+"/products?limit=0", srv.Client()), &logs)
	report, err := im.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, report.Inserted)
	assert.True(t, strings.Contains(logs.String(), "Inserted item"))
}
