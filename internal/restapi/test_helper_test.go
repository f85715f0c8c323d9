package restapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/YaoxuanLiu37/transitpapers/internal/app"
	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/cache"
	"github.com/YaoxuanLiu37/transitpapers/internal/clock"
	"github.com/YaoxuanLiu37/transitpapers/internal/papers"
)

// testAPI builds a RestAPI backed by an in-memory store seeded with a small
// corpus, plus an httptest server with the full route table.
func testAPI(t *testing.T) (*RestAPI, *httptest.Server) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store, err := papers.Open(appconf.Config{
		DBPath: ":memory:",
		Env:    appconf.Test,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	seedTestCorpus(t, store)

	responseCache := cache.New[[]papers.PaperItem](time.Minute, clock.RealClock{})
	t.Cleanup(responseCache.Close)

	application := &app.Application{
		Config: appconf.Config{DBPath: ":memory:", Env: appconf.Test},
		Logger: logger,
		Clock:  clock.RealClock{},

		PaperStore: store,
	}

	api := NewRestAPI(application, responseCache)

	mux := http.NewServeMux()
	api.SetRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api, server
}

func seedTestCorpus(t *testing.T, store *papers.Store) {
	t.Helper()
	corpus := []papers.Paper{
		{
			ArxivID:    "2101.00001",
			Title:      "Graph Attention Networks Revisited",
			Authors:    []string{"Ada Lovelace"},
			Abstract:   "attention attention graph networks graph attention",
			Categories: []string{"cs.LG"},
			Published:  "2021-01-05T10:00:00Z",
		},
		{
			ArxivID:    "2102.00002",
			Title:      "Sparse Transformers",
			Authors:    []string{"Ada Lovelace", "Alan Turing"},
			Abstract:   "sparse sparse transformers attention scaling",
			Categories: []string{"cs.LG", "cs.CL"},
			Published:  "2021-02-10T08:30:00Z",
		},
	}
	var items []papers.Item
	for _, p := range corpus {
		items = append(items, papers.BuildItems(p)...)
	}
	require.NoError(t, store.PutItems(context.Background(), items))
}
