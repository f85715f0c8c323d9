package webui

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YaoxuanLiu37/transitpapers/internal/app"
	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/papers"
)

func testWebUI(t *testing.T, env appconf.Environment) *WebUI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store, err := papers.Open(appconf.Config{DBPath: ":memory:", Env: appconf.Test}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewWebUI(&app.Application{
		Config:     appconf.Config{Env: env, DBPath: ":memory:"},
		Logger:     logger,
		PaperStore: store,
	})
}

func TestDebugIndexHandler_ProductionReturns404(t *testing.T) {
	webUI := testWebUI(t, appconf.Production)

	req := httptest.NewRequest(http.MethodGet, "/debug?dataType=items", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code, "Should return 404 in Production")
}

func TestDebugIndexHandler_DevelopmentReturns200(t *testing.T) {
	webUI := testWebUI(t, appconf.Development)

	req := httptest.NewRequest(http.MethodGet, "/debug?dataType=items", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Item Counts")
}

func TestDebugIndexHandler_UnknownDataType(t *testing.T) {
	webUI := testWebUI(t, appconf.Development)

	req := httptest.NewRequest(http.MethodGet, "/debug?dataType=bogus", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Choose a data type")
}
