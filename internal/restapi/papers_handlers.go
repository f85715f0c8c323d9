package restapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/YaoxuanLiu37/transitpapers/internal/papers"
)

// parseLimit reads the limit query parameter, defaulting when absent.
// The second return value is false when the parameter is not an integer.
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return papers.DefaultQueryLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return limit, true
}

// recentPapersHandler serves GET /papers/recent?category=&limit=.
func (api *RestAPI) recentPapersHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		api.sendError(w, r, http.StatusBadRequest, "missing category")
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		api.sendError(w, r, http.StatusBadRequest, "invalid limit")
		return
	}

	cacheKey := fmt.Sprintf("recent|%s|%d", category, limit)
	items, err := api.cachedQuery(cacheKey, func() ([]papers.PaperItem, error) {
		return api.PaperStore.RecentInCategory(r.Context(), category, limit)
	})
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, map[string]any{
		"category": category,
		"papers":   items,
		"count":    len(items),
	})
}

// papersByAuthorHandler serves GET /papers/author/{name}.
func (api *RestAPI) papersByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorName := r.PathValue("name")
	if authorName == "" {
		api.sendError(w, r, http.StatusBadRequest, "missing author_name")
		return
	}

	items, err := api.PaperStore.PapersByAuthor(r.Context(), authorName)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, map[string]any{
		"author_name": authorName,
		"papers":      items,
		"count":       len(items),
	})
}

// papersByKeywordHandler serves GET /papers/keyword/{keyword}?limit=.
func (api *RestAPI) papersByKeywordHandler(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")
	if keyword == "" {
		api.sendError(w, r, http.StatusBadRequest, "missing keyword")
		return
	}
	limit, ok := parseLimit(r)
	if !ok {
		api.sendError(w, r, http.StatusBadRequest, "invalid limit")
		return
	}

	items, err := api.PaperStore.PapersByKeyword(r.Context(), keyword, limit)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, map[string]any{
		"keyword": keyword,
		"papers":  items,
		"count":   len(items),
	})
}

// searchPapersHandler serves GET /papers/search?category=&start=&end=.
func (api *RestAPI) searchPapersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	startDate := q.Get("start")
	endDate := q.Get("end")
	if category == "" || startDate == "" || endDate == "" {
		api.sendError(w, r, http.StatusBadRequest, "missing category/start/end")
		return
	}

	items, err := api.PaperStore.PapersInDateRange(r.Context(), category, startDate, endDate)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, map[string]any{
		"category": category,
		"start":    startDate,
		"end":      endDate,
		"papers":   items,
		"count":    len(items),
	})
}

// paperByIDHandler serves GET /papers/{id}.
func (api *RestAPI) paperByIDHandler(w http.ResponseWriter, r *http.Request) {
	arxivID := r.PathValue("id")
	if arxivID == "" {
		api.sendError(w, r, http.StatusBadRequest, "missing arxiv_id")
		return
	}

	item, err := api.PaperStore.GetPaperByID(r.Context(), arxivID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if item == nil {
		api.sendNotFound(w, r)
		return
	}

	api.sendResponse(w, r, item)
}

// cachedQuery serves a query through the response cache when one is
// configured. Cache misses fall through to the store and populate the
// cache on success.
func (api *RestAPI) cachedQuery(key string, query func() ([]papers.PaperItem, error)) ([]papers.PaperItem, error) {
	if api.ResponseCache != nil {
		if items, ok := api.ResponseCache.Get(key); ok {
			if api.Metrics != nil {
				api.Metrics.CacheHitsTotal.WithLabelValues("hit").Inc()
			}
			return items, nil
		}
		if api.Metrics != nil {
			api.Metrics.CacheHitsTotal.WithLabelValues("miss").Inc()
		}
	}

	items, err := query()
	if err != nil {
		return nil, err
	}
	if api.ResponseCache != nil {
		api.ResponseCache.Set(key, items)
	}
	return items, nil
}
