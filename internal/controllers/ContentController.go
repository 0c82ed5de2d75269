package controllers

import (
	"admission/internal/models"
	"admission/internal/providers"
	"admission/internal/services"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

type ContentController struct {
	logger  providers.Logger
	content services.ContentServiceInterface
	cache   providers.CacheProviderInterface
}

func NewContentController(logger providers.Logger, content services.ContentServiceInterface, cache providers.CacheProviderInterface) *ContentController {
	return &ContentController{
		logger:  logger,
		content: content,
		cache:   cache,
	}
}

// serveFromCacheOrCompute keys responses by tree generation, so entries of
// a replaced tree are never served again.
func (cc *ContentController) serveFromCacheOrCompute(w http.ResponseWriter, key string, compute func(tree *models.Tree) (any, error)) {
	gen := cc.content.Generation()
	tree := cc.content.Tree()
	cacheKey := providers.CacheKey(gen, key)

	if data, ok := cc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute(tree)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, StatusFailed, err)
		return
	}
	if err != nil {
		cc.logger.Errorf(providers.TypeGet, "Computing %s failed: %s", key, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	cc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (cc *ContentController) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Hello World!")
}

func (cc *ContentController) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}

func (cc *ContentController) All(w http.ResponseWriter, r *http.Request) {
	cc.serveFromCacheOrCompute(w, "all", func(tree *models.Tree) (any, error) {
		return tree.Root(), nil
	})
}

func (cc *ContentController) AllButtons(w http.ResponseWriter, r *http.Request) {
	cc.serveFromCacheOrCompute(w, "all:btns", func(tree *models.Tree) (any, error) {
		return nonNil(tree.Flatten()), nil
	})
}

func (cc *ContentController) AllReplies(w http.ResponseWriter, r *http.Request) {
	cc.serveFromCacheOrCompute(w, "all:repls", func(tree *models.Tree) (any, error) {
		return nonNil(tree.FlattenReplies()), nil
	})
}

func (cc *ContentController) Buttons(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	cc.serveFromCacheOrCompute(w, "btns:"+path, func(tree *models.Tree) (any, error) {
		return tree.Buttons(path)
	})
}

func (cc *ContentController) Replies(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	cc.serveFromCacheOrCompute(w, "repls:"+path, func(tree *models.Tree) (any, error) {
		return tree.Replies(path)
	})
}

func (cc *ContentController) CountButtons(w http.ResponseWriter, r *http.Request) {
	cc.serveFromCacheOrCompute(w, "count:btns", func(tree *models.Tree) (any, error) {
		return len(tree.Flatten()), nil
	})
}

func (cc *ContentController) CountReplies(w http.ResponseWriter, r *http.Request) {
	cc.serveFromCacheOrCompute(w, "count:repls", func(tree *models.Tree) (any, error) {
		return len(tree.FlattenReplies()), nil
	})
}

func (cc *ContentController) Raw(w http.ResponseWriter, r *http.Request) {
	cc.serveFromCacheOrCompute(w, "raw", func(_ *models.Tree) (any, error) {
		return cc.content.RawRows(), nil
	})
}

func nonNil(buttons []models.Button) []models.Button {
	if buttons == nil {
		return []models.Button{}
	}
	return buttons
}
