package render

import (
	"encoding/base64"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// DefaultPopupCacheSize bounds the number of rendered popups kept in memory.
const DefaultPopupCacheSize = 32

// PopupCache renders the HTML popup for an individual and keeps the most
// recently used ones. Photos are embedded as data URIs.
type PopupCache struct {
	photoDir string
	cache    *lru.Cache[int64, string]
}

// NewPopupCache creates a cache reading photos from photoDir.
func NewPopupCache(photoDir string, size int) (*PopupCache, error) {
	if size <= 0 {
		size = DefaultPopupCacheSize
	}
	c, err := lru.New[int64, string](size)
	if err != nil {
		return nil, fmt.Errorf("popup cache: %w", err)
	}
	return &PopupCache{photoDir: photoDir, cache: c}, nil
}

// Popup returns the popup HTML for ind.
func (p *PopupCache) Popup(ind *domain.Individual) string {
	if s, ok := p.cache.Get(ind.ID); ok {
		return s
	}
	s := p.render(ind)
	p.cache.Add(ind.ID, s)
	return s
}

// Invalidate drops the cached popup of an individual after it changed.
func (p *PopupCache) Invalidate(id int64) {
	p.cache.Remove(id)
}

// Len reports the number of cached popups.
func (p *PopupCache) Len() int {
	return p.cache.Len()
}

func (p *PopupCache) render(ind *domain.Individual) string {
	data, err := p.photo(ind.Photo)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("read photo", "individual_id", ind.ID, "photo", ind.Photo, "error", err)
		}
		return fmt.Sprintf("<h3>%s</h3>\n<p>No photo available</p>\n<p>Individual %d, group %d</p>",
			html.EscapeString(ind.Species), ind.ID, ind.GroupID)
	}

	return fmt.Sprintf("<h3>%s</h3>\n<img src=\"data:%s;base64,%s\" width=\"300px\">\n<p>Individual %d</p>\n<p>Group %d</p>",
		html.EscapeString(ind.Species),
		http.DetectContentType(data),
		base64.StdEncoding.EncodeToString(data),
		ind.ID, ind.GroupID)
}

func (p *PopupCache) photo(name string) ([]byte, error) {
	if name == "" || p.photoDir == "" {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(p.photoDir, filepath.Base(name)))
}
