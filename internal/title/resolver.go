package title

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"markhub/internal/bookmark/model"
	"markhub/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	fetchTimeout = 5 * time.Second
	maxBodyBytes = 512 << 10
	cacheTTL     = 24 * time.Hour
)

// First <title> wins. Pages embedding SVGs with their own title elements get
// a wrong-but-harmless answer, same as the fallback would be.
var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Resolver turns a URL into a best-effort display title by fetching the page
// and extracting its document title. Any fetch or parse failure downgrades
// to the URL's host name; only an unparseable URL is an error.
type Resolver struct {
	client *http.Client
	cache  *redis.Client // nil disables caching
}

func NewResolver(cache *redis.Client) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  cache,
	}
}

func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if err := model.ValidateURL(raw); err != nil {
		return "", err
	}
	u, _ := url.Parse(raw)

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, cacheKey(raw)).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	title := r.fetchTitle(ctx, raw)
	if title == "" {
		title = u.Host
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey(raw), title, cacheTTL).Err(); err != nil {
			logger.Sugar.Warnf("Failed to cache title for %s: %v", raw, err)
		}
	}
	return title, nil
}

// fetchTitle returns "" on any failure; the caller falls back to the host.
func (r *Resolver) fetchTitle(ctx context.Context, raw string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Sugar.Debugf("Title fetch failed for %s: %v", raw, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}

	m := titleRe.FindSubmatch(body)
	if m == nil {
		return ""
	}
	t := html.UnescapeString(strings.TrimSpace(string(m[1])))
	return strings.Join(strings.Fields(t), " ")
}

func cacheKey(raw string) string {
	return "title:" + raw
}
