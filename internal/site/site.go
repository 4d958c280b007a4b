package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/simorghai/simorgh-bot/internal/models"
	"go.uber.org/zap"
)

const (
	maxSearchResults = 8
	maxExcerptRunes  = 3500
)

// Client talks to the site's search and stats endpoints. Both response shapes
// are loosely contracted, so everything is decoded into untyped JSON and the
// client tolerates missing structure instead of failing.
type Client struct {
	searchURL    string
	statsURL     string
	searchClient *http.Client
	statsClient  *http.Client
	logger       *zap.Logger
}

func NewClient(searchURL, statsURL string, logger *zap.Logger) *Client {
	return &Client{
		searchURL:    searchURL,
		statsURL:     statsURL,
		searchClient: &http.Client{Timeout: 20 * time.Second},
		statsClient:  &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

// Search queries the site search endpoint and renders the outcome as a
// user-presentable message. It never returns an error: configuration gaps,
// transport failures and unparseable bodies all map to fixed reply texts.
func (c *Client) Search(ctx context.Context, query string) string {
	if c.searchURL == "" {
		return "⚠️ آدرس API جستجو پیکربندی نشده است."
	}

	reqURL := c.searchURL + "?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to build search request", zap.Error(err))
		return "❌ خطای داخلی هنگام جستجو. لطفاً بعداً تلاش کنید."
	}

	resp, err := c.searchClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("Search request timed out", zap.Error(err))
			return "❌ زمان جستجو طولانی شد. دوباره تلاش کنید."
		}
		c.logger.Error("Search request failed", zap.Error(err))
		return "❌ خطای داخلی هنگام جستجو. لطفاً بعداً تلاش کنید."
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read search response", zap.Error(err))
		return "❌ خطای داخلی هنگام جستجو. لطفاً بعداً تلاش کنید."
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Search API returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query))
		return fmt.Sprintf("❌ خطا در جستجوی سایت (کد %d).", resp.StatusCode)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		// Not JSON (HTML or plain text): return a raw excerpt.
		return "🔎 نتیجه جستجو (متن):\n\n" + truncate(string(body), maxExcerptRunes)
	}

	results := extractResults(data)
	list, ok := results.([]any)
	if !ok {
		pretty, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "🔎 نتیجه جستجو (متن):\n\n" + truncate(string(body), maxExcerptRunes)
		}
		return "🔎 نتایج (JSON):\n\n" + truncate(string(pretty), maxExcerptRunes)
	}

	if len(list) == 0 {
		return "❌ نتیجه‌ای یافت نشد."
	}

	if len(list) > maxSearchResults {
		list = list[:maxSearchResults]
	}
	formatted := make([]string, 0, len(list))
	for _, item := range list {
		formatted = append(formatted, formatEntry(item))
	}
	return "🔎 نتایج جستجو:\n\n" + strings.Join(formatted, "\n\n")
}

// Stats fetches the site visit counters. ok is false when the endpoint is
// unconfigured, unreachable, or its body does not carry recognizable
// counters; the caller is expected to fall back to per-user usage stats.
func (c *Client) Stats(ctx context.Context) (*models.SiteStats, bool) {
	if c.statsURL == "" {
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statsURL, nil)
	if err != nil {
		c.logger.Warn("Failed to build stats request", zap.Error(err))
		return nil, false
	}

	resp, err := c.statsClient.Do(req)
	if err != nil {
		c.logger.Warn("Could not fetch site stats", zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Site stats returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, false
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Warn("Failed to parse site stats", zap.Error(err))
		return nil, false
	}

	today, okToday := firstCounter(data, "today", "visits_today", "daily")
	total, okTotal := firstCounter(data, "total", "visits_total", "all_time")
	if !okToday || !okTotal {
		c.logger.Warn("Site stats body had no recognizable counters")
		return nil, false
	}

	return &models.SiteStats{Today: today, Total: total}, true
}

// extractResults looks for a result list under the conventional keys, or
// falls back to the body itself.
func extractResults(data any) any {
	if m, ok := data.(map[string]any); ok {
		if v, ok := m["results"]; ok && v != nil {
			return v
		}
		if v, ok := m["items"]; ok && v != nil {
			return v
		}
	}
	return data
}

func formatEntry(item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return "• " + fmt.Sprint(item)
	}

	title := fieldString(m, "title", "name", "id")
	if title == "" {
		title = fmt.Sprint(m)
	}
	line := "• " + title

	if summary := fieldString(m, "summary", "excerpt"); summary != "" {
		line += "\n  " + summary
	}
	return line
}

func fieldString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if s != "" {
				return s
			}
			continue
		}
		return fmt.Sprint(v)
	}
	return ""
}

func firstCounter(m map[string]any, keys ...string) (int64, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n), true
		case string:
			if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
