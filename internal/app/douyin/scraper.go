package douyin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/shaobohan917/douyin-toolbox/internal/app/model"
)

const (
	// The share page is only rendered for mobile user agents; desktop UAs get
	// a redirect to the full site which carries no data island.
	mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) EdgiOS/121.0.2277.107 Version/17.0 Mobile/15E148 Safari/604.1"

	// Requests without a douyin referer are rejected by the CDN.
	douyinReferer = "https://www.douyin.com/"

	defaultSharePageBase = "https://www.iesdouyin.com/share/video/%s/"

	routerDataMarker = "window._ROUTER_DATA"

	unknownNickname = "未知用户"
)

// Client resolves douyin share links and scrapes the mobile share page into a
// normalized video record.
type Client struct {
	httpClient       *http.Client
	noRedirectClient *http.Client

	// sharePageBase is a printf template with one %s for the video id.
	// Overridable for tests.
	sharePageBase string
}

// Option configures a Client.
type Option func(*Client)

// WithSharePageBase overrides the mobile share page URL template.
func WithSharePageBase(base string) Option {
	return func(c *Client) {
		c.sharePageBase = base
	}
}

// WithHTTPClient overrides the HTTP client used for page fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a douyin client with bounded timeouts on both the
// redirect probe and the page fetch.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		noRedirectClient: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		sharePageBase: defaultSharePageBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse runs the full pipeline: pull the share URL out of free-form text,
// resolve a short link to its canonical form, extract the video id and scrape
// the share page.
func (c *Client) Parse(ctx context.Context, text string) (*model.Video, error) {
	shareURL := ExtractShareURL(text)

	targetURL := shareURL
	if strings.Contains(shareURL, "v.douyin.com") {
		targetURL = c.ResolveShortLink(ctx, shareURL)
	}

	videoID, ok := ExtractVideoID(targetURL)
	if !ok {
		return nil, newScrapeError(CodeInvalidURL, "invalid douyin URL: "+targetURL, nil)
	}

	return c.FetchVideo(ctx, videoID)
}

// ResolveShortLink turns a v.douyin.com short link into its long form. First
// attempt probes with redirects disabled and reads the Location header; if
// that yields nothing the second attempt follows redirects and takes the
// final URL. Both attempts failing passes the short URL through unchanged so
// the caller fails at id extraction with a precise error.
func (c *Client) ResolveShortLink(ctx context.Context, shortURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return shortURL
	}
	req.Header.Set("User-Agent", mobileUserAgent)

	resp, err := c.noRedirectClient.Do(req)
	if err == nil {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location != "" {
			return location
		}
	}

	// No redirect signal, or the probe failed. Follow redirects instead.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return shortURL
	}
	req.Header.Set("User-Agent", mobileUserAgent)

	resp, err = c.httpClient.Do(req)
	if err != nil {
		return shortURL
	}
	defer resp.Body.Close()

	return resp.Request.URL.String()
}

// FetchVideo fetches the mobile share page for videoID and extracts the
// normalized video metadata from its embedded _ROUTER_DATA JSON.
func (c *Client) FetchVideo(ctx context.Context, videoID string) (*model.Video, error) {
	pageURL := fmt.Sprintf(c.sharePageBase, videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, newScrapeError(CodeUpstreamFetch, "build share page request", err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Referer", douyinReferer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newScrapeError(CodeUpstreamFetch, "fetch share page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newScrapeError(CodeUpstreamFetch,
			fmt.Sprintf("share page returned status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, newScrapeError(CodeParse, "read share page HTML", err)
	}

	rawJSON := findRouterData(doc)
	if rawJSON == "" {
		return nil, newScrapeError(CodeStructure, "failed to extract _ROUTER_DATA from page", nil)
	}

	var rd routerData
	if err := json.Unmarshal([]byte(rawJSON), &rd); err != nil {
		return nil, newScrapeError(CodeParse, "parse _ROUTER_DATA JSON", err)
	}

	info, _, err := resolveVariant(&rd)
	if err != nil {
		return nil, err
	}
	if len(info.ItemList) == 0 {
		return nil, newScrapeError(CodeStructure, "empty item list in _ROUTER_DATA", nil)
	}

	return buildVideo(videoID, &info.ItemList[0]), nil
}

// findRouterData scans the inline scripts for the _ROUTER_DATA assignment and
// returns the raw JSON document, or "" when the page carries none.
func findRouterData(doc *goquery.Document) string {
	var raw string
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, routerDataMarker)
		if idx < 0 {
			return true
		}
		rest := text[idx+len(routerDataMarker):]
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return true
		}
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest[eq+1:]), ";"))
		return false
	})
	return raw
}

// buildVideo assembles the normalized record. Every optional upstream field
// falls back to a zero value or sentinel; only the play address is required.
func buildVideo(videoID string, item *pageItem) *model.Video {
	watermarkURL := item.Video.PlayAddr.first()
	cleanURL := RemoveWatermark(watermarkURL)

	title := strings.TrimSpace(item.Desc)
	if title == "" {
		title = "douyin_" + videoID
	}
	title = sanitizeTitle(title)

	author := model.Author{Nickname: unknownNickname}
	if item.Author != nil {
		author.UID = item.Author.UID
		if item.Author.Nickname != "" {
			author.Nickname = item.Author.Nickname
		}
		author.Avatar = item.Author.AvatarThumb.first()
		if author.Avatar == "" {
			author.Avatar = item.Author.Avatar
		}
	}

	stats := model.Statistics{}
	if item.Statistics != nil {
		stats = model.Statistics{
			DiggCount:    item.Statistics.DiggCount,
			CommentCount: item.Statistics.CommentCount,
			ShareCount:   item.Statistics.ShareCount,
			CollectCount: item.Statistics.CollectCount,
		}
	}

	createTime := item.CreateTime
	if createTime == 0 {
		createTime = time.Now().Unix()
	}

	return &model.Video{
		ID:           videoID,
		Title:        title,
		Cover:        item.Video.Cover.first(),
		Duration:     item.Video.Duration,
		Author:       author,
		WatermarkURL: watermarkURL,
		DownloadURL:  cleanURL,
		PlayURL:      cleanURL,
		CreateTime:   createTime,
		Statistics:   stats,
	}
}

var titleReplacer = strings.NewReplacer(
	"\\", "_", "/", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// sanitizeTitle strips characters that are illegal in filenames, since the
// title doubles as the default download name.
func sanitizeTitle(title string) string {
	return titleReplacer.Replace(title)
}
