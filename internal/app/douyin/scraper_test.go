package douyin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRouterData = `{
  "loaderData": {
    "video_(id)/page": {
      "videoInfoRes": {
        "item_list": [
          {
            "desc": "测试视频: hello/world",
            "create_time": 1700000000,
            "video": {
              "duration": 15000,
              "cover": {"url_list": ["https://p3.douyinpic.com/cover.jpeg"]},
              "play_addr": {"url_list": ["https://aweme.snssdk.com/aweme/v1/playwm/?video_id=v0300f"]}
            },
            "author": {
              "uid": "10086",
              "nickname": "测试作者",
              "avatar_thumb": {"url_list": ["https://p3.douyinpic.com/avatar.jpeg"]}
            },
            "statistics": {
              "digg_count": 42,
              "comment_count": 7,
              "share_count": 3,
              "collect_count": 1
            }
          }
        ]
      }
    }
  }
}`

func sharePage(routerJSON string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>share</title></head>
<body>
<script>window.__INIT__ = true;</script>
<script>window._ROUTER_DATA = %s</script>
</body>
</html>`, routerJSON)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(WithSharePageBase(server.URL + "/share/video/%s/"))
	return client, server
}

func TestFetchVideo(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The share page rejects requests without the mobile UA and referer.
		assert.Contains(t, r.Header.Get("User-Agent"), "iPhone")
		assert.Equal(t, "https://www.douyin.com/", r.Header.Get("Referer"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, sharePage(sampleRouterData))
	})

	video, err := client.FetchVideo(context.Background(), "7340938486526463286")
	require.NoError(t, err)

	assert.Equal(t, "7340938486526463286", video.ID)
	assert.Equal(t, "测试视频_ hello_world", video.Title)
	assert.Equal(t, "https://p3.douyinpic.com/cover.jpeg", video.Cover)
	assert.Equal(t, 15000, video.Duration)
	assert.Equal(t, "测试作者", video.Author.Nickname)
	assert.Equal(t, "https://aweme.snssdk.com/aweme/v1/playwm/?video_id=v0300f", video.WatermarkURL)
	assert.NotContains(t, video.DownloadURL, "playwm")
	assert.Equal(t, "https://aweme.snssdk.com/aweme/v1/play/?video_id=v0300f", video.DownloadURL)
	assert.Equal(t, int64(1700000000), video.CreateTime)
	assert.Equal(t, 42, video.Statistics.DiggCount)
}

func TestFetchVideo_NotePageVariant(t *testing.T) {
	noteData := strings.Replace(sampleRouterData, "video_(id)/page", "note_(id)/page", 1)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sharePage(noteData))
	})

	video, err := client.FetchVideo(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", video.ID)
}

func TestFetchVideo_OptionalFieldDefaults(t *testing.T) {
	minimal := `{
  "loaderData": {
    "video_(id)/page": {
      "videoInfoRes": {
        "item_list": [
          {"video": {"play_addr": {"url_list": ["https://cdn/playwm/1"]}}}
        ]
      }
    }
  }
}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sharePage(minimal))
	})

	video, err := client.FetchVideo(context.Background(), "999")
	require.NoError(t, err)

	assert.Equal(t, "douyin_999", video.Title)
	assert.Equal(t, "", video.Cover)
	assert.Equal(t, 0, video.Duration)
	assert.Equal(t, unknownNickname, video.Author.Nickname)
	assert.Equal(t, 0, video.Statistics.DiggCount)
	assert.NotZero(t, video.CreateTime)
}

func TestFetchVideo_Errors(t *testing.T) {
	t.Run("non_200_status", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.FetchVideo(context.Background(), "1")
		var scrapeErr *ScrapeError
		require.ErrorAs(t, err, &scrapeErr)
		assert.Equal(t, CodeUpstreamFetch, scrapeErr.Code)
	})

	t.Run("missing_router_data", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body><script>var x = 1;</script></body></html>")
		})

		_, err := client.FetchVideo(context.Background(), "1")
		var scrapeErr *ScrapeError
		require.ErrorAs(t, err, &scrapeErr)
		assert.Equal(t, CodeStructure, scrapeErr.Code)
	})

	t.Run("malformed_json", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, sharePage("{not json"))
		})

		_, err := client.FetchVideo(context.Background(), "1")
		var scrapeErr *ScrapeError
		require.ErrorAs(t, err, &scrapeErr)
		assert.Equal(t, CodeParse, scrapeErr.Code)
	})

	t.Run("unknown_variant", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, sharePage(`{"loaderData": {"other/page": {}}}`))
		})

		_, err := client.FetchVideo(context.Background(), "1")
		var scrapeErr *ScrapeError
		require.ErrorAs(t, err, &scrapeErr)
		assert.Equal(t, CodeStructure, scrapeErr.Code)
	})
}

func TestResolveShortLink(t *testing.T) {
	t.Run("location_header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "https://www.douyin.com/video/111", http.StatusFound)
		}))
		defer server.Close()

		client := NewClient()
		got := client.ResolveShortLink(context.Background(), server.URL)
		assert.Equal(t, "https://www.douyin.com/video/111", got)
	})

	t.Run("follow_redirect_fallback", func(t *testing.T) {
		// Remote answers 200 directly; the probe finds no Location header and
		// the second attempt lands on the final URL.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/short" {
				w.WriteHeader(http.StatusOK)
				return
			}
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		client := NewClient()
		got := client.ResolveShortLink(context.Background(), server.URL+"/short")
		assert.Equal(t, server.URL+"/short", got)
	})

	t.Run("unreachable_passes_through", func(t *testing.T) {
		client := NewClient()
		short := "http://127.0.0.1:1/dead"
		assert.Equal(t, short, client.ResolveShortLink(context.Background(), short))
	})
}

func TestParse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sharePage(sampleRouterData))
	})

	video, err := client.Parse(context.Background(), "看看 https://www.douyin.com/video/7340938486526463286 吧")
	require.NoError(t, err)
	assert.Equal(t, "7340938486526463286", video.ID)
}

func TestParse_InvalidURL(t *testing.T) {
	client := NewClient()
	_, err := client.Parse(context.Background(), "https://example.com/nothing")
	var scrapeErr *ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, CodeInvalidURL, scrapeErr.Code)
}
