package douyin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractShareURL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "share_blurb_with_short_link",
			text: "7.43 复制打开抖音，看看作品 https://v.douyin.com/iFRvuqak/ 真不错",
			want: "https://v.douyin.com/iFRvuqak/",
		},
		{
			name: "bare_canonical_url",
			text: "https://www.douyin.com/video/7340938486526463286",
			want: "https://www.douyin.com/video/7340938486526463286",
		},
		{
			name: "no_url_passes_through",
			text: "just some text",
			want: "just some text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractShareURL(tt.text))
		})
	}
}

func TestIsValidShareURL(t *testing.T) {
	valid := []string{
		"https://v.douyin.com/iFRvuqak/",
		"http://v.douyin.com/abc-DEF",
		"https://www.douyin.com/video/7340938486526463286",
		"https://www.douyin.com/share/video/7340938486526463286",
		"https://www.douyin.com/v/7340938486526463286",
		"https://www.douyin.com/note/7340938486526463286",
		"https://www.iesdouyin.com/share/video/7340938486526463286",
	}
	for _, url := range valid {
		assert.True(t, IsValidShareURL(url), "expected valid: %s", url)
	}

	invalid := []string{
		"",
		"not a url",
		"https://example.com/video/123",
		"https://www.douyin.com/user/MS4wLjAB",
		"ftp://v.douyin.com/iFRvuqak",
	}
	for _, url := range invalid {
		assert.False(t, IsValidShareURL(url), "expected invalid: %s", url)
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"video_path", "https://www.douyin.com/video/7340938486526463286", "7340938486526463286"},
		{"v_path", "https://www.douyin.com/v/7340938486526463286", "7340938486526463286"},
		{"share_video_path", "https://www.iesdouyin.com/share/video/7340938486526463286/", "7340938486526463286"},
		{"bare_numeric_path", "https://www.douyin.com/7340938486526463286", "7340938486526463286"},
		{"note_path", "https://www.douyin.com/note/7340938486526463286", "7340938486526463286"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.url)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("not_found", func(t *testing.T) {
		_, ok := ExtractVideoID("https://example.com/watch?v=abc")
		assert.False(t, ok)
	})

	t.Run("priority_order", func(t *testing.T) {
		// /video/ wins over the bare douyin.com numeric fallback.
		got, ok := ExtractVideoID("https://www.douyin.com/video/111?from=222")
		assert.True(t, ok)
		assert.Equal(t, "111", got)
	})
}

func TestRemoveWatermark(t *testing.T) {
	in := "https://aweme.snssdk.com/aweme/v1/playwm/?video_id=abc&ratio=720p"
	want := "https://aweme.snssdk.com/aweme/v1/play/?video_id=abc&ratio=720p"

	got := RemoveWatermark(in)
	assert.Equal(t, want, got)

	// Idempotent: a second application changes nothing.
	assert.Equal(t, want, RemoveWatermark(got))
}
