package douyin

import (
	"regexp"
	"strings"
)

var shareURLRegexp = regexp.MustCompile(`(https?://(?:v\.douyin\.com|www\.douyin\.com)/[\w\-/]+)`)

var validURLRegexps = []*regexp.Regexp{
	regexp.MustCompile(`^https?://v\.douyin\.com/[\w\-/]+`),
	regexp.MustCompile(`^https?://www\.douyin\.com/video/\d+`),
	regexp.MustCompile(`^https?://www\.douyin\.com/share/video/\d+`),
	regexp.MustCompile(`^https?://www\.douyin\.com/v/\d+`),
	regexp.MustCompile(`^https?://www\.douyin\.com/note/\d+`),
	regexp.MustCompile(`^https?://www\.iesdouyin\.com/share/video/\d+`),
}

// Ordered by priority: a URL can satisfy more than one shape, the first
// matching pattern wins.
var videoIDRegexps = []*regexp.Regexp{
	regexp.MustCompile(`/video/(\d+)`),
	regexp.MustCompile(`/v/(\d+)`),
	regexp.MustCompile(`/share/video/(\d+)`),
	regexp.MustCompile(`douyin\.com/(\d+)`),
	regexp.MustCompile(`/note/(\d+)`),
	regexp.MustCompile(`v\.douyin\.com/([a-zA-Z0-9\-]+)`),
}

// ExtractShareURL pulls the first douyin share URL out of free-form text,
// e.g. the "复制打开抖音..." share blurb. Returns the input unchanged when no
// URL is found so that validation downstream produces the real error.
func ExtractShareURL(text string) string {
	if match := shareURLRegexp.FindString(text); match != "" {
		return match
	}
	return text
}

// IsValidShareURL reports whether url matches one of the known share link
// shapes (short link host or canonical video/note/share paths).
func IsValidShareURL(url string) bool {
	if url == "" {
		return false
	}
	for _, re := range validURLRegexps {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// ExtractVideoID returns the video identifier embedded in url, trying the
// known path shapes in priority order. The boolean is false when no pattern
// matches.
func ExtractVideoID(url string) (string, bool) {
	for _, re := range videoIDRegexps {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// RemoveWatermark rewrites a CDN play address to its clean playback variant
// by replacing the watermark path marker. Idempotent: a URL that already
// points at the clean variant is returned unchanged.
func RemoveWatermark(url string) string {
	return strings.ReplaceAll(url, "playwm", "play")
}
