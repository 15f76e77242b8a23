package dto

// ParseVideoRequest asks for one share link (or share blurb) to be parsed.
type ParseVideoRequest struct {
	URL string `json:"url" binding:"required"`
}

// DownloadVideoRequest asks for a resolved media URL to be fetched into the
// managed storage area.
type DownloadVideoRequest struct {
	URL      string `json:"url" binding:"required"`
	Filename string `json:"filename,omitempty"`
}

// SpeechToTextRequest asks for a media URL to be transcribed. APIKey is
// optional; the server falls back to its configured key.
type SpeechToTextRequest struct {
	VideoURL string `json:"videoUrl" binding:"required"`
	APIKey   string `json:"apiKey,omitempty"`
}
