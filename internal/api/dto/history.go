package dto

// AddHistoryRequest records one parsed video into the user's history. Only
// the video id is mandatory; the rest mirrors whatever the client rendered.
type AddHistoryRequest struct {
	VideoID     string `json:"videoId" binding:"required"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Cover       string `json:"cover,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Author      string `json:"author,omitempty"`
}
