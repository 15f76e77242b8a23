package model

// Video is the normalized metadata record produced for one parsed share link.
// It is derived fresh on every parse and never persisted; the JSON field names
// match the frontend contract.
type Video struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Cover        string     `json:"cover"`
	Duration     int        `json:"duration"`
	Author       Author     `json:"author"`
	WatermarkURL string     `json:"watermarkUrl"`
	DownloadURL  string     `json:"downloadUrl"`
	PlayURL      string     `json:"playUrl"`
	CreateTime   int64      `json:"createTime"`
	Statistics   Statistics `json:"statistics"`
}

// Author identifies the video's uploader.
type Author struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// Statistics carries the engagement counters of a video.
type Statistics struct {
	DiggCount    int `json:"diggCount"`
	CommentCount int `json:"commentCount"`
	ShareCount   int `json:"shareCount"`
	CollectCount int `json:"collectCount"`
}
