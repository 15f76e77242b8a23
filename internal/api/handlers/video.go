package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shaobohan917/douyin-toolbox/internal/api/dto"
	"github.com/shaobohan917/douyin-toolbox/internal/api/errors"
	"github.com/shaobohan917/douyin-toolbox/internal/api/middleware"
	"github.com/shaobohan917/douyin-toolbox/internal/app/cache"
	"github.com/shaobohan917/douyin-toolbox/internal/app/douyin"
	"github.com/shaobohan917/douyin-toolbox/internal/app/download"
	"github.com/shaobohan917/douyin-toolbox/internal/app/model"
	"github.com/shaobohan917/douyin-toolbox/internal/app/store"
	"github.com/shaobohan917/douyin-toolbox/internal/app/stt"
)

// SpeechToText runs the full submit, poll and fetch transcription flow for
// one media URL.
type SpeechToText interface {
	ExtractText(ctx context.Context, videoURL string, opts stt.TaskOptions) (*stt.Result, error)
}

// NewSpeechToText builds a transcription pipeline bound to one API key.
// Keys can arrive per request, so the pipeline is constructed per call
// rather than once at startup.
type NewSpeechToText func(apiKey string) SpeechToText

// VideoHandler serves the parse, download and transcription endpoints.
type VideoHandler struct {
	scraper     *douyin.Client
	downloader  *download.Downloader
	configStore *store.ConfigStore
	parseCache  *cache.TTL[*model.Video]
	newSTT      NewSpeechToText
	logger      *slog.Logger
}

func NewVideoHandler(
	scraper *douyin.Client,
	downloader *download.Downloader,
	configStore *store.ConfigStore,
	parseCache *cache.TTL[*model.Video],
	newSTT NewSpeechToText,
	logger *slog.Logger,
) *VideoHandler {
	return &VideoHandler{
		scraper:     scraper,
		downloader:  downloader,
		configStore: configStore,
		parseCache:  parseCache,
		newSTT:      newSTT,
		logger:      logger,
	}
}

// Parse resolves a share link (or share blurb) into watermark-free video
// metadata. Results are cached per canonical share URL.
func (h *VideoHandler) Parse(c *gin.Context) {
	var req dto.ParseVideoRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	shareURL := douyin.ExtractShareURL(req.URL)
	if !douyin.IsValidShareURL(shareURL) {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid Douyin URL format"))
		return
	}

	if video, ok := h.parseCache.Get(shareURL); ok {
		c.JSON(http.StatusOK, dto.OK("Video parsed successfully", video))
		return
	}

	video, err := h.scraper.Parse(c.Request.Context(), req.URL)
	if err != nil {
		h.logger.Error("Parse video failed", "url", shareURL, "error", err)
		middleware.HandleError(c, err)
		return
	}

	h.parseCache.Set(shareURL, video)
	c.JSON(http.StatusOK, dto.OK("Video parsed successfully", video))
}

// Download fetches the resolved media URL into managed storage and streams
// the saved file back as an attachment.
func (h *VideoHandler) Download(c *gin.Context) {
	var req dto.DownloadVideoRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	result, err := h.downloader.Save(c.Request.Context(), req.URL, req.Filename)
	if err != nil {
		h.logger.Error("Download video failed", "url", req.URL, "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to download video"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Name+`"`)
	c.Header("Content-Type", "video/mp4")
	c.File(result.Path)
}

// ProxyDownload relays the remote media stream straight to the caller
// without touching disk.
func (h *VideoHandler) ProxyDownload(c *gin.Context) {
	mediaURL := c.Query("url")
	if mediaURL == "" {
		middleware.HandleError(c, errors.NewBadRequestError("URL is required"))
		return
	}

	resp, err := h.downloader.Fetch(c.Request.Context(), mediaURL)
	if err != nil {
		h.logger.Error("Proxy download failed", "url", mediaURL, "error", err)
		middleware.HandleError(c, errors.NewInternalError("Failed to download video: "+err.Error()))
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	fileName := "douyin_video_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + mediaExtension(mediaURL)

	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + fileName + `"`,
		"Cache-Control":       "no-cache",
	})
}

// SpeechToText transcribes the media at videoUrl. The request apiKey wins;
// otherwise the stored or environment key is used.
func (h *VideoHandler) SpeechToText(c *gin.Context) {
	var req dto.SpeechToTextRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = h.configStore.EffectiveAPIKey()
	}
	if apiKey == "" {
		middleware.HandleError(c, errors.NewInternalError("请配置环境变量 DASHSCOPE_API_KEY"))
		return
	}

	result, err := h.newSTT(apiKey).ExtractText(c.Request.Context(), req.VideoURL, stt.TaskOptions{})
	if err != nil {
		h.logger.Error("Speech to text failed", "videoUrl", req.VideoURL, "error", err)
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("文字提取成功", result))
}

func mediaExtension(mediaURL string) string {
	trimmed := mediaURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if ext := path.Ext(trimmed); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".mp4"
}
