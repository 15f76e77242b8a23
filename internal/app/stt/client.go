package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultAPIBase = "https://dashscope.aliyuncs.com/api/v1"

	// DashScope task status vocabulary. Anything else is treated as
	// in-flight; the remote set may grow.
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// TaskOptions configures a transcription submission.
type TaskOptions struct {
	Model         string
	LanguageHints []string
}

func (o TaskOptions) withDefaults() TaskOptions {
	if o.Model == "" {
		o.Model = "paraformer-v2"
	}
	if len(o.LanguageHints) == 0 {
		o.LanguageHints = []string{"zh", "en"}
	}
	return o
}

// Task is the remote job handle returned by submit and poll calls.
type Task struct {
	ID           string
	Status       string
	ErrorCode    string
	ErrorMessage string
	Results      []SubtaskResult
}

// SubtaskResult is one per-file entry of a finished task's result set.
type SubtaskResult struct {
	SubtaskStatus    string `json:"subtask_status"`
	Message          string `json:"message"`
	TranscriptionURL string `json:"transcription_url"`
}

// Transcript mirrors the JSON payload behind a subtask's transcription URL.
type Transcript struct {
	Transcripts []TranscriptEntry    `json:"transcripts"`
	Properties  TranscriptProperties `json:"properties"`
}

// TranscriptEntry is one recognized channel of the source media.
type TranscriptEntry struct {
	ChannelID  int    `json:"channel_id"`
	Text       string `json:"text"`
	DurationMS int64  `json:"content_duration_in_milliseconds"`
}

// TranscriptProperties carries per-channel detection metadata.
type TranscriptProperties struct {
	Channels []TranscriptChannel `json:"channels"`
}

// TranscriptChannel maps a channel id to its detected language.
type TranscriptChannel struct {
	ChannelID int    `json:"channel_id"`
	Language  string `json:"channel_language"`
}

// Client calls the DashScope async transcription REST API. Its three methods
// are the seams the orchestrator is tested through.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the DashScope API base, used by tests.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithClientTimeout overrides the per-call HTTP timeout.
func WithClientTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a DashScope client authenticated with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultAPIBase,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type submitRequest struct {
	Model      string           `json:"model"`
	Input      submitInput      `json:"input"`
	Parameters submitParameters `json:"parameters"`
}

type submitInput struct {
	FileURLs []string `json:"file_urls"`
}

type submitParameters struct {
	LanguageHints []string `json:"language_hints"`
	ChannelID     []int    `json:"channel_id"`
}

type taskEnvelope struct {
	Output taskOutput `json:"output"`
}

type taskOutput struct {
	TaskID     string          `json:"task_id"`
	TaskStatus string          `json:"task_status"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Results    []SubtaskResult `json:"results"`
}

// SubmitTask submits videoURL for asynchronous transcription and returns the
// remote job handle.
func (c *Client) SubmitTask(ctx context.Context, videoURL string, opts TaskOptions) (*Task, error) {
	opts = opts.withDefaults()

	body, err := json.Marshal(submitRequest{
		Model:      opts.Model,
		Input:      submitInput{FileURLs: []string{videoURL}},
		Parameters: submitParameters{LanguageHints: opts.LanguageHints, ChannelID: []int{0}},
	})
	if err != nil {
		return nil, newError(CodeSubmitFailed, "encode submit request", err)
	}

	url := c.baseURL + "/services/audio/asr/transcription"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newError(CodeSubmitFailed, "build submit request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-DashScope-Async", "enable")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(CodeSubmitFailed, "call transcription endpoint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(CodeSubmitFailed,
			fmt.Sprintf("submit task failed: status %d", resp.StatusCode), nil)
	}

	var envelope taskEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, newError(CodeSubmitFailed, "decode submit response", err)
	}

	return taskFromOutput(envelope.Output), nil
}

// QueryTask fetches the current state of a submitted task.
func (c *Client) QueryTask(ctx context.Context, taskID string) (*Task, error) {
	url := c.baseURL + "/tasks/" + taskID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, newError(CodeQueryFailed, "build query request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(CodeQueryFailed, "query task status", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(CodeQueryFailed,
			fmt.Sprintf("query task failed: status %d", resp.StatusCode), nil)
	}

	var envelope taskEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, newError(CodeQueryFailed, "decode task response", err)
	}

	return taskFromOutput(envelope.Output), nil
}

// FetchTranscript downloads and decodes the transcript payload behind a
// finished subtask's transcription URL.
func (c *Client) FetchTranscript(ctx context.Context, transcriptURL string) (*Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transcriptURL, nil)
	if err != nil {
		return nil, newError(CodeTranscriptFetchFailed, "build transcript request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(CodeTranscriptFetchFailed, "fetch transcript", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(CodeTranscriptFetchFailed,
			fmt.Sprintf("transcript fetch failed: status %d", resp.StatusCode), nil)
	}

	var transcript Transcript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return nil, newError(CodeTranscriptFetchFailed, "decode transcript JSON", err)
	}

	return &transcript, nil
}

func taskFromOutput(out taskOutput) *Task {
	return &Task{
		ID:           out.TaskID,
		Status:       out.TaskStatus,
		ErrorCode:    out.Code,
		ErrorMessage: out.Message,
		Results:      out.Results,
	}
}
