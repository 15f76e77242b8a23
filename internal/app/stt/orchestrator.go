package stt

import (
	"context"
	"log/slog"
	"math"
	"time"
)

const defaultLanguage = "zh"

// API is the remote surface the orchestrator drives. *Client implements it;
// tests substitute an httptest-backed client.
type API interface {
	SubmitTask(ctx context.Context, videoURL string, opts TaskOptions) (*Task, error)
	QueryTask(ctx context.Context, taskID string) (*Task, error)
	FetchTranscript(ctx context.Context, transcriptURL string) (*Transcript, error)
}

// Result is the finished transcription of one media URL.
type Result struct {
	Text     string `json:"text"`
	Duration int    `json:"duration"`
	Language string `json:"language"`
}

// Orchestrator runs the submit, poll and fetch workflow against a remote
// transcription service. One call handles one media URL to completion; the
// poll loop holds the caller for the lifetime of the remote job.
type Orchestrator struct {
	api          API
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPollInterval sets the delay between status queries.
func WithPollInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.pollInterval = d
	}
}

// WithMaxWait sets the overall wall-clock budget for one job.
func WithMaxWait(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.maxWait = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator over api with a 3s poll interval
// and a 5 minute budget.
func NewOrchestrator(api API, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		api:          api,
		pollInterval: 3 * time.Second,
		maxWait:      5 * time.Minute,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ExtractText transcribes the media at videoURL and returns the first
// channel's text, its duration in whole seconds and the detected language.
func (o *Orchestrator) ExtractText(ctx context.Context, videoURL string, opts TaskOptions) (*Result, error) {
	task, err := o.api.SubmitTask(ctx, videoURL, opts)
	if err != nil {
		return nil, err
	}
	o.logger.Info("transcription task submitted", "task_id", task.ID, "status", task.Status)

	task, err = o.waitForCompletion(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	return o.fetchResult(ctx, task)
}

// waitForCompletion polls the task until it reaches a terminal state or the
// wall-clock budget runs out. PENDING, RUNNING and any status outside the
// known vocabulary all mean keep waiting; the remote set may grow and an
// unknown status is not an error.
func (o *Orchestrator) waitForCompletion(ctx context.Context, taskID string) (*Task, error) {
	deadline := time.Now().Add(o.maxWait)

	for time.Now().Before(deadline) {
		task, err := o.api.QueryTask(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch task.Status {
		case StatusSucceeded:
			return task, nil
		case StatusFailed:
			msg := task.ErrorMessage
			if msg == "" {
				msg = "transcription task failed"
			}
			return nil, newError(CodeTaskFailed, msg, nil)
		default:
			o.logger.Debug("transcription task in flight", "task_id", taskID, "status", task.Status)
		}

		select {
		case <-ctx.Done():
			return nil, newError(CodeTimeout, "transcription wait cancelled", ctx.Err())
		case <-time.After(o.pollInterval):
		}
	}

	// The remote job keeps running; no cancellation API is invoked.
	return nil, newError(CodeTimeout, "transcription task timed out", nil)
}

// fetchResult re-reads the finished task's result list and resolves the first
// subtask's transcript.
func (o *Orchestrator) fetchResult(ctx context.Context, task *Task) (*Result, error) {
	if len(task.Results) == 0 {
		// The poll response may omit results; re-query for the full record.
		refreshed, err := o.api.QueryTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		task = refreshed
	}

	if len(task.Results) == 0 {
		return nil, newError(CodeNoResults, "no transcription results found", nil)
	}

	first := task.Results[0]
	if first.SubtaskStatus != StatusSucceeded {
		msg := first.Message
		if msg == "" {
			msg = "transcription subtask failed"
		}
		return nil, newError(CodeSubtaskFailed, msg, nil)
	}
	if first.TranscriptionURL == "" {
		return nil, newError(CodeMissingTranscriptURL, "transcription result URL is empty", nil)
	}

	transcript, err := o.api.FetchTranscript(ctx, first.TranscriptionURL)
	if err != nil {
		return nil, err
	}

	return parseTranscript(transcript), nil
}

// parseTranscript reduces the remote transcript payload to the first entry's
// text, duration and language. Missing fields default rather than fail.
func parseTranscript(transcript *Transcript) *Result {
	result := &Result{Language: defaultLanguage}
	if len(transcript.Transcripts) == 0 {
		return result
	}

	entry := transcript.Transcripts[0]
	result.Text = entry.Text
	result.Duration = int(math.Round(float64(entry.DurationMS) / 1000))

	for _, channel := range transcript.Properties.Channels {
		if channel.ChannelID == entry.ChannelID && channel.Language != "" {
			result.Language = channel.Language
			break
		}
	}

	return result
}
