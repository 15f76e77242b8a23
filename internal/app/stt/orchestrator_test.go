package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDashScope simulates the three remote endpoints: submit, task query and
// the transcript payload URL. Poll responses are served from statuses in
// order, sticking at the last one.
type fakeDashScope struct {
	t        *testing.T
	server   *httptest.Server
	statuses []string
	polls    atomic.Int32
	results  []SubtaskResult
	errorMsg string

	transcript string
}

func newFakeDashScope(t *testing.T, statuses []string) *fakeDashScope {
	f := &fakeDashScope{t: t, statuses: statuses}

	mux := http.NewServeMux()
	mux.HandleFunc("/services/audio/asr/transcription", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "enable", r.Header.Get("X-DashScope-Async"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "paraformer-v2", req["model"])

		writeTask(w, "task-001", "PENDING", nil)
	})
	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		n := int(f.polls.Add(1)) - 1
		if n >= len(f.statuses) {
			n = len(f.statuses) - 1
		}
		status := f.statuses[n]

		var results []SubtaskResult
		if status == StatusSucceeded {
			results = f.results
			if results == nil {
				results = []SubtaskResult{{
					SubtaskStatus:    StatusSucceeded,
					TranscriptionURL: f.server.URL + "/transcript.json",
				}}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": map[string]any{
				"task_id":     "task-001",
				"task_status": status,
				"message":     f.errorMsg,
				"results":     results,
			},
		})
	})
	mux.HandleFunc("/transcript.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, f.transcript)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.transcript = `{
  "transcripts": [
    {"channel_id": 0, "text": "你好 世界", "content_duration_in_milliseconds": 15400}
  ],
  "properties": {
    "channels": [{"channel_id": 0, "channel_language": "zh"}]
  }
}`
	return f
}

func writeTask(w http.ResponseWriter, id, status string, results []SubtaskResult) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"output": map[string]any{
			"task_id":     id,
			"task_status": status,
			"results":     results,
		},
	})
}

func newTestOrchestrator(f *fakeDashScope) *Orchestrator {
	client := NewClient("sk-test", WithBaseURL(f.server.URL))
	return NewOrchestrator(client,
		WithPollInterval(time.Millisecond),
		WithMaxWait(250*time.Millisecond),
	)
}

func TestExtractText(t *testing.T) {
	f := newFakeDashScope(t, []string{StatusPending, StatusPending, StatusSucceeded})
	o := newTestOrchestrator(f)

	result, err := o.ExtractText(context.Background(), "https://cdn/video.mp4", TaskOptions{})
	require.NoError(t, err)

	assert.Equal(t, "你好 世界", result.Text)
	assert.Equal(t, 15, result.Duration) // 15400ms rounds to 15s
	assert.Equal(t, "zh", result.Language)
	assert.GreaterOrEqual(t, int(f.polls.Load()), 3)
}

func TestExtractText_UnknownStatusKeepsWaiting(t *testing.T) {
	f := newFakeDashScope(t, []string{"QUEUED", "WARMING_UP", StatusSucceeded})
	o := newTestOrchestrator(f)

	result, err := o.ExtractText(context.Background(), "https://cdn/video.mp4", TaskOptions{})
	require.NoError(t, err)
	assert.Equal(t, "你好 世界", result.Text)
}

func TestExtractText_Timeout(t *testing.T) {
	f := newFakeDashScope(t, []string{StatusRunning})
	o := newTestOrchestrator(f)

	_, err := o.ExtractText(context.Background(), "https://cdn/video.mp4", TaskOptions{})
	var sttErr *Error
	require.ErrorAs(t, err, &sttErr)
	assert.Equal(t, CodeTimeout, sttErr.Code)
}

func TestExtractText_TaskFailed(t *testing.T) {
	f := newFakeDashScope(t, []string{StatusFailed})
	f.errorMsg = "audio format not supported"
	o := newTestOrchestrator(f)

	_, err := o.ExtractText(context.Background(), "https://cdn/video.mp4", TaskOptions{})
	var sttErr *Error
	require.ErrorAs(t, err, &sttErr)
	assert.Equal(t, CodeTaskFailed, sttErr.Code)
	assert.Contains(t, sttErr.Message, "audio format not supported")
}

func TestExtractText_SubtaskErrors(t *testing.T) {
	tests := []struct {
		name     string
		results  []SubtaskResult
		wantCode string
	}{
		{
			name:     "subtask_failed",
			results:  []SubtaskResult{{SubtaskStatus: StatusFailed, Message: "decode error"}},
			wantCode: CodeSubtaskFailed,
		},
		{
			name:     "missing_transcript_url",
			results:  []SubtaskResult{{SubtaskStatus: StatusSucceeded}},
			wantCode: CodeMissingTranscriptURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeDashScope(t, []string{StatusSucceeded})
			f.results = tt.results
			o := newTestOrchestrator(f)

			_, err := o.ExtractText(context.Background(), "https://cdn/video.mp4", TaskOptions{})
			var sttErr *Error
			require.ErrorAs(t, err, &sttErr)
			assert.Equal(t, tt.wantCode, sttErr.Code)
		})
	}
}

func TestExtractText_SubmitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))
	o := NewOrchestrator(client, WithPollInterval(time.Millisecond), WithMaxWait(50*time.Millisecond))

	_, err := o.ExtractText(context.Background(), "https://cdn/video.mp4", TaskOptions{})
	var sttErr *Error
	require.ErrorAs(t, err, &sttErr)
	assert.Equal(t, CodeSubmitFailed, sttErr.Code)
}

func TestParseTranscript_Defaults(t *testing.T) {
	t.Run("empty_payload", func(t *testing.T) {
		result := parseTranscript(&Transcript{})
		assert.Equal(t, "", result.Text)
		assert.Equal(t, 0, result.Duration)
		assert.Equal(t, defaultLanguage, result.Language)
	})

	t.Run("missing_channel_language", func(t *testing.T) {
		result := parseTranscript(&Transcript{
			Transcripts: []TranscriptEntry{{ChannelID: 2, Text: "hi", DurationMS: 2600}},
		})
		assert.Equal(t, "hi", result.Text)
		assert.Equal(t, 3, result.Duration) // 2600ms rounds to 3s
		assert.Equal(t, defaultLanguage, result.Language)
	})

	t.Run("channel_language_lookup", func(t *testing.T) {
		result := parseTranscript(&Transcript{
			Transcripts: []TranscriptEntry{{ChannelID: 1, Text: "hello"}},
			Properties: TranscriptProperties{Channels: []TranscriptChannel{
				{ChannelID: 0, Language: "zh"},
				{ChannelID: 1, Language: "en"},
			}},
		})
		assert.Equal(t, "en", result.Language)
	})
}
