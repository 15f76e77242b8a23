package stt

// Error codes for the transcription pipeline.
const (
	CodeSubmitFailed          = "submit_failed"
	CodeQueryFailed           = "query_failed"
	CodeTaskFailed            = "task_failed"
	CodeTimeout               = "timeout"
	CodeNoResults             = "no_results"
	CodeSubtaskFailed         = "subtask_failed"
	CodeMissingTranscriptURL  = "missing_transcript_url"
	CodeTranscriptFetchFailed = "transcript_fetch_failed"
)

// Error is a typed failure from the transcription workflow. Message carries
// the remote service's error text when one was reported.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
