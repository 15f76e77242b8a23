package douyin

// Error codes for the parse pipeline. The HTTP boundary maps invalid_url to a
// 400 response and everything else to 500.
const (
	CodeInvalidURL    = "invalid_url"
	CodeUpstreamFetch = "upstream_fetch"
	CodeStructure     = "page_structure"
	CodeParse         = "page_parse"
)

// ScrapeError is a typed failure from the share-page scraping pipeline.
type ScrapeError struct {
	Code    string
	Message string
	Err     error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

func newScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}
