package genai

import "strings"

// FailureKind classifies why a generation attempt produced no usable text.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureUnavailable covers network errors and upstream 5xx.
	FailureUnavailable
	// FailureBadResponse means the upstream answered but the body was
	// unusable (no candidates, empty text, malformed JSON).
	FailureBadResponse
	// FailureQuota is a rate-limit rejection.
	FailureQuota
	// FailureAuth means the API key was rejected.
	FailureAuth
)

// FallbackReply is sent in place of generated text whenever generation fails.
const FallbackReply = "I'm currently offline but will respond as soon as I'm back!"

// Result is the outcome of a generation attempt.
type Result struct {
	Text string
	Kind FailureKind
	Err  error
}

func OK(text string) Result {
	return Result{Text: text}
}

func Fail(kind FailureKind, err error) Result {
	return Result{Kind: kind, Err: err}
}

func (r Result) Failed() bool {
	return r.Kind != FailureNone
}

// FallbackOrText returns the generated text, or FallbackReply when the
// attempt failed or produced only whitespace.
func (r Result) FallbackOrText() string {
	if r.Failed() {
		return FallbackReply
	}
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return FallbackReply
	}
	return text
}
