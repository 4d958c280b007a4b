package ai

import (
	"context"
	"errors"
	"net"
)

// Kind tags the outcome of an answer request. The controller branches on it
// to decide whether the interaction consumes quota; failure kinds never do.
type Kind int

const (
	Answer Kind = iota
	Unconfigured
	Timeout
	TransportError
	ProviderError
	MalformedResponse
	EmptyResponse
)

type Result struct {
	Kind Kind
	Text string
}

// Failed reports whether the result carries anything other than an answer.
func (r Result) Failed() bool {
	return r.Kind != Answer
}

// Message returns the user-facing text for the result: the answer itself on
// success, or the failure text for the result's kind. A failure may carry
// its own Text when its kind has more than one user-visible wording.
func (r Result) Message() string {
	if r.Kind == Answer {
		return r.Text
	}
	if r.Text != "" {
		return r.Text
	}
	switch r.Kind {
	case Unconfigured:
		return "⚠️ پاسخ‌دهی هوش‌مصنوعی پیکربندی نشده است."
	case Timeout:
		return "❌ زمان پاسخ هوش مصنوعی طولانی شد. لطفاً دوباره تلاش کنید."
	case ProviderError:
		return "❌ خطا در ارتباط با سرویس پاسخ‌گوی هوش مصنوعی. لطفاً بعداً تلاش کنید."
	case MalformedResponse:
		return "❌ نتوانستم پاسخی تولید کنم. لطفاً سوال‌تان را واضح‌تر کنید."
	case EmptyResponse:
		return "❌ پاسخ خالی دریافت شد."
	default:
		return "❌ خطای داخلی در سرویس هوش مصنوعی. لطفاً بعداً تلاش کنید."
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
