package notification

import "errors"

// ErrChannelNotConfigured is returned by a channel client whose credentials are absent.
var ErrChannelNotConfigured = errors.New("notification channel is not configured")

// Channel names an outbound delivery mechanism.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
)

// Outcome tags the result of a single channel attempt.
type Outcome string

const (
	OutcomeDelivered     Outcome = "delivered"
	OutcomeFailed        Outcome = "failed"
	OutcomeNotConfigured Outcome = "not_configured"
)

// ChannelResult records one attempt on one channel.
type ChannelResult struct {
	Channel Channel
	Target  string // Email address for email, empty for chat
	Outcome Outcome
	Err     error
}

// DispatchResult is the outcome of one dispatch call.
type DispatchResult struct {
	// Delivered counts recipients for which at least one channel succeeded.
	Delivered int
	Results   []ChannelResult
}

// Succeeded reports whether any attempted channel delivered the message.
func (r DispatchResult) Succeeded() bool {
	for _, res := range r.Results {
		if res.Outcome == OutcomeDelivered {
			return true
		}
	}
	return false
}

// Count returns how many attempts on ch ended with outcome o.
func (r DispatchResult) Count(ch Channel, o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Channel == ch && res.Outcome == o {
			n++
		}
	}
	return n
}
