package notify

// Result is the outcome kind of one channel attempt.
type Result string

// Outcome kinds. A disabled adapter reports ResultSkipped rather than
// ResultSent so the summary never overstates delivery.
const (
	ResultSent    Result = "sent"
	ResultSkipped Result = "skipped_disabled"
	ResultFailed  Result = "failed"
)

// Outcome is the result of one delivery attempt on one channel. It is a
// value, never an error: transport failures are captured in ErrorDetail and
// must not propagate out of an adapter.
type Outcome struct {
	Channel     Channel `json:"channel"`
	Result      Result  `json:"result"`
	ProviderRef string  `json:"provider_ref,omitempty"`
	ErrorDetail string  `json:"error_detail,omitempty"`
}

// Sent builds a successful outcome. ref is the transport's message
// identifier and may be empty for transports that have none (in-app).
func Sent(ch Channel, ref string) Outcome {
	return Outcome{Channel: ch, Result: ResultSent, ProviderRef: ref}
}

// Skipped builds the outcome for a disabled adapter.
func Skipped(ch Channel) Outcome {
	return Outcome{Channel: ch, Result: ResultSkipped}
}

// Failed builds a failure outcome with a human-readable detail.
func Failed(ch Channel, detail string) Outcome {
	return Outcome{Channel: ch, Result: ResultFailed, ErrorDetail: detail}
}

// AggregateStatus is the intent-level delivery status derived from the full
// outcome set.
type AggregateStatus string

// Intent statuses. StatusPending is the only non-terminal state.
const (
	StatusPending   AggregateStatus = "pending"
	StatusDelivered AggregateStatus = "delivered"
	StatusPartial   AggregateStatus = "partial"
	StatusSkipped   AggregateStatus = "skipped"
	StatusFailed    AggregateStatus = "failed"
)

// AggregateOutcomes derives the intent status from a settled outcome set.
// Skipped channels are neutral: they count neither for nor against delivery.
// A mix of sent and failed is partial; sent with no failures is delivered;
// failures with no sends is failed; anything left is all-skipped.
func AggregateOutcomes(outcomes []Outcome) AggregateStatus {
	var sent, failed int
	for _, o := range outcomes {
		switch o.Result {
		case ResultSent:
			sent++
		case ResultFailed:
			failed++
		}
	}
	switch {
	case sent > 0 && failed > 0:
		return StatusPartial
	case sent > 0:
		return StatusDelivered
	case failed > 0:
		return StatusFailed
	default:
		return StatusSkipped
	}
}
