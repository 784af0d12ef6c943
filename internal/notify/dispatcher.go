package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventra/notify/internal/storage"
)

// DefaultChannelTimeout bounds each per-channel send when no timeout is
// configured.
const DefaultChannelTimeout = 10 * time.Second

// statusUpdateTimeout bounds the best-effort terminal status write, which
// runs detached from the caller's context.
const statusUpdateTimeout = 5 * time.Second

// DeliverySummary is what the caller gets back from one dispatch: the intent
// id for later lookup, the aggregate status, and every channel's outcome.
type DeliverySummary struct {
	IntentID string          `json:"intent_id"`
	Status   AggregateStatus `json:"status"`
	Outcomes []Outcome       `json:"outcomes"`
}

// Dispatcher fans one notification out to the requested channel adapters
// concurrently and tracks the attempt in the intent store.
//
// Per-channel problems are captured as Outcome values, never as errors; the
// only errors Send returns are request validation failures and a failed
// intent-creation write.
type Dispatcher struct {
	adapters map[Channel]Adapter
	intents  storage.IntentStore
	timeout  time.Duration
	log      *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given adapters. timeout bounds
// each per-channel send; zero selects DefaultChannelTimeout.
func NewDispatcher(intents storage.IntentStore, log *slog.Logger, timeout time.Duration, adapters ...Adapter) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}
	m := make(map[Channel]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Channel()] = a
	}
	return &Dispatcher{adapters: m, intents: intents, timeout: timeout, log: log}
}

// Channels returns every registered channel and whether its adapter is
// enabled.
func (d *Dispatcher) Channels() map[Channel]bool {
	out := make(map[Channel]bool, len(d.adapters))
	for ch, a := range d.adapters {
		out[ch] = a.Enabled()
	}
	return out
}

// Send validates the request, records a pending intent, fans out to every
// requested channel concurrently, waits for all of them to settle, persists
// the aggregate status, and returns the summary.
//
// A repeated delivery for the same logical notification creates a new
// intent; terminal intents are never reopened.
func (d *Dispatcher) Send(ctx context.Context, rcpt Recipient, req Request) (*DeliverySummary, error) {
	channels, err := d.validate(req)
	if err != nil {
		return nil, err
	}

	intentID, err := d.createIntent(ctx, rcpt, req, channels)
	if err != nil {
		return nil, fmt.Errorf("creating notification intent: %w", err)
	}

	msg := Message{
		Kind:     req.Kind,
		Subject:  req.Subject,
		Body:     req.Body,
		Payload:  req.Payload,
		Priority: req.Priority,
	}

	start := time.Now()
	outcomes := d.fanOut(ctx, channels, rcpt, msg)
	status := AggregateOutcomes(outcomes)
	observeDispatch(status, outcomes, time.Since(start))

	d.recordStatus(intentID, status, outcomes)

	return &DeliverySummary{IntentID: intentID, Status: status, Outcomes: outcomes}, nil
}

// validate rejects empty or unknown channel sets before any side effect.
func (d *Dispatcher) validate(req Request) ([]Channel, error) {
	if len(req.Channels) == 0 {
		return nil, ErrEmptyChannels
	}
	seen := make(map[Channel]bool, len(req.Channels))
	channels := make([]Channel, 0, len(req.Channels))
	for _, ch := range req.Channels {
		if _, ok := d.adapters[ch]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedChannel, ch)
		}
		if seen[ch] {
			continue
		}
		seen[ch] = true
		channels = append(channels, ch)
	}
	return channels, nil
}

// createIntent persists the pending intent record. Failure here is fatal to
// the dispatch: with no record there is nothing to track or return.
func (d *Dispatcher) createIntent(ctx context.Context, rcpt Recipient, req Request, channels []Channel) (string, error) {
	payload := "{}"
	if len(req.Payload) > 0 {
		b, err := json.Marshal(req.Payload)
		if err != nil {
			return "", fmt.Errorf("encoding payload: %w", err)
		}
		payload = string(b)
	}
	chJSON, err := json.Marshal(channels)
	if err != nil {
		return "", fmt.Errorf("encoding channels: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	kind := req.Kind
	if kind == "" {
		kind = KindInformational
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	rec := storage.IntentRecord{
		ID:        id,
		UserID:    rcpt.UserID,
		Kind:      string(kind),
		Subject:   req.Subject,
		Body:      req.Body,
		Payload:   payload,
		Priority:  string(priority),
		Channels:  string(chJSON),
		Status:    string(StatusPending),
		Outcomes:  "[]",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.intents.CreateIntent(ctx, rec); err != nil {
		return "", err
	}
	return id, nil
}

// fanOut launches one goroutine per channel and waits for every one to
// settle. Outcome order matches the requested channel order regardless of
// completion order.
func (d *Dispatcher) fanOut(ctx context.Context, channels []Channel, rcpt Recipient, msg Message) []Outcome {
	outcomes := make([]Outcome, len(channels))
	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, a Adapter) {
			defer wg.Done()
			outcomes[i] = d.sendBounded(ctx, a, rcpt, msg)
		}(i, d.adapters[ch])
	}
	wg.Wait()
	return outcomes
}

// sendBounded runs one adapter send under the per-channel timeout. An
// adapter that ignores its context is abandoned at the deadline and recorded
// as failed, so a hung transport can never stall the dispatch.
func (d *Dispatcher) sendBounded(ctx context.Context, a Adapter, rcpt Recipient, msg Message) Outcome {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				res <- Failed(a.Channel(), fmt.Sprintf("adapter panic: %v", r))
			}
		}()
		res <- a.Send(cctx, rcpt, msg)
	}()

	select {
	case out := <-res:
		return out
	case <-cctx.Done():
		detail := "timeout"
		if errors.Is(cctx.Err(), context.Canceled) {
			detail = "canceled"
		}
		return Failed(a.Channel(), detail)
	}
}

// recordStatus persists the terminal status. This write is bookkeeping: the
// deliveries already happened or didn't, so a failure here is logged and the
// caller still gets the summary.
func (d *Dispatcher) recordStatus(intentID string, status AggregateStatus, outcomes []Outcome) {
	b, err := json.Marshal(outcomes)
	if err != nil {
		d.log.Error("failed to encode outcomes", "intent_id", intentID, "error", err)
		return
	}

	// Detached from the caller's context so an expired request deadline
	// doesn't lose the status update.
	ctx, cancel := context.WithTimeout(context.Background(), statusUpdateTimeout)
	defer cancel()

	if err := d.intents.UpdateIntentStatus(ctx, intentID, string(status), string(b)); err != nil {
		d.log.Error("failed to update intent status",
			"intent_id", intentID, "status", status, "error", err)
	}
}
