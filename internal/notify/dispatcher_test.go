package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/notify/internal/storage"
)

// --- test doubles ---

// stubAdapter is a scriptable adapter for dispatcher tests.
type stubAdapter struct {
	ch      Channel
	enabled bool
	outcome Outcome
	delay   time.Duration
	hang    bool // never resolve, ignore ctx
	panics  bool
	calls   atomic.Int32
}

func (a *stubAdapter) Channel() Channel { return a.ch }
func (a *stubAdapter) Enabled() bool    { return a.enabled }

func (a *stubAdapter) Send(_ context.Context, _ Recipient, _ Message) Outcome {
	a.calls.Add(1)
	if a.panics {
		panic("transport exploded")
	}
	if a.hang {
		select {} // a misbehaving transport that never returns
	}
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	if !a.enabled {
		return Skipped(a.ch)
	}
	return a.outcome
}

// memIntentStore is an in-memory IntentStore with injectable failures.
type memIntentStore struct {
	mu        sync.Mutex
	records   map[string]storage.IntentRecord
	createErr error
	updateErr error
	updates   int
}

func newMemIntentStore() *memIntentStore {
	return &memIntentStore{records: map[string]storage.IntentRecord{}}
}

func (m *memIntentStore) CreateIntent(_ context.Context, rec storage.IntentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.records[rec.ID]; exists {
		return storage.ErrConflict
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *memIntentStore) UpdateIntentStatus(_ context.Context, id, status, outcomes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	rec, ok := m.records[id]
	if !ok {
		return storage.ErrIntentNotFound
	}
	rec.Status = status
	rec.Outcomes = outcomes
	m.records[id] = rec
	m.updates++
	return nil
}

func (m *memIntentStore) GetIntent(_ context.Context, id string) (storage.IntentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return storage.IntentRecord{}, storage.ErrIntentNotFound
	}
	return rec, nil
}

func (m *memIntentStore) ListIntents(_ context.Context, _ int) ([]storage.IntentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := make([]storage.IntentRecord, 0, len(m.records))
	for _, rec := range m.records {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (m *memIntentStore) PurgeIntents(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecipient() Recipient {
	return Recipient{UserID: "u-1", Email: "user@example.com", Phone: "+15550100"}
}

// --- tests ---

func TestSend_EmptyChannelSetRejectedBeforeAnyWork(t *testing.T) {
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	d := NewDispatcher(store, discardLogger(), time.Second, email)

	_, err := d.Send(context.Background(), testRecipient(), Request{Subject: "s"})
	require.ErrorIs(t, err, ErrEmptyChannels)

	assert.Zero(t, email.calls.Load(), "no adapter may be invoked")
	assert.Empty(t, store.records, "no intent may be persisted")
}

func TestSend_UnsupportedChannelRejectedBeforeAnyWork(t *testing.T) {
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	d := NewDispatcher(store, discardLogger(), time.Second, email)

	_, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail, Channel("carrier_pigeon")},
	})
	require.ErrorIs(t, err, ErrUnsupportedChannel)

	assert.Zero(t, email.calls.Load())
	assert.Empty(t, store.records)
}

func TestSend_TransportFailureContainment(t *testing.T) {
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	sms := &stubAdapter{ch: ChannelSMS, enabled: true, panics: true}
	inapp := &stubAdapter{ch: ChannelInApp, enabled: true, outcome: Sent(ChannelInApp, "")}
	d := NewDispatcher(store, discardLogger(), time.Second, email, sms, inapp)

	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail, ChannelSMS, ChannelInApp},
	})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 3, "every requested channel must have an outcome")
	assert.Equal(t, ResultSent, summary.Outcomes[0].Result)
	assert.Equal(t, ResultFailed, summary.Outcomes[1].Result)
	assert.Contains(t, summary.Outcomes[1].ErrorDetail, "transport exploded")
	assert.Equal(t, ResultSent, summary.Outcomes[2].Result)
	assert.Equal(t, StatusPartial, summary.Status)
}

func TestSend_HangingAdapterResolvesAsTimeout(t *testing.T) {
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	sms := &stubAdapter{ch: ChannelSMS, enabled: true, hang: true}
	d := NewDispatcher(store, discardLogger(), 100*time.Millisecond, email, sms)

	start := time.Now()
	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail, ChannelSMS},
	})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second, "dispatch must not hang past the timeout")
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, ResultSent, summary.Outcomes[0].Result)
	assert.Equal(t, ResultFailed, summary.Outcomes[1].Result)
	assert.Equal(t, "timeout", summary.Outcomes[1].ErrorDetail)
	assert.Equal(t, StatusPartial, summary.Status)
}

func TestSend_SkippedIsNeutral(t *testing.T) {
	// Email enabled, SMS disabled: the aggregate is delivered, not partial.
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	sms := &stubAdapter{ch: ChannelSMS, enabled: false}
	d := NewDispatcher(store, discardLogger(), time.Second, email, sms)

	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Subject:  "Order shipped",
		Channels: []Channel{ChannelEmail, ChannelSMS},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDelivered, summary.Status)
	assert.Equal(t, ResultSent, summary.Outcomes[0].Result)
	assert.Equal(t, ResultSkipped, summary.Outcomes[1].Result)
}

func TestSend_AllChannelsDisabled(t *testing.T) {
	store := newMemIntentStore()
	adapters := []Adapter{
		&stubAdapter{ch: ChannelEmail},
		&stubAdapter{ch: ChannelSMS},
		&stubAdapter{ch: ChannelPush},
		&stubAdapter{ch: ChannelInApp},
	}
	d := NewDispatcher(store, discardLogger(), time.Second, adapters...)

	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, summary.Status)
	for _, o := range summary.Outcomes {
		assert.Equal(t, ResultSkipped, o.Result)
	}
}

func TestSend_IntentCreationFailureIsFatal(t *testing.T) {
	store := newMemIntentStore()
	store.createErr = storage.ErrConnection
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	d := NewDispatcher(store, discardLogger(), time.Second, email)

	_, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail},
	})
	require.ErrorIs(t, err, storage.ErrConnection)

	assert.Zero(t, email.calls.Load(), "no fan-out after a failed intent write")
}

func TestSend_StatusUpdateFailureIsNotFatal(t *testing.T) {
	store := newMemIntentStore()
	store.updateErr = errors.New("disk full")
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	d := NewDispatcher(store, discardLogger(), time.Second, email)

	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail},
	})
	require.NoError(t, err, "the summary is already in hand; bookkeeping failure stays internal")
	assert.Equal(t, StatusDelivered, summary.Status)
}

func TestSend_PersistsTerminalStatusAndOutcomes(t *testing.T) {
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	sms := &stubAdapter{ch: ChannelSMS, enabled: true, outcome: Failed(ChannelSMS, "number unreachable")}
	d := NewDispatcher(store, discardLogger(), time.Second, email, sms)

	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Kind:     KindTransactional,
		Subject:  "Order shipped",
		Channels: []Channel{ChannelEmail, ChannelSMS},
	})
	require.NoError(t, err)
	require.NotEmpty(t, summary.IntentID)

	rec, err := store.GetIntent(context.Background(), summary.IntentID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPartial), rec.Status)
	assert.Equal(t, "u-1", rec.UserID)
	assert.Equal(t, string(KindTransactional), rec.Kind)

	var persisted []Outcome
	require.NoError(t, json.Unmarshal([]byte(rec.Outcomes), &persisted))
	assert.Equal(t, summary.Outcomes, persisted)
}

func TestSend_DuplicateChannelsCollapsed(t *testing.T) {
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, outcome: Sent(ChannelEmail, "m1")}
	d := NewDispatcher(store, discardLogger(), time.Second, email)

	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail, ChannelEmail, ChannelEmail},
	})
	require.NoError(t, err)

	assert.Len(t, summary.Outcomes, 1)
	assert.Equal(t, int32(1), email.calls.Load())
}

func TestSend_OutcomeOrderMatchesRequestOrder(t *testing.T) {
	// The slow first channel must not reorder the outcome list.
	store := newMemIntentStore()
	email := &stubAdapter{ch: ChannelEmail, enabled: true, delay: 50 * time.Millisecond, outcome: Sent(ChannelEmail, "m1")}
	inapp := &stubAdapter{ch: ChannelInApp, enabled: true, outcome: Sent(ChannelInApp, "")}
	d := NewDispatcher(store, discardLogger(), time.Second, email, inapp)

	summary, err := d.Send(context.Background(), testRecipient(), Request{
		Channels: []Channel{ChannelEmail, ChannelInApp},
	})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, ChannelEmail, summary.Outcomes[0].Channel)
	assert.Equal(t, ChannelInApp, summary.Outcomes[1].Channel)
}

func TestChannels_ReportsEnabledState(t *testing.T) {
	d := NewDispatcher(newMemIntentStore(), discardLogger(), time.Second,
		&stubAdapter{ch: ChannelEmail, enabled: true},
		&stubAdapter{ch: ChannelSMS},
	)

	status := d.Channels()
	assert.Equal(t, map[Channel]bool{ChannelEmail: true, ChannelSMS: false}, status)
}
