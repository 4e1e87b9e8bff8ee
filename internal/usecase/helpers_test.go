package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	airdrop "airdrop-service"
	"airdrop-service/internal/domain"
	"airdrop-service/internal/metrics"
)

// --- shared fakes ---

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*domain.AirdropRecord
	nextID  int

	findErr   error
	insertErr error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*domain.AirdropRecord{}}
}

func (f *fakeRepo) FindByIdentity(ctx context.Context, identity string) (*domain.AirdropRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	record, ok := f.records[identity]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *fakeRepo) InsertIfAbsent(ctx context.Context, record *domain.AirdropRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.records[record.Identity]; ok {
		return domain.ErrAlreadyRegistered
	}
	f.nextID++
	record.ID = fmt.Sprintf("record-%d", f.nextID)
	clone := *record
	f.records[record.Identity] = &clone
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, patch domain.RecordPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, record := range f.records {
		if record.ID != id {
			continue
		}
		if patch.ClaimTransactionHash != nil {
			record.ClaimTransactionHash = patch.ClaimTransactionHash
		}
		if patch.Claimed != nil {
			record.Claimed = *patch.Claimed
		}
		if patch.ClaimedAmount != nil {
			record.ClaimedAmount = patch.ClaimedAmount
		}
		return nil
	}
	return domain.ErrRecordNotFound
}

func (f *fakeRepo) ListPendingTransfers(ctx context.Context, limit int) ([]domain.AirdropRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []domain.AirdropRecord
	for _, record := range f.records {
		if record.PendingTransfer() && len(pending) < limit {
			pending = append(pending, *record)
		}
	}
	return pending, nil
}

func (f *fakeRepo) get(identity string) *domain.AirdropRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[identity]
}

func (f *fakeRepo) put(record *domain.AirdropRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.Identity] = record
}

type fakeTransfer struct {
	mu            sync.Mutex
	initiateCalls int
	finalCalls    int
	hash          string

	initiateErr error
	finalErr    error
	final       bool
	finalAfter  int // polls before the transfer reads as final
}

func (f *fakeTransfer) Initiate(ctx context.Context, destination string, amount float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiateCalls++
	if f.initiateErr != nil {
		return "", f.initiateErr
	}
	if f.hash == "" {
		f.hash = "0xabc123"
	}
	return f.hash, nil
}

func (f *fakeTransfer) IsFinal(ctx context.Context, txHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalCalls++
	if f.finalErr != nil {
		return false, f.finalErr
	}
	if f.finalAfter > 0 {
		f.finalAfter--
		return false, nil
	}
	return f.final, nil
}

func (f *fakeTransfer) initiated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initiateCalls
}

type fakeLease struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLease() *fakeLease {
	return &fakeLease{held: map[string]bool{}}
}

func (f *fakeLease) Acquire(ctx context.Context, identity string, ttl time.Duration) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[identity] {
		return nil, ErrLeaseHeld
	}
	f.held[identity] = true
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, identity)
	}, nil
}

type fakeIdentity struct {
	verify func(proof airdrop.ActivityProof) bool
}

func (f *fakeIdentity) VerifyProof(ctx context.Context, proof airdrop.ActivityProof, identity string) bool {
	if f.verify == nil {
		return true
	}
	return f.verify(proof)
}

type fakeGeo struct {
	country string
	ok      bool
}

func (f *fakeGeo) CountryForIP(ctx context.Context, ip string) (string, bool) {
	return f.country, f.ok
}

type fakeEvents struct {
	mu     sync.Mutex
	events []airdrop.Event
}

func (f *fakeEvents) Publish(ctx context.Context, event airdrop.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) byType(eventType string) []airdrop.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []airdrop.Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// --- shared helpers ---

func ptrFloat(v float64) *float64 { return &v }
func ptrString(v string) *string  { return &v }

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }
