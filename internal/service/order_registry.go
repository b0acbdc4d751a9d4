package service

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/llenroc/Libra/internal/domain"
)

// OrderRegistry is the live order store. Orders are keyed by durable
// identity (exchange id once booked, client id before) and classified into
// disjoint lifecycle buckets; every transition is atomic, so a concurrent
// reader never sees an order in two buckets or none mid-move.
type OrderRegistry struct {
	mu      sync.Mutex
	records map[string]*domain.OrderRecord
	buckets map[string]domain.Bucket
	alias   map[string]string // client id -> exchange id, set at booked

	onBucketChanged func(key string, from, to domain.Bucket)
	refreshValue    func()                   // valuation hook, fire-and-forget
	archive         func(domain.OrderRecord) // terminal order persistence, best-effort
}

// NewOrderRegistry creates an empty registry. All three hooks are optional.
func NewOrderRegistry(
	onBucketChanged func(key string, from, to domain.Bucket),
	refreshValue func(),
	archive func(domain.OrderRecord),
) *OrderRegistry {
	return &OrderRegistry{
		records:         make(map[string]*domain.OrderRecord),
		buckets:         make(map[string]domain.Bucket),
		alias:           make(map[string]string),
		onBucketChanged: onBucketChanged,
		refreshValue:    refreshValue,
		archive:         archive,
	}
}

// resolve maps either identity of an order to its durable key.
func (r *OrderRegistry) resolve(key string) string {
	if exchangeID, ok := r.alias[key]; ok {
		return exchangeID
	}
	return key
}

func (r *OrderRegistry) moveLocked(key string, to domain.Bucket) {
	from := r.buckets[key]
	if from == to {
		return
	}
	if to == domain.BucketNone {
		delete(r.buckets, key)
	} else {
		r.buckets[key] = to
	}
	if r.onBucketChanged != nil {
		r.onBucketChanged(key, from, to)
	}
}

func (r *OrderRegistry) upsertLocked(rec domain.OrderRecord) string {
	key := rec.Key()
	r.records[key] = &rec
	return key
}

// OnBooked handles booked/initial events: the order becomes Active and its
// client id starts resolving to the exchange id.
func (r *OrderRegistry) OnBooked(rec domain.OrderRecord) {
	r.mu.Lock()
	if rec.OrderID != "" && rec.ClientOrderID != "" {
		r.alias[rec.ClientOrderID] = rec.OrderID
		// The pending entry under the client id is the same logical order.
		if old, ok := r.buckets[rec.ClientOrderID]; ok {
			delete(r.buckets, rec.ClientOrderID)
			delete(r.records, rec.ClientOrderID)
			if r.onBucketChanged != nil {
				r.onBucketChanged(rec.ClientOrderID, old, domain.BucketNone)
			}
		}
	}
	key := r.upsertLocked(rec)
	r.moveLocked(key, domain.BucketActive)
	r.mu.Unlock()

	r.refresh()
}

// OnFilled updates execution progress without moving bucket membership;
// the transition out of Active happens on the subsequent closed event.
func (r *OrderRegistry) OnFilled(rec domain.OrderRecord) {
	r.mu.Lock()
	r.upsertLocked(rec)
	r.mu.Unlock()

	r.refresh()
}

// OnCancelled records the cancellation; the discrete bucket move is
// performed by the closed event that follows.
func (r *OrderRegistry) OnCancelled(rec domain.OrderRecord) {
	r.mu.Lock()
	r.upsertLocked(rec)
	r.mu.Unlock()

	r.refresh()
}

// OnClosed removes the order from whichever bucket currently shows it and
// re-buckets by terminal state: Cancelled when cancelled, Filled when fully
// executed, otherwise unclassified terminal (no bucket).
func (r *OrderRegistry) OnClosed(rec domain.OrderRecord) {
	r.mu.Lock()
	key := r.upsertLocked(rec)

	to := domain.BucketNone
	switch {
	case rec.IsCancelled:
		to = domain.BucketCancelled
	case rec.IsFilled():
		to = domain.BucketFilled
	}
	r.moveLocked(key, to)
	r.mu.Unlock()

	if r.archive != nil && (to == domain.BucketCancelled || to == domain.BucketFilled) {
		go r.archive(rec)
	}
	r.refresh()
}

// ReconcilePending rebuilds the Pending bucket from the outstanding
// submission list. Pending membership is a volatile snapshot, not an
// incrementally maintained set, so the whole bucket is replaced each call.
func (r *OrderRegistry) ReconcilePending(pending []domain.PendingOrder) {
	r.mu.Lock()

	fresh := make(map[string]bool, len(pending))
	for _, p := range pending {
		if p.ClientOrderID != "" {
			fresh[p.ClientOrderID] = true
		}
	}

	// Drop stale pending entries first, then insert the fresh snapshot.
	for key, bucket := range r.buckets {
		if bucket == domain.BucketPending && !fresh[key] {
			r.moveLocked(key, domain.BucketNone)
		}
	}
	for _, p := range pending {
		if p.ClientOrderID == "" {
			continue
		}
		if _, ok := r.records[p.ClientOrderID]; !ok {
			r.records[p.ClientOrderID] = &domain.OrderRecord{
				ClientOrderID:  p.ClientOrderID,
				Symbol:         p.Symbol,
				OriginalAmount: p.Amount,
				Status:         "pending",
			}
		}
		r.moveLocked(p.ClientOrderID, domain.BucketPending)
	}
	r.mu.Unlock()

	r.refresh()
}

// refresh invokes the valuation hook off the delivery path. The hook owns
// its own error handling; nothing here may block or fail the registry.
func (r *OrderRegistry) refresh() {
	if r.refreshValue == nil {
		return
	}
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Valuation refresh panic recovered", slog.Any("panic", rec))
			}
		}()
		r.refreshValue()
	}()
}

// Record returns a copy of the order for either of its identities.
func (r *OrderRegistry) Record(key string) (domain.OrderRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[r.resolve(key)]
	if !ok {
		return domain.OrderRecord{}, false
	}
	return *rec, true
}

// Bucket returns the current bucket for either of an order's identities.
func (r *OrderRegistry) Bucket(key string) domain.Bucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buckets[r.resolve(key)]
}

// Members returns the keys currently shown under one bucket, sorted.
func (r *OrderRegistry) Members(bucket domain.Bucket) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var keys []string
	for key, b := range r.buckets {
		if b == bucket {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of known order records.
func (r *OrderRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
