package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
)

func bookedOrder(orderID, clientID string, original int64) domain.OrderRecord {
	return domain.OrderRecord{
		OrderID:        orderID,
		ClientOrderID:  clientID,
		Symbol:         "btcusd",
		Side:           "buy",
		Price:          decimal.NewFromInt(50000),
		OriginalAmount: decimal.NewFromInt(original),
		ExecutedAmount: decimal.Zero,
		Status:         "booked",
	}
}

func assertSingleBucket(t *testing.T, r *OrderRegistry, key string, want domain.Bucket) {
	t.Helper()
	count := 0
	for _, b := range []domain.Bucket{
		domain.BucketPending, domain.BucketActive, domain.BucketFilled, domain.BucketCancelled,
	} {
		for _, k := range r.Members(b) {
			if k == key {
				count++
				if b != want {
					t.Errorf("key %s in bucket %s, want %s", key, b, want)
				}
			}
		}
	}
	wantCount := 1
	if want == domain.BucketNone {
		wantCount = 0
	}
	if count != wantCount {
		t.Errorf("key %s appears in %d buckets, want %d", key, count, wantCount)
	}
}

func TestOrderRegistry_BookedFilledClosed(t *testing.T) {
	r := NewOrderRegistry(nil, nil, nil)

	rec := bookedOrder("109", "libra-1", 2)
	r.OnBooked(rec)
	assertSingleBucket(t, r, "109", domain.BucketActive)

	rec.ExecutedAmount = decimal.NewFromInt(1)
	rec.Status = "fill"
	r.OnFilled(rec)
	// Fill updates progress but membership stays Active.
	assertSingleBucket(t, r, "109", domain.BucketActive)
	got, _ := r.Record("109")
	if !got.ExecutedAmount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("ExecutedAmount = %v, want 1", got.ExecutedAmount)
	}

	rec.ExecutedAmount = decimal.NewFromInt(2)
	rec.Status = "closed"
	r.OnClosed(rec)
	assertSingleBucket(t, r, "109", domain.BucketFilled)
}

func TestOrderRegistry_ClosedCancelled(t *testing.T) {
	r := NewOrderRegistry(nil, nil, nil)

	rec := bookedOrder("110", "libra-2", 1)
	r.OnBooked(rec)

	rec.IsCancelled = true
	rec.Status = "closed"
	r.OnCancelled(rec)
	// Cancel itself does not move buckets; the closed event does.
	assertSingleBucket(t, r, "110", domain.BucketActive)

	r.OnClosed(rec)
	assertSingleBucket(t, r, "110", domain.BucketCancelled)
}

func TestOrderRegistry_ClosedPartialUnclassified(t *testing.T) {
	r := NewOrderRegistry(nil, nil, nil)

	rec := bookedOrder("111", "libra-3", 2)
	r.OnBooked(rec)

	rec.ExecutedAmount = decimal.NewFromInt(1)
	rec.Status = "closed"
	r.OnClosed(rec)

	// Closed, not cancelled, not fully executed: terminal but unbucketed.
	assertSingleBucket(t, r, "111", domain.BucketNone)
	if _, ok := r.Record("111"); !ok {
		t.Error("record should survive unbucketed closure")
	}
}

func TestOrderRegistry_IdentityAliasAtBooked(t *testing.T) {
	r := NewOrderRegistry(nil, nil, nil)

	r.ReconcilePending([]domain.PendingOrder{
		{ClientOrderID: "libra-4", Symbol: "btcusd", Amount: decimal.NewFromInt(1)},
	})
	if r.Bucket("libra-4") != domain.BucketPending {
		t.Fatalf("expected pending bucket, got %s", r.Bucket("libra-4"))
	}

	r.OnBooked(bookedOrder("112", "libra-4", 1))

	// Both identities resolve to the same logical order, now Active.
	if r.Bucket("libra-4") != domain.BucketActive {
		t.Errorf("client id bucket = %s, want Active", r.Bucket("libra-4"))
	}
	if r.Bucket("112") != domain.BucketActive {
		t.Errorf("exchange id bucket = %s, want Active", r.Bucket("112"))
	}
	if members := r.Members(domain.BucketPending); len(members) != 0 {
		t.Errorf("pending bucket should be empty, got %v", members)
	}
	if rec, ok := r.Record("libra-4"); !ok || rec.OrderID != "112" {
		t.Errorf("client id lookup = %+v, want order 112", rec)
	}
}

func TestOrderRegistry_ReconcilePendingRebuilds(t *testing.T) {
	r := NewOrderRegistry(nil, nil, nil)

	r.ReconcilePending([]domain.PendingOrder{
		{ClientOrderID: "a", Symbol: "btcusd", Amount: decimal.NewFromInt(1)},
		{ClientOrderID: "b", Symbol: "ethusd", Amount: decimal.NewFromInt(2)},
	})

	// "a" is no longer outstanding; snapshot replaces the whole bucket.
	r.ReconcilePending([]domain.PendingOrder{
		{ClientOrderID: "b", Symbol: "ethusd", Amount: decimal.NewFromInt(2)},
	})

	members := r.Members(domain.BucketPending)
	if len(members) != 1 || members[0] != "b" {
		t.Errorf("pending members = %v, want [b]", members)
	}
}

func TestOrderRegistry_BucketChangeNotifications(t *testing.T) {
	type change struct {
		key      string
		from, to domain.Bucket
	}
	var changes []change
	r := NewOrderRegistry(func(key string, from, to domain.Bucket) {
		changes = append(changes, change{key, from, to})
	}, nil, nil)

	rec := bookedOrder("113", "", 1)
	r.OnBooked(rec)
	rec.ExecutedAmount = decimal.NewFromInt(1)
	r.OnClosed(rec)

	if len(changes) != 2 {
		t.Fatalf("Expected 2 changes, got %d", len(changes))
	}
	if changes[0].to != domain.BucketActive || changes[1].to != domain.BucketFilled {
		t.Errorf("transitions = %+v", changes)
	}
	if changes[1].from != domain.BucketActive {
		t.Errorf("second transition from = %s, want Active", changes[1].from)
	}
}

func TestOrderRegistry_ValuationHookFires(t *testing.T) {
	called := make(chan struct{}, 8)
	r := NewOrderRegistry(nil, func() { called <- struct{}{} }, nil)

	r.OnBooked(bookedOrder("114", "", 1))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("valuation hook was not invoked")
	}
}

func TestOrderRegistry_ValuationPanicDoesNotCorrupt(t *testing.T) {
	r := NewOrderRegistry(nil, func() { panic("balance API down") }, nil)

	rec := bookedOrder("115", "", 1)
	r.OnBooked(rec)
	time.Sleep(50 * time.Millisecond) // let the hook goroutine blow up

	// Registry state must be intact and still accepting events.
	assertSingleBucket(t, r, "115", domain.BucketActive)
	rec.ExecutedAmount = decimal.NewFromInt(1)
	r.OnClosed(rec)
	assertSingleBucket(t, r, "115", domain.BucketFilled)
}

func TestOrderRegistry_ArchiveOnTerminal(t *testing.T) {
	archived := make(chan domain.OrderRecord, 1)
	r := NewOrderRegistry(nil, nil, func(rec domain.OrderRecord) { archived <- rec })

	rec := bookedOrder("116", "", 1)
	r.OnBooked(rec)
	rec.ExecutedAmount = decimal.NewFromInt(1)
	rec.Status = "closed"
	r.OnClosed(rec)

	select {
	case got := <-archived:
		if got.OrderID != "116" {
			t.Errorf("archived OrderID = %q, want 116", got.OrderID)
		}
	case <-time.After(time.Second):
		t.Fatal("terminal order was not archived")
	}
}
