package event

import (
	"sync"
)

// Pools for order-event variants. The classifier allocates one variant per
// batched element at stream rate; handlers copy what they keep into registry
// records, so the dispatcher returns events here once handled.
//
// Usage:
//
//	ev := AcquireOrderEvent()
//	// ... decode and handle ...
//	ReleaseOrderEvent(ev)
var orderPool = sync.Pool{
	New: func() interface{} {
		return &OrderEvent{}
	},
}

// AcquireOrderEvent gets a generic OrderEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireOrderEvent() *OrderEvent {
	return orderPool.Get().(*OrderEvent)
}

// ReleaseOrderEvent returns an OrderEvent to the pool.
func ReleaseOrderEvent(ev *OrderEvent) {
	if ev == nil {
		return
	}
	*ev = OrderEvent{}
	orderPool.Put(ev)
}

var fillPool = sync.Pool{
	New: func() interface{} {
		return &FillEvent{}
	},
}

// AcquireFillEvent gets a FillEvent from the pool.
func AcquireFillEvent() *FillEvent {
	return fillPool.Get().(*FillEvent)
}

// ReleaseFillEvent returns a FillEvent to the pool.
func ReleaseFillEvent(ev *FillEvent) {
	if ev == nil {
		return
	}
	*ev = FillEvent{}
	fillPool.Put(ev)
}

var cancelPool = sync.Pool{
	New: func() interface{} {
		return &CancelEvent{}
	},
}

// AcquireCancelEvent gets a CancelEvent from the pool.
func AcquireCancelEvent() *CancelEvent {
	return cancelPool.Get().(*CancelEvent)
}

// ReleaseCancelEvent returns a CancelEvent to the pool.
func ReleaseCancelEvent(ev *CancelEvent) {
	if ev == nil {
		return
	}
	*ev = CancelEvent{}
	cancelPool.Put(ev)
}

// Release returns any classified event to its pool.
func Release(ev Event) {
	switch e := ev.(type) {
	case *FillEvent:
		ReleaseFillEvent(e)
	case *CancelEvent:
		ReleaseCancelEvent(e)
	case *OrderEvent:
		ReleaseOrderEvent(e)
	}
}
