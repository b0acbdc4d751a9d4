package event

import (
	"encoding/json"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/llenroc/Libra/internal/domain"
)

// Discriminator values with a specialized decode path. Everything else on
// the order-event stream falls back to the generic OrderEvent variant.
const (
	typeSubscriptionAck = "subscription_ack"
	typeHeartbeat       = "heartbeat"
	typeFill            = "fill"
	typeCancelled       = "cancelled"
	typeCancelRejected  = "cancel_rejected"
	typeUpdate          = "update"
	typeTrade           = "trade"
)

// ClassifyOrderPayload turns one raw order-event payload into typed events,
// preserving delivery order. Payloads may be a single object or a batch of
// heterogeneous objects in one array; each element is decoded in two passes:
// the type discriminator first, then the variant it selects. Elements that
// fail to decode are logged and dropped, the rest of the batch survives.
func ClassifyOrderPayload(raw []byte) []Event {
	root := gjson.ParseBytes(raw)

	var elems []gjson.Result
	if root.IsArray() {
		elems = root.Array()
	} else {
		elems = []gjson.Result{root}
	}

	events := make([]Event, 0, len(elems))
	for _, elem := range elems {
		ev, err := decodeOrderElement(elem)
		if err != nil {
			slog.Error("Dropping undecodable order event",
				slog.String("type", elem.Get("type").String()),
				slog.Any("error", err))
			continue
		}
		if ev != nil {
			events = append(events, ev)
		}
	}
	return events
}

func decodeOrderElement(elem gjson.Result) (Event, error) {
	switch elem.Get("type").String() {
	case typeSubscriptionAck:
		return nil, nil
	case typeHeartbeat:
		var hb HeartbeatEvent
		if err := json.Unmarshal([]byte(elem.Raw), &hb); err != nil {
			return nil, err
		}
		return &hb, nil
	case typeFill:
		fill := AcquireFillEvent()
		if err := json.Unmarshal([]byte(elem.Raw), fill); err != nil {
			ReleaseFillEvent(fill)
			return nil, err
		}
		return fill, nil
	case typeCancelled, typeCancelRejected:
		cancel := AcquireCancelEvent()
		if err := json.Unmarshal([]byte(elem.Raw), cancel); err != nil {
			ReleaseCancelEvent(cancel)
			return nil, err
		}
		return cancel, nil
	default:
		// Generic lifecycle variant: booked, initial, closed, accepted...
		order := AcquireOrderEvent()
		if err := json.Unmarshal([]byte(elem.Raw), order); err != nil {
			ReleaseOrderEvent(order)
			return nil, err
		}
		return order, nil
	}
}

// ClassifyMarketPayload decodes one market-data payload for symbol and
// returns the trade sub-events it carries, in order. Non-"update" envelopes
// and non-"trade" sub-events are ignored.
func ClassifyMarketPayload(symbol string, raw []byte) ([]domain.TradeEvent, error) {
	var env marketEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Type != typeUpdate {
		return nil, nil
	}

	var trades []domain.TradeEvent
	for _, sub := range env.Events {
		if sub.Type != typeTrade {
			continue
		}
		trades = append(trades, domain.TradeEvent{
			Symbol:      symbol,
			Price:       sub.Price,
			Amount:      sub.Amount,
			TimestampMs: env.TimestampMs,
		})
	}
	return trades, nil
}
