package converter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// OrderingPolicy decides how events sharing a tick are ordered. Events later
// in the merged stream take effect last, so they win same-tick collisions.
type OrderingPolicy int

const (
	// OrderChannelPriority sorts lower channels last at equal ticks, so the
	// lowest channel wins. Events without a channel sort first.
	OrderChannelPriority OrderingPolicy = iota
	// OrderChannelReverse sorts higher channels last at equal ticks.
	// Events without a channel sort first.
	OrderChannelReverse
	// OrderLegacy is a stable sort on tick only; track order decides ties.
	OrderLegacy
	// OrderLegacyReverse reverses the whole event list before the stable
	// tick sort, so later tracks and later messages come first at ties.
	OrderLegacyReverse
)

const (
	noChannelPriority = 999
	noChannelReverse  = -1
)

var policyNames = map[OrderingPolicy]string{
	OrderChannelPriority: "priority",
	OrderChannelReverse:  "reverse",
	OrderLegacy:          "legacy",
	OrderLegacyReverse:   "legacy-reverse",
}

func (p OrderingPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("OrderingPolicy(%d)", int(p))
}

// ParseOrderingPolicy parses the name of an ordering policy
func ParseOrderingPolicy(s string) (OrderingPolicy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return OrderChannelPriority, nil
	}
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return OrderChannelPriority, fmt.Errorf("unknown ordering policy %q", s)
}

// PolicyFor maps the reverse and old-logic switches to a policy
func PolicyFor(reverse, legacy bool) OrderingPolicy {
	switch {
	case legacy && reverse:
		return OrderLegacyReverse
	case legacy:
		return OrderLegacy
	case reverse:
		return OrderChannelReverse
	default:
		return OrderChannelPriority
	}
}

// Merge flattens per-track delta times into absolute ticks and returns a
// single stream ordered by tick, with ties broken by the policy.
func Merge(tracks []Track, policy OrderingPolicy) []RawEvent {
	size := 0
	for _, track := range tracks {
		size += len(track)
	}

	events := make([]RawEvent, 0, size)
	for _, track := range tracks {
		var tick int64
		for _, msg := range track {
			tick += int64(msg.Delta)
			events = append(events, RawEvent{Tick: tick, Event: msg.Event})
		}
	}

	sortEvents(events, policy)
	return events
}

func sortEvents(events []RawEvent, policy OrderingPolicy) {
	switch policy {
	case OrderChannelReverse:
		slices.SortStableFunc(events, func(a, b RawEvent) int {
			return cmp.Or(
				cmp.Compare(a.Tick, b.Tick),
				cmp.Compare(channelKey(a.Event, noChannelReverse), channelKey(b.Event, noChannelReverse)),
			)
		})
	case OrderLegacy, OrderLegacyReverse:
		if policy == OrderLegacyReverse {
			slices.Reverse(events)
		}
		slices.SortStableFunc(events, func(a, b RawEvent) int {
			return cmp.Compare(a.Tick, b.Tick)
		})
	default:
		slices.SortStableFunc(events, func(a, b RawEvent) int {
			return cmp.Or(
				cmp.Compare(a.Tick, b.Tick),
				cmp.Compare(-channelKey(a.Event, noChannelPriority), -channelKey(b.Event, noChannelPriority)),
			)
		})
	}
}

func channelKey(e Event, missing int) int {
	if !e.HasChannel {
		return missing
	}
	return int(e.Channel)
}

// FilterChannel drops events carrying a channel other than target. Events
// without a channel, such as tempo changes, are always kept.
func FilterChannel(events []TimedEvent, target uint8) []TimedEvent {
	kept := make([]TimedEvent, 0, len(events))
	for _, ev := range events {
		if ev.HasChannel && ev.Channel != target {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}
