package spades

// Event is a notification emitted by a handler about a state change. Events
// are returned in the DeliverResult and are part of the transaction outcome,
// so a failed transaction never emits any.
type Event interface {
	// EventName returns a unique, dot separated name, for example
	// "wallet.submit".
	EventName() string
}

// EventsOf returns all events of the given name, in emission order.
func EventsOf(events []Event, name string) []Event {
	var res []Event
	for _, e := range events {
		if e.EventName() == name {
			res = append(res, e)
		}
	}
	return res
}
