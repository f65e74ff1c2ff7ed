package mbox

import "sync"

// Subscriber receives every message delivered on a channel, in
// hardware arrival order. Callbacks run on the channel's receive
// dispatch worker and may block; blocking delays further dispatch on
// that channel only.
//
// Subscriber values must be comparable (pointers are): the value
// registered with Get is matched by identity when passed to Put.
type Subscriber interface {
	// OnMessage delivers one received message. length is the message
	// width in bytes.
	OnMessage(length int, msg Message)
}

// SubscriberFunc adapts a function to the Subscriber interface. The
// returned value is comparable, so it can later be unregistered.
func SubscriberFunc(f func(length int, msg Message)) Subscriber {
	return &funcSubscriber{f: f}
}

type funcSubscriber struct {
	f func(length int, msg Message)
}

func (s *funcSubscriber) OnMessage(length int, msg Message) {
	s.f(length, msg)
}

// notifierChain is an ordered list of subscribers. The channel does
// not own subscriber lifetime; registrations are non-owning.
type notifierChain struct {
	mu   sync.RWMutex
	subs []Subscriber
}

func (n *notifierChain) register(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, s)
}

func (n *notifierChain) unregister(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, cand := range n.subs {
		if cand == s {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

// notify invokes every subscriber in registration order and returns
// how many were called. Callbacks run outside the chain lock.
func (n *notifierChain) notify(length int, msg Message) int {
	n.mu.RLock()
	subs := make([]Subscriber, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, s := range subs {
		s.OnMessage(length, msg)
	}
	return len(subs)
}

func (n *notifierChain) count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
