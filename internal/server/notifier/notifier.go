// Package notifier provides a broadcast mechanism for workbook change
// notifications. Listeners subscribe to a workbook name and receive an
// empty-struct ping when it changes; they re-fetch the document themselves.
package notifier

import "sync"

// Notifier broadcasts per-workbook change pings to subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[string]map[chan struct{}]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives pings when the named workbook
// changes. The caller must call Unsubscribe when done to prevent leaks.
func (n *Notifier) Subscribe(workbook string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	if n.listeners[workbook] == nil {
		n.listeners[workbook] = make(map[chan struct{}]struct{})
	}
	n.listeners[workbook][ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(workbook string, ch chan struct{}) {
	n.mu.Lock()
	if set, ok := n.listeners[workbook]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(n.listeners, workbook)
		}
	}
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends a ping to all listeners of the named workbook.
// Non-blocking: a listener with a full channel catches up on its next read.
func (n *Notifier) Broadcast(workbook string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners[workbook] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
