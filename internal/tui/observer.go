package tui

import (
	"github.com/mmcdole/podcatch/internal/bus"
	"github.com/mmcdole/podcatch/internal/domain"
)

// ChannelObserver adapts bus notifications to a channel for Bubble Tea.
type ChannelObserver struct {
	ch    chan domain.Change
	group bus.Group
}

// NewChannelObserver subscribes to topics on b and forwards every change to
// a buffered channel.
func NewChannelObserver(b *bus.Bus, size int, topics ...domain.Topic) *ChannelObserver {
	o := &ChannelObserver{ch: make(chan domain.Change, size)}
	for _, topic := range topics {
		o.group.Add(b.Subscribe(topic, o.onChange))
	}
	return o
}

// onChange sends the change to the channel (non-blocking if full). Views
// reload whole collections, so a dropped change only delays a refresh.
func (o *ChannelObserver) onChange(change domain.Change) {
	select {
	case o.ch <- change:
	default: // Non-blocking if channel full
	}
}

// Changes returns the receive side of the channel
func (o *ChannelObserver) Changes() <-chan domain.Change {
	return o.ch
}

// Close releases every subscription
func (o *ChannelObserver) Close() {
	o.group.Close()
}
