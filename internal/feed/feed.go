// Package feed keeps the live network feed of recently mined blocks.
package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dense-analysis/nexus/internal/metrics"
	"github.com/dense-analysis/nexus/internal/mock"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/gammazero/deque"
)

var logger = log.New(log.Writer(), "[feed] ", log.LstdFlags)

// subscriberBuffer is how many blocks a subscriber can fall behind before
// blocks are dropped for it.
const subscriberBuffer = 8

// Feed holds the most recent blocks, newest first, and fans new blocks out
// to subscribers.
type Feed struct {
	mu          sync.Mutex
	blocks      deque.Deque[model.FeedBlock]
	capacity    int
	next        int64
	generator   *mock.Generator
	subscribers map[chan model.FeedBlock]struct{}
	now         func() time.Time
}

// New creates a feed holding at most capacity blocks, seeded with the
// starting blocks.
func New(generator *mock.Generator, capacity int) *Feed {
	return NewWithClock(generator, capacity, time.Now)
}

func NewWithClock(generator *mock.Generator, capacity int, now func() time.Time) *Feed {
	f := &Feed{
		blocks:      deque.Deque[model.FeedBlock]{},
		capacity:    capacity,
		next:        mock.GenesisBlock + 1,
		generator:   generator,
		subscribers: make(map[chan model.FeedBlock]struct{}),
		now:         now,
	}

	for _, block := range mock.Blocks(now()) {
		f.blocks.PushBack(block)
	}

	f.trim()

	return f
}

func (f *Feed) trim() {
	for f.blocks.Len() > f.capacity {
		f.blocks.PopBack()
	}
}

func (f *Feed) withAge(block model.FeedBlock, now time.Time) model.FeedBlock {
	block.TimeAgo = mock.TimeAgo(block.MinedAt, now)

	return block
}

// Recent returns the blocks held, newest first.
func (f *Feed) Recent() []model.FeedBlock {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	out := make([]model.FeedBlock, f.blocks.Len())

	for i := range out {
		out[i] = f.withAge(f.blocks.At(i), now)
	}

	return out
}

// Mine adds a new block to the front of the feed and sends it to every
// subscriber. Subscribers that are not keeping up miss the block.
func (f *Feed) Mine() model.FeedBlock {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	block := f.withAge(f.generator.Block(f.next, now), now)
	f.next++

	f.blocks.PushFront(block)
	f.trim()

	for subscriber := range f.subscribers {
		select {
		case subscriber <- block:
		default:
			logger.Printf("dropped block %d for a slow subscriber", block.BlockNumber)
		}
	}

	return block
}

// Subscribe returns a channel of newly mined blocks, and a function to stop
// the subscription. The channel is closed when the subscription stops.
func (f *Feed) Subscribe() (<-chan model.FeedBlock, func()) {
	channel := make(chan model.FeedBlock, subscriberBuffer)

	f.mu.Lock()
	f.subscribers[channel] = struct{}{}
	f.mu.Unlock()

	metrics.FeedSubscribers.Inc()

	var once sync.Once

	return channel, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, channel)
			f.mu.Unlock()

			close(channel)
			metrics.FeedSubscribers.Dec()
		})
	}
}

// Subscribers returns the number of open subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.subscribers)
}

// Run mines a block every interval until ctx is done.
func (f *Feed) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Mine()
		}
	}
}
