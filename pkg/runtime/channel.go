package runtime

import (
	"fmt"
	"sync"
	"time"

	"rocketlang/core-go/pkg/types"
)

// DefaultChannelSize bounds a channel's buffer when no size is given.
const DefaultChannelSize = 10

// recvResult is what a parked receiver is woken with.
type recvResult struct {
	value  any
	closed bool
}

// Channel is a bounded, closable message queue. A send hands off directly to
// a parked receiver when one is waiting; otherwise values queue in the
// buffer, and overflow is a hard failure. Receivers park with their own
// timeout. Close wakes every parked receiver with an empty result.
type Channel struct {
	Name string

	mu      sync.Mutex
	buf     []any
	maxSize int
	closed  bool
	waiters []chan recvResult
}

// NewChannel creates a channel with the given buffer bound.
func NewChannel(name string, maxSize int) *Channel {
	if maxSize <= 0 {
		maxSize = DefaultChannelSize
	}
	return &Channel{Name: name, maxSize: maxSize}
}

// RocketType implements types.Typed.
func (c *Channel) RocketType() types.Type {
	return types.Channel(types.Any())
}

// Send delivers a value: direct handoff to the oldest parked receiver, else
// into the buffer. Sends to a closed or full channel fail immediately.
func (c *Channel) Send(value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("runtime: channel '%s' is closed", c.Name)
	}
	for len(c.waiters) > 0 {
		waiter := c.waiters[0]
		c.waiters = c.waiters[1:]
		select {
		case waiter <- recvResult{value: value}:
			return nil
		default:
			// Receiver already timed out; try the next one.
		}
	}
	if len(c.buf) >= c.maxSize {
		return fmt.Errorf("runtime: channel '%s' buffer full (max %d)", c.Name, c.maxSize)
	}
	c.buf = append(c.buf, value)
	return nil
}

// Receive pops the next buffered value, or parks until a sender hands one
// off, the channel closes, or the timeout elapses. Timeouts and closure are
// reported as failure Results, never as errors.
func (c *Channel) Receive(timeout time.Duration) *Result {
	c.mu.Lock()
	if len(c.buf) > 0 {
		value := c.buf[0]
		c.buf = c.buf[1:]
		c.mu.Unlock()
		return Ok(value)
	}
	if c.closed {
		c.mu.Unlock()
		return Fail(fmt.Sprintf("channel '%s' is closed", c.Name))
	}
	waiter := make(chan recvResult, 1)
	c.waiters = append(c.waiters, waiter)
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-waiter:
		if res.closed {
			return Fail(fmt.Sprintf("channel '%s' is closed", c.Name))
		}
		return Ok(res.value)
	case <-timer.C:
		c.removeWaiter(waiter)
		// A send may have raced the timeout; prefer the delivered value.
		select {
		case res := <-waiter:
			if !res.closed {
				return Ok(res.value)
			}
		default:
		}
		return Fail(fmt.Sprintf("timeout waiting on channel '%s'", c.Name))
	}
}

func (c *Channel) removeWaiter(waiter chan recvResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == waiter {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// Close flips the permanent closed flag and wakes every parked receiver
// with an empty result. Closing twice is a no-op.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, waiter := range waiters {
		select {
		case waiter <- recvResult{closed: true}:
		default:
		}
	}
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Len reports the buffered value count.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}
