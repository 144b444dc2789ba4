package iso8583

import "sync"

// MessagePool is a bounded, mutex-guarded stack of reusable Message
// records for high-throughput parse loops. Acquire and Release hold
// the lock only briefly and never block on anything else. A released
// message must no longer be referenced by the caller.
type MessagePool struct {
	mu   sync.Mutex
	free []*Message
	max  int

	hits   uint64
	misses uint64
}

// NewMessagePool creates a pool that retains at most size messages.
func NewMessagePool(size int) *MessagePool {
	if size < 1 {
		size = 1
	}
	return &MessagePool{
		free: make([]*Message, 0, size),
		max:  size,
	}
}

// Acquire returns a zeroed message, recycled when one is available.
func (p *MessagePool) Acquire() *Message {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		msg := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.hits++
		p.mu.Unlock()
		return msg
	}
	p.misses++
	p.mu.Unlock()
	return NewMessage("")
}

// Release zeroes a message and returns it to the pool. Messages beyond
// the pool's capacity are dropped for the garbage collector.
func (p *MessagePool) Release(msg *Message) {
	if msg == nil {
		return
	}
	msg.MTI = ""
	msg.Bitmap = ""
	msg.Network = ""
	msg.Version = V1987
	msg.EMV = nil
	msg.Raw = ""
	if msg.Fields == nil {
		msg.Fields = make(map[int]string)
	} else {
		for k := range msg.Fields {
			delete(msg.Fields, k)
		}
	}

	p.mu.Lock()
	if len(p.free) < p.max {
		p.free = append(p.free, msg)
	}
	p.mu.Unlock()
}

// Len returns the number of idle messages held.
func (p *MessagePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Stats returns the acquire hit and miss counts so far.
func (p *MessagePool) Stats() (hits, misses uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses
}
