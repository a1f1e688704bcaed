package popup

import "sync"

// Message is one raw window message. Origin is informational only - it is an
// untrusted field and plays no part in result validation, which rests solely
// on the state-token comparison.
type Message struct {
	Origin string
	Data   []byte
}

// MessageSource delivers window messages to a coordinator. Subscribe
// registers one listener; the returned cancel removes it.
type MessageSource interface {
	Subscribe() (messages <-chan Message, cancel func())
}

// ChannelSource is a simple fan-out MessageSource for embedding and tests:
// Post delivers a message to every current subscriber.
type ChannelSource struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan Message
}

func NewChannelSource() *ChannelSource {
	return &ChannelSource{subscribers: make(map[int]chan Message)}
}

func (s *ChannelSource) Subscribe() (<-chan Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Message, 8)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
	return ch, cancel
}

// Post delivers to all current subscribers without blocking; a subscriber
// with a full buffer misses the message.
func (s *ChannelSource) Post(origin string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- Message{Origin: origin, Data: data}:
		default:
		}
	}
}
