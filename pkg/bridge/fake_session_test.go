package bridge

import (
	"context"
	"errors"
	"sync"
)

type published struct {
	topic string
	data  []byte
}

// fakeSession is an in-memory Session. Tests feed subscriptions through
// deliver and inspect what the loop published.
type fakeSession struct {
	mu         sync.Mutex
	subs       map[string]chan []byte
	published  []published
	publishErr error
	closed     bool
	onPublish  chan published
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		subs:      make(map[string]chan []byte),
		onPublish: make(chan published, 64),
	}
}

func (s *fakeSession) Subscribe(_ context.Context, topic string) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("closed")
	}
	ch := make(chan []byte, 16)
	s.subs[topic] = ch
	return ch, nil
}

func (s *fakeSession) Publish(topic string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return s.publishErr
	}
	p := published{topic: topic, data: append([]byte(nil), data...)}
	s.published = append(s.published, p)
	s.onPublish <- p
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) deliver(topic string, data []byte) {
	s.mu.Lock()
	ch := s.subs[topic]
	s.mu.Unlock()
	ch <- data
}

// kill closes a subscription channel the way a dead transport would.
func (s *fakeSession) kill(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.subs[topic])
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) setPublishErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishErr = err
}

func (s *fakeSession) publishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}
