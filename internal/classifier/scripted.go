package classifier

import (
	"context"
	"sync"
)

// Scripted is a Classifier that answers from canned raw replies keyed by
// the exact input text. Replies go through the same Decoder as live ones.
// The scenario harness and tests use it in place of a model.
type Scripted struct {
	decoder *Decoder

	mu       sync.Mutex
	replies  map[string]string
	fallback string
	calls    []Request
}

// NotActionReply is the reply Scripted gives for unknown text.
const NotActionReply = `{"is_action": false, "reason": "no scripted reply"}`

// NewScripted creates a scripted classifier with no replies.
func NewScripted() (*Scripted, error) {
	dec, err := NewDecoder()
	if err != nil {
		return nil, err
	}
	return &Scripted{decoder: dec, replies: make(map[string]string), fallback: NotActionReply}, nil
}

// Reply registers raw as the answer for text.
func (s *Scripted) Reply(text, raw string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[text] = raw
	return s
}

// Calls returns the requests seen so far.
func (s *Scripted) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.calls...)
}

// Classify implements Classifier.
func (s *Scripted) Classify(ctx context.Context, req Request) (Intent, error) {
	if err := ctx.Err(); err != nil {
		return Intent{}, err
	}
	s.mu.Lock()
	raw, ok := s.replies[req.Text]
	if !ok {
		raw = s.fallback
	}
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	return s.decoder.Decode([]byte(raw))
}
