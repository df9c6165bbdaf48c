package analysis

import (
	"errors"
	"sync"

	"go.lsp.dev/protocol"
)

// ErrDocumentExists is returned by Store.Add when a document with the same
// URI is already registered. Duplicate registration is a caller bug, not a
// runtime condition.
var ErrDocumentExists = errors.New("document already registered")

// Store is the registry of open parsed documents. It forwards every
// document's change events onto one aggregate stream so downstream
// consumers need a single subscription regardless of document count.
type Store struct {
	mu     sync.RWMutex
	docs   map[protocol.DocumentURI]*ParsedDocument
	unsubs map[protocol.DocumentURI]func()

	subMu   sync.Mutex
	subs    map[int]func(ChangeEvent)
	subIDs  []int
	nextSub int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:   make(map[protocol.DocumentURI]*ParsedDocument),
		unsubs: make(map[protocol.DocumentURI]func()),
		subs:   make(map[int]func(ChangeEvent)),
	}
}

// Add registers a document and begins forwarding its change events.
func (s *Store) Add(doc *ParsedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uri := doc.URI()
	if _, ok := s.docs[uri]; ok {
		return ErrDocumentExists
	}

	s.docs[uri] = doc
	s.unsubs[uri] = doc.OnChange(s.publish)

	return nil
}

// Remove deregisters a document. The forwarding subscription is torn down
// and the document's pending reparse is discarded before it is dropped, so
// no event for a removed document can reach the aggregate stream and no
// debounce timer outlives it. A no-op when the URI is unknown.
func (s *Store) Remove(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unsub, ok := s.unsubs[uri]
	if !ok {
		return
	}

	unsub()
	s.docs[uri].Close()
	delete(s.unsubs, uri)
	delete(s.docs, uri)
}

// Find returns the document for uri, or nil.
func (s *Store) Find(uri protocol.DocumentURI) *ParsedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.docs[uri]
}

// Count returns the number of registered documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs)
}

// Subscribe registers a handler on the aggregate change stream and returns
// its unsubscribe function. Handlers run inline with the reparse that
// produced the event.
func (s *Store) Subscribe(fn func(ChangeEvent)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subIDs = append(s.subIDs, id)

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()

		delete(s.subs, id)

		for i, v := range s.subIDs {
			if v == id {
				s.subIDs = append(s.subIDs[:i], s.subIDs[i+1:]...)

				break
			}
		}
	}
}

func (s *Store) publish(ev ChangeEvent) {
	s.subMu.Lock()
	handlers := make([]func(ChangeEvent), 0, len(s.subIDs))

	for _, id := range s.subIDs {
		handlers = append(handlers, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}
