package peers

import "context"

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		peers: make(map[string]Peer),
	}
}

func (s *MemoryStore) Exists(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.peers[url]
	return ok, nil
}

func (s *MemoryStore) Insert(_ context.Context, p Peer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.peers[p.URL]; ok {
		return ErrDuplicatePeer
	}
	s.peers[p.URL] = p
	s.order = append(s.order, p.URL)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, url string) (Peer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[url]
	if !ok {
		return Peer{}, ErrPeerNotFound
	}
	return p, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.peers[url]; !ok {
		return nil
	}
	delete(s.peers, url)
	for i, u := range s.order {
		if u == url {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns peers in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Peer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Peer, 0, len(s.order))
	for _, u := range s.order {
		out = append(out, s.peers[u])
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
