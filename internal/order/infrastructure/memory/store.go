// Package memory holds an in-process order store with the same versioned
// CAS semantics as the postgres repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/storelab/checkout/internal/order/domain"
)

type RecordedEvent struct {
	AggregateID string
	Type        string
	Payload     []byte
}

type Store struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	events []RecordedEvent
}

func NewStore() *Store {
	return &Store{orders: make(map[string]domain.Order)}
}

func (s *Store) Create(ctx context.Context, o domain.Order, eventType string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	s.orders[o.ID] = o
	s.events = append(s.events, RecordedEvent{AggregateID: o.ID, Type: eventType, Payload: payload})
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			o.Items = append([]domain.OrderItem(nil), o.Items...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.Status, eventType string, payload []byte) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if o.Version != expectedVersion {
		return domain.Order{}, domain.ErrConcurrencyConflict
	}
	o.Status = status
	o.Version++
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	s.events = append(s.events, RecordedEvent{AggregateID: id, Type: eventType, Payload: payload})
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o, nil
}

func (s *Store) AppendEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, RecordedEvent{AggregateID: aggregateID, Type: eventType, Payload: payload})
	return nil
}

// Events returns everything appended to the in-memory outbox, oldest first.
func (s *Store) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedEvent(nil), s.events...)
}
