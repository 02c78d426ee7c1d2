// Package memory keeps every repository in process memory. It backs the
// --in-memory serve mode and the service and HTTP tests.
package memory

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/entity"
)

// Store is the shared state of the in-memory repositories. One mutex
// serializes all writes so multi-row creates are atomic.
type Store struct {
	mu sync.RWMutex

	users      map[string]entity.User
	tokens     map[string]entity.AccessToken
	clients    map[string]entity.Client
	clientSeq  []string
	addresses  map[string]entity.Address // by client id
	products   map[string]entity.Product
	productSeq []string
	orders     map[string]entity.Order
	items      map[string][]entity.OrderItem // by order id
	events     map[string][]entity.EventRecord
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:     map[string]entity.User{},
		tokens:    map[string]entity.AccessToken{},
		clients:   map[string]entity.Client{},
		addresses: map[string]entity.Address{},
		products:  map[string]entity.Product{},
		orders:    map[string]entity.Order{},
		items:     map[string][]entity.OrderItem{},
		events:    map[string][]entity.EventRecord{},
	}
}

func (s *Store) appendEvent(streamID, streamType string, e entity.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal event %s", e.EventType())
	}
	stream := s.events[streamID]
	s.events[streamID] = append(stream, entity.EventRecord{
		ID:         uuid.NewString(),
		StreamID:   streamID,
		StreamType: streamType,
		Version:    len(stream) + 1,
		EventType:  e.EventType(),
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

func containsFold(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func paginate[T any](rows []T, p entity.Pagination) []T {
	start := p.Offset()
	if start < 0 || start >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if p.PerPage > 0 && p.PerPage < end-start {
		end = start + p.PerPage
	}
	return rows[start:end]
}
