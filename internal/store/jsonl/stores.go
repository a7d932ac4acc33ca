package jsonl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/seojun-dev/geumbang/internal/domain"
)

// File layout under the data directory.
const (
	listingsFile     = "listings.jsonl"
	threadsFile      = "threads.jsonl"
	inquiriesFile    = "inquiries.jsonl"    // buy-request audit log
	sellRequestsFile = "sell_requests.jsonl" // sell-request audit log
	messagesDir      = "messages"
)

// EnsureLayout creates the data directory, the per-thread messages
// directory, and empty collection files so the layout is inspectable from
// the first run.
func EnsureLayout(dataDir string) error {
	if err := os.MkdirAll(filepath.Join(dataDir, messagesDir), 0o755); err != nil {
		return fmt.Errorf("jsonl: ensure layout: %w", err)
	}
	for _, name := range []string{listingsFile, threadsFile, inquiriesFile, sellRequestsFile} {
		path := filepath.Join(dataDir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("jsonl: ensure %s: %w", name, err)
		}
		f.Close()
	}
	return nil
}

// ListingStore persists listings in listings.jsonl.
type ListingStore struct {
	col *Collection[domain.Listing]
}

// NewListingStore creates a listing store rooted at dataDir.
func NewListingStore(dataDir string) *ListingStore {
	return &ListingStore{col: NewCollection[domain.Listing](filepath.Join(dataDir, listingsFile))}
}

func (s *ListingStore) Append(ctx context.Context, l domain.Listing) error {
	return s.col.Append(l)
}

func (s *ListingStore) All(ctx context.Context) ([]domain.Listing, error) {
	return s.col.All()
}

// GetByID returns the listing with the given id or domain.ErrNotFound.
func (s *ListingStore) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	l, ok, err := s.col.FindFirst(func(x domain.Listing) bool { return x.ID == id })
	if err != nil {
		return domain.Listing{}, err
	}
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

// ThreadStore persists threads in threads.jsonl.
type ThreadStore struct {
	col *Collection[domain.Thread]
}

// NewThreadStore creates a thread store rooted at dataDir.
func NewThreadStore(dataDir string) *ThreadStore {
	return &ThreadStore{col: NewCollection[domain.Thread](filepath.Join(dataDir, threadsFile))}
}

func (s *ThreadStore) Append(ctx context.Context, t domain.Thread) error {
	return s.col.Append(t)
}

// GetByID returns the thread with the given id or domain.ErrNotFound.
func (s *ThreadStore) GetByID(ctx context.Context, id string) (domain.Thread, error) {
	t, ok, err := s.col.FindFirst(func(x domain.Thread) bool { return x.ThreadID == id })
	if err != nil {
		return domain.Thread{}, err
	}
	if !ok {
		return domain.Thread{}, domain.ErrNotFound
	}
	return t, nil
}

// FindByListingAndMember returns the thread on listingID that uid
// participates in, going through Thread.Members so legacy two-field threads
// match too.
func (s *ThreadStore) FindByListingAndMember(ctx context.Context, listingID, uid string) (domain.Thread, error) {
	t, ok, err := s.col.FindFirst(func(x domain.Thread) bool {
		return x.ListingID == listingID && x.HasMember(uid)
	})
	if err != nil {
		return domain.Thread{}, err
	}
	if !ok {
		return domain.Thread{}, domain.ErrNotFound
	}
	return t, nil
}

// MessageStore persists one message log per thread under messages/.
type MessageStore struct {
	dir string

	mu   sync.Mutex
	cols map[string]*Collection[domain.Message]
}

// NewMessageStore creates a message store rooted at dataDir.
func NewMessageStore(dataDir string) *MessageStore {
	return &MessageStore{
		dir:  filepath.Join(dataDir, messagesDir),
		cols: make(map[string]*Collection[domain.Message]),
	}
}

// forThread returns the collection for one thread, creating the handle on
// first use. The thread id is reduced to its base name so a malformed id
// can never escape the messages directory.
func (s *MessageStore) forThread(threadID string) *Collection[domain.Message] {
	name := filepath.Base(threadID)

	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.cols[name]
	if !ok {
		col = NewCollection[domain.Message](filepath.Join(s.dir, name+".jsonl"))
		s.cols[name] = col
	}
	return col
}

func (s *MessageStore) Append(ctx context.Context, threadID string, m domain.Message) error {
	return s.forThread(threadID).Append(m)
}

func (s *MessageStore) List(ctx context.Context, threadID string) ([]domain.Message, error) {
	return s.forThread(threadID).All()
}

// RequestLogStore routes audit records to the side-specific log file:
// buy requests to inquiries.jsonl, sell requests to sell_requests.jsonl.
type RequestLogStore struct {
	inquiries *Collection[domain.RequestRecord]
	sells     *Collection[domain.RequestRecord]
}

// NewRequestLogStore creates the audit log store rooted at dataDir.
func NewRequestLogStore(dataDir string) *RequestLogStore {
	return &RequestLogStore{
		inquiries: NewCollection[domain.RequestRecord](filepath.Join(dataDir, inquiriesFile)),
		sells:     NewCollection[domain.RequestRecord](filepath.Join(dataDir, sellRequestsFile)),
	}
}

func (s *RequestLogStore) Append(ctx context.Context, r domain.RequestRecord) error {
	if r.Side == domain.SideBuy {
		return s.inquiries.Append(r)
	}
	return s.sells.Append(r)
}

// Compile-time interface checks.
var (
	_ domain.ListingStore = (*ListingStore)(nil)
	_ domain.ThreadStore  = (*ThreadStore)(nil)
	_ domain.MessageStore = (*MessageStore)(nil)
	_ domain.RequestLog   = (*RequestLogStore)(nil)
)
