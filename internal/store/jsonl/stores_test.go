package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojun-dev/geumbang/internal/domain"
)

func TestEnsureLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureLayout(dir))

	for _, name := range []string{"listings.jsonl", "threads.jsonl", "inquiries.jsonl", "sell_requests.jsonl"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	info, err := os.Stat(filepath.Join(dir, "messages"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent on an existing layout.
	assert.NoError(t, EnsureLayout(dir))
}

func TestListingStore_GetByID(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore(t.TempDir())

	require.NoError(t, s.Append(ctx, domain.Listing{ID: "l1", Type: domain.SideSell}))

	got, err := s.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domain.SideSell, got.Type)

	_, err = s.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestThreadStore_LegacySchemaMatchesMembers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewThreadStore(dir)

	// A thread written under the older schema: owner/buyer scalars, no
	// participants list.
	legacy := `{"thread_id":"t-legacy","listing_id":"l1","listing_owner_uid":"owner","buyer_uid":"buyer","created_at":"2023-04-01T10:00:00Z","status":"open"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "threads.jsonl"), []byte(legacy), 0o644))

	got, err := s.FindByListingAndMember(ctx, "l1", "buyer")
	require.NoError(t, err)
	assert.Equal(t, "t-legacy", got.ThreadID)
	assert.ElementsMatch(t, []string{"buyer", "owner"}, got.Members())

	got, err = s.FindByListingAndMember(ctx, "l1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "t-legacy", got.ThreadID)

	_, err = s.FindByListingAndMember(ctx, "l1", "stranger")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessageStore_IsolatesThreads(t *testing.T) {
	ctx := context.Background()
	s := NewMessageStore(t.TempDir())

	require.NoError(t, s.Append(ctx, "t1", domain.Message{SenderUID: "a", Text: "hello"}))
	require.NoError(t, s.Append(ctx, "t1", domain.Message{SenderUID: "b", Text: "hi"}))
	require.NoError(t, s.Append(ctx, "t2", domain.Message{SenderUID: "c", Text: "other"}))

	msgs, err := s.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, "hi", msgs[1].Text)

	msgs, err = s.List(ctx, "t2")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestMessageStore_OversizedMessageDoesNotPoisonThread(t *testing.T) {
	ctx := context.Background()
	s := NewMessageStore(t.TempDir())

	// One enormous message must not make the rest of the thread unreadable.
	require.NoError(t, s.Append(ctx, "t1", domain.Message{SenderUID: "a", Text: strings.Repeat("x", 2<<20)}))
	require.NoError(t, s.Append(ctx, "t1", domain.Message{SenderUID: "b", Text: "still here"}))

	msgs, err := s.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "still here", msgs[0].Text)
}

func TestRequestLogStore_RoutesBySide(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewRequestLogStore(dir)

	now := time.Now().UTC()
	require.NoError(t, s.Append(ctx, domain.RequestRecord{ID: "b1", Side: domain.SideBuy, CreatedAt: now}))
	require.NoError(t, s.Append(ctx, domain.RequestRecord{ID: "s1", Side: domain.SideSell, CreatedAt: now}))

	inquiries, err := NewCollection[domain.RequestRecord](filepath.Join(dir, "inquiries.jsonl")).All()
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.Equal(t, "b1", inquiries[0].ID)

	sells, err := NewCollection[domain.RequestRecord](filepath.Join(dir, "sell_requests.jsonl")).All()
	require.NoError(t, err)
	require.Len(t, sells, 1)
	assert.Equal(t, "s1", sells[0].ID)
}
