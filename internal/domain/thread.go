package domain

import "time"

// ThreadStatus is the lifecycle state of a thread. Threads open on first
// contact and stay open; no close or archive transition exists.
type ThreadStatus string

const ThreadStatusOpen ThreadStatus = "open"

// Thread is a two-party conversation anchored to one listing. The
// participants list always holds the listing owner and the initiating
// counterpart. Threads written before the participants list existed carry
// only the two legacy scalar fields; Members reconstructs the set at read
// time so no migration pass over stored data is needed.
type Thread struct {
	ThreadID     string   `json:"thread_id"`
	ListingID    string   `json:"listing_id"`
	Participants []string `json:"participants,omitempty"`

	// Legacy scalar fields. Still written on new threads so older readers
	// keep working, and read back on threads that predate Participants.
	ListingOwnerUID string `json:"listing_owner_uid,omitempty"`
	BuyerUID        string `json:"buyer_uid,omitempty"`

	CreatedAt time.Time    `json:"created_at"`
	Status    ThreadStatus `json:"status"`
}

// Members returns both participants, falling back to the legacy two-field
// schema when the participants list is absent.
func (t Thread) Members() []string {
	if len(t.Participants) > 0 {
		return t.Participants
	}
	if t.BuyerUID != "" && t.ListingOwnerUID != "" {
		return []string{t.BuyerUID, t.ListingOwnerUID}
	}
	return nil
}

// HasMember reports whether uid is one of the thread's participants.
func (t Thread) HasMember(uid string) bool {
	for _, m := range t.Members() {
		if m == uid {
			return true
		}
	}
	return false
}

// Message is one entry in a thread's conversation log. Messages are
// immutable and never deleted; insertion order is display order.
type Message struct {
	SenderUID   string    `json:"sender_uid"`
	SenderAlias string    `json:"sender_alias"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}
