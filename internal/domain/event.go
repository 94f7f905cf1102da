package domain

import "strconv"

// Realtime event names.
const (
	EventNewMeme    = "new_meme"
	EventVoteUpdate = "vote_update"
	EventNewBid     = "new_bid"
	EventMemeUpdate = "meme_update"
)

// TopicAll is the topic every realtime subscriber receives.
const TopicAll = "memes"

// MemeTopic returns the room topic for a single meme.
func MemeTopic(memeID int64) string {
	return "meme:" + strconv.FormatInt(memeID, 10)
}

// VoteUpdate is the vote_update payload.
type VoteUpdate struct {
	MemeID     int64 `json:"meme_id"`
	NewUpvotes int   `json:"new_upvotes"`
}

// NewBidEvent is the new_bid payload.
type NewBidEvent struct {
	MemeID int64   `json:"meme_id"`
	Bid    BidView `json:"bid"`
}
