package models

import "time"

// VideoKind distinguishes autoplaying shorts from long-form videos.
type VideoKind string

const (
	KindShort VideoKind = "short"
	KindLong  VideoKind = "long"
)

// Identity describes the signed-in account as reported by the backend.
// Values of this type are treated as immutable snapshots: updates go
// through the With* helpers, which return a fresh copy.
type Identity struct {
	ID                string
	Username          string
	Email             string
	WalletBalance     int
	PurchasedVideoIDs []string
}

// HasPurchased reports whether the identity owns the given video.
func (i Identity) HasPurchased(videoID string) bool {
	for _, id := range i.PurchasedVideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}

// WithPurchase returns a copy of the identity with the video appended to
// its purchase set. The receiver is left untouched so snapshots held
// elsewhere keep their original view.
func (i Identity) WithPurchase(videoID string) Identity {
	if i.HasPurchased(videoID) {
		return i
	}
	purchased := make([]string, 0, len(i.PurchasedVideoIDs)+1)
	purchased = append(purchased, i.PurchasedVideoIDs...)
	purchased = append(purchased, videoID)
	i.PurchasedVideoIDs = purchased
	return i
}

// VideoSummary is a single entry in the discovery feed. Summaries are
// immutable once fetched within a session; identity is the ID field.
type VideoSummary struct {
	ID              string
	CreatorID       string
	CreatorUsername string
	Title           string
	Description     string
	Kind            VideoKind
	Price           int
	MediaRef        string
	ThumbnailRef    string
	CreatedAt       time.Time
}

// Free reports whether the video can be watched without a purchase.
func (v VideoSummary) Free() bool {
	return v.Price == 0
}

// CanWatch reports whether the identity is entitled to view the video:
// the video is free, or its id is in the identity's purchase set. The
// purchase set may lag a just-completed purchase until the next identity
// refresh; callers display that staleness rather than hiding it.
func CanWatch(video VideoSummary, identity Identity) bool {
	return video.Free() || identity.HasPurchased(video.ID)
}
