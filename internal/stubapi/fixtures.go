package stubapi

import (
	"fmt"
	"time"

	"github.com/clipmarket/client/internal/videos"
)

// DefaultFixtures seeds the stub with a pair of accounts and a mixed
// feed: free shorts interleaved with priced long-form videos, enough of
// them to exercise several reveal pages.
func DefaultFixtures() *Store {
	store := NewStore()

	store.AddUser(User{
		ID:       "u-alice",
		Username: "alice",
		Email:    "alice@clipmarket.dev",
		Password: "letmein",
		Wallet:   500,
	})
	store.AddUser(User{
		ID:       "u-bhanu",
		Username: "bhanu",
		Email:    "bhanu@clipmarket.dev",
		Password: "letmein",
		Wallet:   40,
	})

	creators := []struct{ id, name string }{
		{"c-mira", "mira.films"},
		{"c-dev", "devraj"},
	}

	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("v%d", i+1)
		creator := creators[i%len(creators)]

		payload := videos.Payload{
			ID:          id,
			Title:       fmt.Sprintf("Clip #%d", i+1),
			Description: "seeded stub video",
			Type:        "short",
			FileURL:     "https://media.clipmarket.dev/" + id + ".mp4",
			Price:       0,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		payload.Creator.ID = creator.id
		payload.Creator.Username = creator.name

		// Every third entry is a priced long-form video.
		if i%3 == 2 {
			payload.Type = "long"
			payload.FileURL = ""
			payload.VideoURL = "https://videos.clipmarket.dev/watch/" + id
			payload.Thumbnail = "https://media.clipmarket.dev/thumbs/" + id + ".jpg"
			payload.Price = 50 + 10*i
		}

		store.AddVideo(payload)
	}

	return store
}
