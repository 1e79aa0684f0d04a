// Package videos resolves video details from the backend and defines
// the wire shape shared by the feed and single-video endpoints.
package videos

import (
	"time"

	"github.com/clipmarket/client/internal/models"
)

// Payload mirrors a video document as the backend serializes it. The
// backend splits the media reference across two fields depending on the
// kind: fileUrl for shorts, videoUrl for long-form embeds.
type Payload struct {
	ID      string `json:"_id"`
	Creator struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
	} `json:"creator"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	FileURL     string    `json:"fileUrl"`
	VideoURL    string    `json:"videoUrl"`
	Price       int       `json:"price"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary converts the wire payload into the domain model.
func (p Payload) Summary() models.VideoSummary {
	kind := models.KindLong
	if p.Type == string(models.KindShort) {
		kind = models.KindShort
	}

	mediaRef := p.VideoURL
	if kind == models.KindShort {
		mediaRef = p.FileURL
	}

	return models.VideoSummary{
		ID:              p.ID,
		CreatorID:       p.Creator.ID,
		CreatorUsername: p.Creator.Username,
		Title:           p.Title,
		Description:     p.Description,
		Kind:            kind,
		Price:           p.Price,
		MediaRef:        mediaRef,
		ThumbnailRef:    p.Thumbnail,
		CreatedAt:       p.CreatedAt,
	}
}
