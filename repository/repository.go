package repository

import (
	"github.com/google/uuid"
)

const (
	profileColumns = `id, full_name, avatar_url, region, farm_type, created_at, updated_at`
	postColumns    = `id, user_id, content, image_url, like_count, comment_count, created_at, updated_at`
	likeColumns    = `id, post_id, user_id, type, created_at`
	commentColumns = `id, post_id, user_id, content, created_at, updated_at`
)

// Distinct drops duplicate ids, keeping first-seen order.
func Distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
