package service

import (
	"github.com/google/uuid"

	"community-service/model"
	"community-service/repository"
)

// denormalize joins likes, comments and profiles onto posts. Post order
// is kept, likes and comments keep their input order within each post,
// and counters are recomputed from the attached lists.
func denormalize(posts []models.Post, profiles map[uuid.UUID]models.Profile, likes []models.Like, comments []models.Comment) []models.Post {
	profileRefs := make(map[uuid.UUID]*models.Profile, len(profiles))
	for id, p := range profiles {
		p := p
		profileRefs[id] = &p
	}

	likesByPost := make(map[uuid.UUID][]models.Like, len(posts))
	for _, like := range likes {
		like.Profile = profileRefs[like.UserID]
		likesByPost[like.PostID] = append(likesByPost[like.PostID], like)
	}

	commentsByPost := make(map[uuid.UUID][]models.Comment, len(posts))
	for _, comment := range comments {
		comment.Profile = profileRefs[comment.UserID]
		commentsByPost[comment.PostID] = append(commentsByPost[comment.PostID], comment)
	}

	out := make([]models.Post, len(posts))
	for i, post := range posts {
		post.Profile = profileRefs[post.UserID]

		post.Likes = likesByPost[post.ID]
		if post.Likes == nil {
			post.Likes = []models.Like{}
		}
		post.Comments = commentsByPost[post.ID]
		if post.Comments == nil {
			post.Comments = []models.Comment{}
		}

		post.LikeCount = int32(len(post.Likes))
		post.CommentCount = int32(len(post.Comments))
		out[i] = post
	}

	return out
}

// mergeProfiles builds one lookup table from several fetches; later
// entries replace earlier ones with the same id.
func mergeProfiles(groups ...[]models.Profile) map[uuid.UUID]models.Profile {
	merged := make(map[uuid.UUID]models.Profile)
	for _, group := range groups {
		for _, p := range group {
			merged[p.ID] = p
		}
	}
	return merged
}

func postAuthorIDs(posts []models.Post) []uuid.UUID {
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.UserID
	}
	return repository.Distinct(ids)
}

func postIDs(posts []models.Post) []uuid.UUID {
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return repository.Distinct(ids)
}

func likerIDs(likes []models.Like) []uuid.UUID {
	ids := make([]uuid.UUID, len(likes))
	for i, l := range likes {
		ids[i] = l.UserID
	}
	return repository.Distinct(ids)
}

func commenterIDs(comments []models.Comment) []uuid.UUID {
	ids := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		ids[i] = c.UserID
	}
	return repository.Distinct(ids)
}
