package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"community-service/events"
	"community-service/logs"
	"community-service/model"
	"community-service/repository"
)

const (
	MaxImageSize     = 5 * 1024 * 1024
	MaxCommentLength = 2000

	// sniffLen is how much of an upload http.DetectContentType looks at.
	sniffLen = 512
)

// ImageStore is the object storage capability.
type ImageStore interface {
	Upload(ctx context.Context, path string, body io.Reader, contentType string) error
	PublicURL(path string) string
}

// EventPublisher announces mutations and delivers user notices.
type EventPublisher interface {
	PublishPostCreated(event events.PostCreatedEvent) error
	PublishPostDeleted(event events.PostDeletedEvent) error
	PublishReactionToggled(event events.ReactionToggledEvent) error
	PublishCommentAdded(event events.CommentAddedEvent) error
	Notify(userID uuid.UUID, level, message string) error
}

// FeedRefresher is the read side the gateway invalidates after writes.
type FeedRefresher interface {
	Refresh()
	ReloadMembers(ctx context.Context) error
}

// ImageUpload is an image attached to a post or a profile.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfileInput is a profile edit, optionally with a new avatar.
type ProfileInput struct {
	FullName *string
	Region   *string
	FarmType *string
	Avatar   *ImageUpload
}

// Gateway performs the community write operations. Each takes the
// viewer explicitly; a nil viewer is rejected before any write.
type Gateway struct {
	posts     repository.PostRepository
	likes     repository.LikeRepository
	comments  repository.CommentRepository
	profiles  repository.ProfileRepository
	images    ImageStore
	publisher EventPublisher
	feed      FeedRefresher
	now       func() time.Time
}

func NewGateway(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	profiles repository.ProfileRepository,
	images ImageStore,
	publisher EventPublisher,
	feed FeedRefresher,
) *Gateway {
	return &Gateway{
		posts:     posts,
		likes:     likes,
		comments:  comments,
		profiles:  profiles,
		images:    images,
		publisher: publisher,
		feed:      feed,
		now:       time.Now,
	}
}

// CreatePost uploads the optional image, then inserts the post.
func (g *Gateway) CreatePost(ctx context.Context, viewerID *uuid.UUID, content string, image *ImageUpload) (*models.Post, error) {
	if viewerID == nil {
		return nil, ErrUnauthenticated
	}
	viewer := *viewerID

	if strings.TrimSpace(content) == "" && image == nil {
		return nil, g.reject("create_post", viewer, ErrEmptyPost)
	}
	image, err := sniffImage(image)
	if err != nil {
		return nil, g.fail("create_post", viewer, "Could not publish the post", err, nil)
	}
	if err := validateImage(image); err != nil {
		return nil, g.reject("create_post", viewer, err)
	}

	var imageURL *string
	if image != nil {
		url, err := g.uploadImage(ctx, viewer, image)
		if err != nil {
			return nil, g.fail("create_post", viewer, "Could not publish the post", err, nil)
		}
		imageURL = &url
	}

	now := g.now()
	post := &models.Post{
		ID:        uuid.New(),
		UserID:    viewer,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.posts.Create(ctx, post); err != nil {
		fields := map[string]interface{}{}
		if imageURL != nil {
			fields["orphaned_image"] = *imageURL
		}
		return nil, g.fail("create_post", viewer, "Could not publish the post", err, fields)
	}
	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}

	if err := g.publisher.PublishPostCreated(events.PostCreatedEvent{
		PostID:    post.ID,
		UserID:    post.UserID,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt,
	}); err != nil {
		log.Printf("Failed to publish post created event: %v", err)
	}
	g.notify(viewer, events.NoticeSuccess, "Post published")
	g.feed.Refresh()

	return post, nil
}

// AddReaction toggles the viewer's reaction on a post: a new reaction is
// inserted, the same reaction is removed, a different one replaces it.
func (g *Gateway) AddReaction(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID, reaction models.ReactionType) (models.ToggleAction, error) {
	if viewerID == nil {
		return 0, ErrUnauthenticated
	}
	viewer := *viewerID

	if reaction == "" {
		reaction = models.ReactionLike
	}
	if !reaction.Valid() {
		return 0, g.reject("add_reaction", viewer, models.ErrInvalidReaction)
	}

	action, err := g.likes.Toggle(ctx, postID, viewer, reaction)
	if err != nil {
		return 0, g.fail("add_reaction", viewer, "Could not add your reaction", err, map[string]interface{}{
			"post_id": postID,
		})
	}

	if err := g.publisher.PublishReactionToggled(events.ReactionToggledEvent{
		PostID:    postID,
		UserID:    viewer,
		Type:      string(reaction),
		Action:    action.String(),
		ToggledAt: g.now(),
	}); err != nil {
		log.Printf("Failed to publish reaction toggled event: %v", err)
	}
	g.feed.Refresh()

	return action, nil
}

// AddComment appends a comment to a post. Blank comments are rejected
// here as well as in clients.
func (g *Gateway) AddComment(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID, content string) (*models.Comment, error) {
	if viewerID == nil {
		return nil, ErrUnauthenticated
	}
	viewer := *viewerID

	if strings.TrimSpace(content) == "" {
		return nil, g.reject("add_comment", viewer, ErrEmptyComment)
	}
	if len([]rune(content)) > MaxCommentLength {
		return nil, g.reject("add_comment", viewer, ErrCommentTooLong)
	}

	now := g.now()
	comment := &models.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    viewer,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.comments.Create(ctx, comment); err != nil {
		return nil, g.fail("add_comment", viewer, "Could not add your comment", err, map[string]interface{}{
			"post_id": postID,
		})
	}

	if err := g.publisher.PublishCommentAdded(events.CommentAddedEvent{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}); err != nil {
		log.Printf("Failed to publish comment added event: %v", err)
	}
	g.feed.Refresh()

	return comment, nil
}

// DeletePost removes the post if the viewer wrote it and returns the
// number of rows deleted. Zero is not an error.
func (g *Gateway) DeletePost(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID) (int64, error) {
	if viewerID == nil {
		return 0, ErrUnauthenticated
	}
	viewer := *viewerID

	deleted, err := g.posts.DeleteOwned(ctx, postID, viewer)
	if err != nil {
		return 0, g.fail("delete_post", viewer, "Could not delete the post", err, map[string]interface{}{
			"post_id": postID,
		})
	}

	if deleted > 0 {
		if err := g.publisher.PublishPostDeleted(events.PostDeletedEvent{
			PostID:    postID,
			UserID:    viewer,
			DeletedAt: g.now(),
		}); err != nil {
			log.Printf("Failed to publish post deleted event: %v", err)
		}
		g.notify(viewer, events.NoticeSuccess, "Post deleted")
	}
	g.feed.Refresh()

	return deleted, nil
}

// UpdateProfile edits the viewer's own profile and reloads the member
// directory.
func (g *Gateway) UpdateProfile(ctx context.Context, viewerID *uuid.UUID, input ProfileInput) (*models.Profile, error) {
	if viewerID == nil {
		return nil, ErrUnauthenticated
	}
	viewer := *viewerID

	avatar, err := sniffImage(input.Avatar)
	if err != nil {
		return nil, g.fail("update_profile", viewer, "Could not update your profile", err, nil)
	}
	if err := validateImage(avatar); err != nil {
		return nil, g.reject("update_profile", viewer, err)
	}

	update := models.ProfileUpdate{
		FullName: input.FullName,
		Region:   input.Region,
		FarmType: input.FarmType,
	}
	if avatar != nil {
		// An avatar for a profile that does not exist would be orphaned.
		existing, err := g.profiles.GetByIDs(ctx, []uuid.UUID{viewer})
		if err != nil {
			return nil, g.fail("update_profile", viewer, "Could not update your profile", err, nil)
		}
		if len(existing) == 0 {
			return nil, g.fail("update_profile", viewer, "Could not update your profile", repository.ErrProfileNotFound, nil)
		}

		url, err := g.uploadImage(ctx, viewer, avatar)
		if err != nil {
			return nil, g.fail("update_profile", viewer, "Could not update your profile", err, nil)
		}
		update.AvatarURL = &url
	}

	profile, err := g.profiles.Update(ctx, viewer, update)
	if err != nil {
		return nil, g.fail("update_profile", viewer, "Could not update your profile", err, nil)
	}

	if err := g.feed.ReloadMembers(ctx); err != nil {
		log.Printf("Failed to reload members after profile update: %v", err)
	}
	g.feed.Refresh()
	g.notify(viewer, events.NoticeSuccess, "Profile updated")

	return profile, nil
}

func (g *Gateway) uploadImage(ctx context.Context, viewer uuid.UUID, image *ImageUpload) (string, error) {
	path := objectPath(viewer, image)
	if err := g.images.Upload(ctx, path, image.Body, image.ContentType); err != nil {
		return "", err
	}
	return g.images.PublicURL(path), nil
}

// objectPath names an upload <viewer>/<random>.<ext>. The name never
// derives from the file content.
func objectPath(viewer uuid.UUID, image *ImageUpload) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(image.Filename), "."))
	if ext == "" {
		ext = strings.TrimPrefix(image.ContentType, "image/")
	}
	return fmt.Sprintf("%s/%s.%s", viewer, uuid.NewString(), ext)
}

// sniffImage settles an upload's content type from its leading bytes, the
// same way for every transport. A sniffed image type wins over the
// declared one; a declared image/* type is kept only for formats the
// sniffer does not recognise.
func sniffImage(image *ImageUpload) (*ImageUpload, error) {
	if image == nil {
		return nil, nil
	}

	body := bufio.NewReaderSize(image.Body, sniffLen)
	head, err := body.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := image.ContentType
	sniffed := http.DetectContentType(head)
	if strings.HasPrefix(sniffed, "image/") || !strings.HasPrefix(contentType, "image/") {
		contentType = sniffed
	}

	return &ImageUpload{
		Filename:    image.Filename,
		ContentType: contentType,
		Size:        image.Size,
		Body:        body,
	}, nil
}

func validateImage(image *ImageUpload) error {
	if image == nil {
		return nil
	}
	if image.Size > MaxImageSize {
		return ErrImageTooLarge
	}
	if !strings.HasPrefix(image.ContentType, "image/") {
		return ErrImageType
	}
	return nil
}

// reject reports a validation failure to the viewer.
func (g *Gateway) reject(op string, viewer uuid.UUID, err error) error {
	logs.LogJSON("WARN", err.Error(), map[string]interface{}{
		"op":      op,
		"user_id": viewer,
	})
	g.notify(viewer, events.NoticeError, err.Error())
	return err
}

// fail logs a backend failure, notifies the viewer and wraps the error.
func (g *Gateway) fail(op string, viewer uuid.UUID, message string, err error, fields map[string]interface{}) error {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["op"] = op
	fields["user_id"] = viewer
	fields["error"] = err
	logs.LogJSON("ERROR", message, fields)

	g.notify(viewer, events.NoticeError, message)
	return &OperationError{Op: op, Message: message, Err: err}
}

func (g *Gateway) notify(viewer uuid.UUID, level, message string) {
	if err := g.publisher.Notify(viewer, level, message); err != nil {
		log.Printf("Failed to send notice to %s: %v", viewer, err)
	}
}
