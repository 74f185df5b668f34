package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"community-service/events"
	"community-service/model"
	"community-service/repository"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory relational store with the same ordering and
// uniqueness rules as the Postgres schema.
type memStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]models.Profile
	posts    []models.Post
	likes    []models.Like
	comments []models.Comment

	writes int
	fail   map[string]error
	trace  *[]string
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[uuid.UUID]models.Profile{},
		fail:     map[string]error{},
	}
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *memStore) addProfile(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	n := name
	s.profiles[id] = models.Profile{ID: id, FullName: &n, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	return id
}

func (s *memStore) addPost(author uuid.UUID, content string, at time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.posts = append(s.posts, models.Post{ID: id, UserID: author, Content: content, CreatedAt: at, UpdatedAt: at})
	return id
}

func (s *memStore) addComment(postID, author uuid.UUID, content string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments = append(s.comments, models.Comment{
		ID: uuid.New(), PostID: postID, UserID: author, Content: content, CreatedAt: at, UpdatedAt: at,
	})
}

func (s *memStore) likesFor(postID, userID uuid.UUID) []models.Like {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Like
	for _, l := range s.likes {
		if l.PostID == postID && l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memStore) record(step string) {
	if s.trace != nil {
		*s.trace = append(*s.trace, step)
	}
}

func (s *memStore) repos() (repository.PostRepository, repository.ProfileRepository, repository.LikeRepository, repository.CommentRepository) {
	return memPosts{s}, memProfiles{s}, memLikes{s}, memComments{s}
}

type memPosts struct{ s *memStore }

func (r memPosts) ListRecent(ctx context.Context) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["list_posts"]; err != nil {
		return nil, err
	}
	out := append([]models.Post(nil), r.s.posts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r memPosts) Create(ctx context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.record("insert_post")
	if err := r.s.fail["create_post"]; err != nil {
		return err
	}
	r.s.writes++
	r.s.posts = append(r.s.posts, *post)
	return nil
}

func (r memPosts) DeleteOwned(ctx context.Context, postID, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["delete_post"]; err != nil {
		return 0, err
	}
	r.s.writes++

	var deleted int64
	kept := r.s.posts[:0]
	for _, p := range r.s.posts {
		if p.ID == postID && p.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	r.s.posts = kept

	if deleted > 0 {
		likes := r.s.likes[:0]
		for _, l := range r.s.likes {
			if l.PostID != postID {
				likes = append(likes, l)
			}
		}
		r.s.likes = likes

		comments := r.s.comments[:0]
		for _, c := range r.s.comments {
			if c.PostID != postID {
				comments = append(comments, c)
			}
		}
		r.s.comments = comments
	}
	return deleted, nil
}

type memProfiles struct{ s *memStore }

func (r memProfiles) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["get_profiles"]; err != nil {
		return nil, err
	}
	out := []models.Profile{}
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProfiles) ListByName(ctx context.Context) ([]models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["list_profiles"]; err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].FullName, out[j].FullName
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return out, nil
}

func (r memProfiles) Update(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["update_profile"]; err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	r.s.writes++
	p.FullName, p.Region, p.FarmType = update.FullName, update.Region, update.FarmType
	if update.AvatarURL != nil {
		p.AvatarURL = update.AvatarURL
	}
	p.UpdatedAt = time.Now()
	r.s.profiles[id] = p
	return &p, nil
}

type memLikes struct{ s *memStore }

func (r memLikes) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]models.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["list_likes"]; err != nil {
		return nil, err
	}
	wanted := make(map[uuid.UUID]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	out := []models.Like{}
	for _, l := range r.s.likes {
		if wanted[l.PostID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r memLikes) Toggle(ctx context.Context, postID, userID uuid.UUID, reaction models.ReactionType) (models.ToggleAction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["toggle"]; err != nil {
		return 0, err
	}

	idx := -1
	for i, l := range r.s.likes {
		if l.PostID == postID && l.UserID == userID {
			idx = i
			break
		}
	}

	var existing *models.Like
	if idx >= 0 {
		existing = &r.s.likes[idx]
	}

	action := models.DecideToggle(existing, reaction)
	r.s.writes++
	switch action {
	case models.ToggleInsert:
		r.s.likes = append(r.s.likes, models.Like{
			ID: uuid.New(), PostID: postID, UserID: userID, Type: reaction, CreatedAt: time.Now(),
		})
	case models.ToggleDelete:
		r.s.likes = append(r.s.likes[:idx], r.s.likes[idx+1:]...)
	case models.ToggleUpdate:
		r.s.likes[idx].Type = reaction
	}
	return action, nil
}

type memComments struct{ s *memStore }

func (r memComments) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["list_comments"]; err != nil {
		return nil, err
	}
	wanted := make(map[uuid.UUID]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	out := []models.Comment{}
	for _, c := range r.s.comments {
		if wanted[c.PostID] {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memComments) Create(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail["create_comment"]; err != nil {
		return err
	}
	r.s.writes++
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

// fakeImages records uploads in memory.
type fakeImages struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
	trace   *[]string
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeImages) Upload(ctx context.Context, path string, body io.Reader, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.trace != nil {
		*f.trace = append(*f.trace, "upload")
	}
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[path] = data
	f.types[path] = contentType
	return nil
}

func (f *fakeImages) PublicURL(path string) string {
	return "https://cdn.test/post_images/" + path
}

func (f *fakeImages) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// recordingPublisher captures events and notices.
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	notices  []events.Notice
}

func (p *recordingPublisher) add(subject string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) PublishPostCreated(events.PostCreatedEvent) error {
	return p.add(events.PostCreated)
}

func (p *recordingPublisher) PublishPostDeleted(events.PostDeletedEvent) error {
	return p.add(events.PostDeleted)
}

func (p *recordingPublisher) PublishReactionToggled(events.ReactionToggledEvent) error {
	return p.add(events.ReactionToggled)
}

func (p *recordingPublisher) PublishCommentAdded(events.CommentAddedEvent) error {
	return p.add(events.CommentAdded)
}

func (p *recordingPublisher) Notify(userID uuid.UUID, level, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, events.Notice{UserID: userID, Level: level, Message: message})
	return nil
}

func (p *recordingPublisher) lastNotice() events.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notices) == 0 {
		return events.Notice{}
	}
	return p.notices[len(p.notices)-1]
}

type harness struct {
	store     *memStore
	images    *fakeImages
	publisher *recordingPublisher
	feed      *Aggregator
	gateway   *Gateway
}

func newHarness() *harness {
	store := newMemStore()
	posts, profiles, likes, comments := store.repos()

	feed := NewAggregator(posts, profiles, likes, comments, nil)
	images := newFakeImages()
	publisher := &recordingPublisher{}
	gateway := NewGateway(posts, likes, comments, profiles, images, publisher, feed)

	clock := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	gateway.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return &harness{store: store, images: images, publisher: publisher, feed: feed, gateway: gateway}
}

func pngUpload(size int) *ImageUpload {
	return &ImageUpload{
		Filename:    "field.PNG",
		ContentType: "image/png",
		Size:        int64(size),
		Body:        bytes.NewReader(make([]byte, size)),
	}
}

// processPending performs one reload if a refresh is pending.
func (a *Aggregator) processPending(ctx context.Context) bool {
	select {
	case <-a.refresh:
		_ = a.Reload(ctx)
		return true
	default:
		return false
	}
}
