package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"community-service/logs"
	"community-service/model"
	"community-service/repository"
)

// SnapshotStore persists the last good feed outside the process.
type SnapshotStore interface {
	Save(ctx context.Context, posts []models.Post, loadedAt time.Time) error
	Load(ctx context.Context) ([]models.Post, time.Time, error)
}

// State is one immutable view of the feed. Loading and Err are
// independent of whether Posts holds data: a failed reload keeps the
// previous Posts and sets Err.
type State struct {
	Posts    []models.Post
	Loading  bool
	Err      error
	LoadedAt time.Time
}

// Members is one immutable view of the member directory.
type Members struct {
	Ordered  []models.Profile
	ByID     map[uuid.UUID]models.Profile
	Err      error
	LoadedAt time.Time
}

// Aggregator builds the denormalized feed and owns the only copies of
// the feed and member snapshots. Snapshots are replaced, never mutated.
type Aggregator struct {
	posts     repository.PostRepository
	profiles  repository.ProfileRepository
	likes     repository.LikeRepository
	comments  repository.CommentRepository
	snapshots SnapshotStore

	state   atomic.Pointer[State]
	members atomic.Pointer[Members]

	loadMu    sync.Mutex
	membersMu sync.Mutex
	refresh   chan struct{}
}

func NewAggregator(
	posts repository.PostRepository,
	profiles repository.ProfileRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	snapshots SnapshotStore,
) *Aggregator {
	a := &Aggregator{
		posts:     posts,
		profiles:  profiles,
		likes:     likes,
		comments:  comments,
		snapshots: snapshots,
		refresh:   make(chan struct{}, 1),
	}
	a.state.Store(&State{Posts: []models.Post{}})
	a.members.Store(&Members{Ordered: []models.Profile{}, ByID: map[uuid.UUID]models.Profile{}})
	return a
}

// LoadFeed fetches posts newest first with their authors, likes and
// comments attached. Any failed fetch aborts the whole load.
func (a *Aggregator) LoadFeed(ctx context.Context) ([]models.Post, error) {
	posts, err := a.posts.ListRecent(ctx)
	if err != nil {
		return nil, err
	}

	authors, err := a.profiles.GetByIDs(ctx, postAuthorIDs(posts))
	if err != nil {
		return nil, err
	}

	ids := postIDs(posts)

	likes, err := a.likes.ListByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	likers, err := a.profiles.GetByIDs(ctx, likerIDs(likes))
	if err != nil {
		return nil, err
	}

	comments, err := a.comments.ListByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	commenters, err := a.profiles.GetByIDs(ctx, commenterIDs(comments))
	if err != nil {
		return nil, err
	}

	return denormalize(posts, mergeProfiles(authors, likers, commenters), likes, comments), nil
}

// LoadMembers returns every profile keyed by id, plus the same profiles
// in display-name order.
func (a *Aggregator) LoadMembers(ctx context.Context) (map[uuid.UUID]models.Profile, []models.Profile, error) {
	profiles, err := a.profiles.ListByName(ctx)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID, profiles, nil
}

// State returns the current feed snapshot.
func (a *Aggregator) State() State {
	return *a.state.Load()
}

// Members returns the current member directory snapshot.
func (a *Aggregator) Members() Members {
	return *a.members.Load()
}

// SearchMembers filters the member snapshot by name, region or farm type.
func (a *Aggregator) SearchMembers(term string) []models.Profile {
	members := a.Members().Ordered
	out := make([]models.Profile, 0, len(members))
	for _, p := range members {
		if p.Matches(term) {
			out = append(out, p)
		}
	}
	return out
}

// Reload runs LoadFeed and publishes the result. Concurrent calls run one
// at a time. If ctx ends before the load finishes, the result is dropped.
func (a *Aggregator) Reload(ctx context.Context) error {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	prev := a.State()
	loading := prev
	loading.Loading = true
	a.state.Store(&loading)

	posts, err := a.LoadFeed(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		prev.Loading = false
		a.state.Store(&prev)
		return ctxErr
	}
	if err != nil {
		logs.LogJSON("ERROR", "Could not load posts", map[string]interface{}{
			"op":    "load_feed",
			"error": err,
		})
		failed := prev
		failed.Loading = false
		failed.Err = err
		a.state.Store(&failed)
		return err
	}

	now := time.Now()
	a.state.Store(&State{Posts: posts, LoadedAt: now})

	if a.snapshots != nil {
		if err := a.snapshots.Save(ctx, posts, now); err != nil {
			log.Printf("Failed to cache feed snapshot: %v", err)
		}
	}
	return nil
}

// ReloadMembers refreshes the member directory, keeping the previous one
// on failure.
func (a *Aggregator) ReloadMembers(ctx context.Context) error {
	a.membersMu.Lock()
	defer a.membersMu.Unlock()

	byID, ordered, err := a.LoadMembers(ctx)
	if err != nil {
		logs.LogJSON("ERROR", "Could not load members", map[string]interface{}{
			"op":    "load_members",
			"error": err,
		})
		failed := a.Members()
		failed.Err = err
		a.members.Store(&failed)
		return err
	}

	a.members.Store(&Members{Ordered: ordered, ByID: byID, LoadedAt: time.Now()})
	return nil
}

// Warm seeds a never-loaded feed from the snapshot store.
func (a *Aggregator) Warm(ctx context.Context) error {
	if a.snapshots == nil {
		return nil
	}

	posts, loadedAt, err := a.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm feed: %w", err)
	}

	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	if !a.State().LoadedAt.IsZero() {
		return nil
	}
	a.state.Store(&State{Posts: posts, LoadedAt: loadedAt})
	return nil
}

// Refresh asks the Run loop for a reload. Signals raised before the loop
// picks them up collapse into one.
func (a *Aggregator) Refresh() {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

// Run serves refresh signals until ctx is done.
func (a *Aggregator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.refresh:
			if err := a.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Feed reload failed: %v", err)
			}
		}
	}
}
