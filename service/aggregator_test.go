package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-service/model"
)

func TestLoadFeedNewestFirst(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		h.store.addPost(author, "post", base.Add(time.Duration(rng.Intn(10_000))*time.Minute))
	}

	posts, err := h.feed.LoadFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 25)

	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt), "post %d is newer than post %d", i, i-1)
	}
}

func TestLoadFeedPartitionsComments(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")
	commenter := h.store.addProfile("Kofi")

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	first := h.store.addPost(author, "first", base)
	second := h.store.addPost(author, "second", base.Add(time.Hour))

	h.store.addComment(first, commenter, "c3", base.Add(3*time.Minute))
	h.store.addComment(second, commenter, "d1", base.Add(1*time.Minute))
	h.store.addComment(first, commenter, "c1", base.Add(1*time.Minute))
	h.store.addComment(second, commenter, "d2", base.Add(2*time.Minute))
	h.store.addComment(first, commenter, "c2", base.Add(2*time.Minute))

	posts, err := h.feed.LoadFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	expected := map[uuid.UUID][]string{
		first:  {"c1", "c2", "c3"},
		second: {"d1", "d2"},
	}
	for _, p := range posts {
		var got []string
		for i, c := range p.Comments {
			assert.Equal(t, p.ID, c.PostID)
			if i > 0 {
				assert.False(t, c.CreatedAt.Before(p.Comments[i-1].CreatedAt))
			}
			require.NotNil(t, c.Profile)
			assert.Equal(t, "Kofi", *c.Profile.FullName)
			got = append(got, c.Content)
		}
		assert.Equal(t, expected[p.ID], got)
		assert.Equal(t, int32(len(p.Comments)), p.CommentCount)
	}
}

func TestLoadFeedAttachesProfiles(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")
	liker := h.store.addProfile("Kofi")
	ghost := uuid.New()

	now := time.Now()
	known := h.store.addPost(author, "known author", now)
	h.store.addPost(ghost, "missing profile", now.Add(-time.Minute))

	_, err := memLikes{h.store}.Toggle(context.Background(), known, liker, models.ReactionLove)
	require.NoError(t, err)

	posts, err := h.feed.LoadFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	require.NotNil(t, posts[0].Profile)
	assert.Equal(t, "Amina", *posts[0].Profile.FullName)
	require.Len(t, posts[0].Likes, 1)
	require.NotNil(t, posts[0].Likes[0].Profile)
	assert.Equal(t, "Kofi", *posts[0].Likes[0].Profile.FullName)
	assert.Equal(t, int32(1), posts[0].LikeCount)

	assert.Nil(t, posts[1].Profile)
	assert.NotNil(t, posts[1].Likes)
	assert.NotNil(t, posts[1].Comments)
	assert.Zero(t, posts[1].LikeCount)
}

func TestLoadFeedRecomputesCounters(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")
	id := h.store.addPost(author, "stale counters", time.Now())

	h.store.mu.Lock()
	h.store.posts[0].LikeCount = 42
	h.store.posts[0].CommentCount = 17
	h.store.mu.Unlock()

	h.store.addComment(id, author, "only one", time.Now())

	posts, err := h.feed.LoadFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int32(0), posts[0].LikeCount)
	assert.Equal(t, int32(1), posts[0].CommentCount)
}

func TestLoadFeedFailsAsAWhole(t *testing.T) {
	for _, op := range []string{"list_posts", "get_profiles", "list_likes", "list_comments"} {
		t.Run(op, func(t *testing.T) {
			h := newHarness()
			author := h.store.addProfile("Amina")
			h.store.addPost(author, "post", time.Now())
			h.store.failOn(op, errStoreDown)

			posts, err := h.feed.LoadFeed(context.Background())
			assert.ErrorIs(t, err, errStoreDown)
			assert.Nil(t, posts)
		})
	}
}

func TestReloadKeepsPreviousFeedOnError(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")
	h.store.addPost(author, "hello", time.Now())

	require.NoError(t, h.feed.Reload(context.Background()))
	before := h.feed.State()
	require.Len(t, before.Posts, 1)
	assert.NoError(t, before.Err)
	assert.False(t, before.Loading)

	h.store.failOn("list_comments", errStoreDown)
	err := h.feed.Reload(context.Background())
	assert.ErrorIs(t, err, errStoreDown)

	after := h.feed.State()
	assert.Equal(t, before.Posts, after.Posts)
	assert.Equal(t, before.LoadedAt, after.LoadedAt)
	assert.ErrorIs(t, after.Err, errStoreDown)
	assert.False(t, after.Loading)

	h.store.failOn("list_comments", nil)
	require.NoError(t, h.feed.Reload(context.Background()))
	assert.NoError(t, h.feed.State().Err)
}

func TestReloadDropsResultWhenCancelled(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")
	h.store.addPost(author, "hello", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.feed.Reload(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	state := h.feed.State()
	assert.Empty(t, state.Posts)
	assert.True(t, state.LoadedAt.IsZero())
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
}

func TestRefreshCoalesces(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")
	h.store.addPost(author, "hello", time.Now())

	h.feed.Refresh()
	h.feed.Refresh()
	h.feed.Refresh()

	ctx := context.Background()
	assert.True(t, h.feed.processPending(ctx))
	assert.False(t, h.feed.processPending(ctx))
	assert.Len(t, h.feed.State().Posts, 1)
}

func TestRunReloadsOnRefresh(t *testing.T) {
	h := newHarness()
	author := h.store.addProfile("Amina")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.feed.Run(ctx)
		close(done)
	}()

	h.store.addPost(author, "arrives later", time.Now())
	h.feed.Refresh()

	require.Eventually(t, func() bool {
		return len(h.feed.State().Posts) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestReloadMembers(t *testing.T) {
	h := newHarness()
	zara := h.store.addProfile("Zara")
	amina := h.store.addProfile("Amina")

	h.store.mu.Lock()
	p := h.store.profiles[zara]
	region := "Northern Highlands"
	p.Region = &region
	h.store.profiles[zara] = p
	h.store.mu.Unlock()

	require.NoError(t, h.feed.ReloadMembers(context.Background()))

	members := h.feed.Members()
	require.Len(t, members.Ordered, 2)
	assert.Equal(t, amina, members.Ordered[0].ID)
	assert.Equal(t, zara, members.Ordered[1].ID)
	assert.Contains(t, members.ByID, amina)

	found := h.feed.SearchMembers("highlands")
	require.Len(t, found, 1)
	assert.Equal(t, zara, found[0].ID)
	assert.Len(t, h.feed.SearchMembers(""), 2)

	h.store.failOn("list_profiles", errStoreDown)
	assert.ErrorIs(t, h.feed.ReloadMembers(context.Background()), errStoreDown)
	after := h.feed.Members()
	assert.Len(t, after.Ordered, 2)
	assert.ErrorIs(t, after.Err, errStoreDown)
}

type fakeSnapshots struct {
	posts    []models.Post
	loadedAt time.Time
	saved    int
	err      error
}

func (f *fakeSnapshots) Save(ctx context.Context, posts []models.Post, loadedAt time.Time) error {
	f.saved++
	f.posts = posts
	f.loadedAt = loadedAt
	return nil
}

func (f *fakeSnapshots) Load(ctx context.Context) ([]models.Post, time.Time, error) {
	if f.err != nil {
		return nil, time.Time{}, f.err
	}
	return f.posts, f.loadedAt, nil
}

func TestWarmFromSnapshot(t *testing.T) {
	store := newMemStore()
	posts, profiles, likes, comments := store.repos()

	cachedAt := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	snapshots := &fakeSnapshots{
		posts:    []models.Post{{ID: uuid.New(), Content: "cached", Likes: []models.Like{}, Comments: []models.Comment{}}},
		loadedAt: cachedAt,
	}
	feed := NewAggregator(posts, profiles, likes, comments, snapshots)

	require.NoError(t, feed.Warm(context.Background()))
	state := feed.State()
	require.Len(t, state.Posts, 1)
	assert.Equal(t, "cached", state.Posts[0].Content)
	assert.Equal(t, cachedAt, state.LoadedAt)

	author := store.addProfile("Amina")
	store.addPost(author, "fresh", time.Now())
	require.NoError(t, feed.Reload(context.Background()))
	assert.Equal(t, "fresh", feed.State().Posts[0].Content)
	assert.Equal(t, 1, snapshots.saved)

	// A warm after a real load must not roll the feed back.
	require.NoError(t, feed.Warm(context.Background()))
	assert.Equal(t, "fresh", feed.State().Posts[0].Content)
}

func TestWarmMiss(t *testing.T) {
	store := newMemStore()
	posts, profiles, likes, comments := store.repos()
	miss := errors.New("miss")
	feed := NewAggregator(posts, profiles, likes, comments, &fakeSnapshots{err: miss})

	assert.ErrorIs(t, feed.Warm(context.Background()), miss)
	assert.Empty(t, feed.State().Posts)
}
