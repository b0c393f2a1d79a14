package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"devlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn    func(context.Context, uint, uint) ([]*models.Post, error)
	listFn           func(context.Context, int, int, uint) ([]*models.Post, error)
	listForRankingFn func(context.Context, int, uint) ([]*models.Post, error)
	countByUserFn    func(context.Context, uint) (int64, error)
	updateFn         func(context.Context, *models.Post) error
	deleteFn         func(context.Context, uint) error
	isLikedFn        func(context.Context, uint, uint) (bool, error)
	likeFn           func(context.Context, uint, uint) error
	unlikeFn         func(context.Context, uint, uint) error
	countLikesFn     func(context.Context, uint) (int64, error)
	likesReceivedFn  func(context.Context, uint) (int64, error)
	createCommentFn  func(context.Context, *models.Comment) error
	getCommentsFn    func(context.Context, uint) ([]*models.Comment, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, currentUserID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, currentUserID)
}
func (s *postRepoStub) ListForRanking(ctx context.Context, limit int, currentUserID uint) ([]*models.Post, error) {
	return s.listForRankingFn(ctx, limit, currentUserID)
}
func (s *postRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.countLikesFn(ctx, postID)
}
func (s *postRepoStub) LikesReceived(ctx context.Context, userID uint) (int64, error) {
	return s.likesReceivedFn(ctx, userID)
}
func (s *postRepoStub) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.createCommentFn(ctx, comment)
}
func (s *postRepoStub) GetComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.getCommentsFn(ctx, postID)
}

type userRepoStub struct {
	createFn       func(context.Context, *models.User) error
	getByIDFn      func(context.Context, uint) (*models.User, error)
	getByEmailFn   func(context.Context, string) (*models.User, error)
	updateFn       func(context.Context, *models.User) error
	searchFn       func(context.Context, string, string) ([]*models.User, error)
	followFn       func(context.Context, uint, uint) error
	unfollowFn     func(context.Context, uint, uint) error
	isFollowingFn  func(context.Context, uint, uint) (bool, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
	followerIDsFn  func(context.Context, uint) ([]uint, error)
	countFollowsFn func(context.Context, uint) (int64, int64, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, name, tech string) ([]*models.User, error) {
	return s.searchFn(ctx, name, tech)
}
func (s *userRepoStub) Follow(ctx context.Context, followerID, followeeID uint) error {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *userRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *userRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *userRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *userRepoStub) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followerIDsFn(ctx, userID)
}
func (s *userRepoStub) CountFollows(ctx context.Context, userID uint) (int64, int64, error) {
	return s.countFollowsFn(ctx, userID)
}

func feedFixture(posts []*models.Post, viewer *models.User, following []uint) *FeedService {
	postRepo := &postRepoStub{
		listForRankingFn: func(context.Context, int, uint) ([]*models.Post, error) {
			return posts, nil
		},
	}
	userRepo := &userRepoStub{
		getByIDFn: func(context.Context, uint) (*models.User, error) {
			return viewer, nil
		},
		followingIDsFn: func(context.Context, uint) ([]uint, error) {
			return following, nil
		},
	}
	return NewFeedService(postRepo, userRepo, 500)
}

func TestGetFeed_ScoreFormula(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	author := models.User{ID: 2, Username: "ada", Name: "Ada"}
	posts := []*models.Post{
		{
			ID:        1,
			UserID:    2,
			User:      author,
			Content:   "hello",
			CreatedAt: now.Add(-1 * time.Hour),
		},
	}
	viewer := &models.User{ID: 1}

	svc := feedFixture(posts, viewer, []uint{2})
	svc.now = func() time.Time { return now }

	page, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// follow 5 + recency (100-1)*0.1 = 9.9
	assert.InDelta(t, 14.9, page.Items[0].Score, 1e-9)
	assert.Equal(t, "ada", page.Items[0].Author.Username)

	// Same corpus and clock, same result.
	again, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, page, again)
}

func TestGetFeed_EngagementAndInterestTerms(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []*models.Post{
		{
			ID:            1,
			UserID:        2,
			User:          models.User{ID: 2, Name: "Ada"},
			TechTags:      []string{"go", "redis", "cobol"},
			LikesCount:    3,
			CommentsCount: 2,
			CreatedAt:     now.Add(-10 * time.Hour),
		},
	}
	viewer := &models.User{ID: 1, TechStack: []string{"go", "redis", "postgres"}}

	svc := feedFixture(posts, viewer, nil)
	svc.now = func() time.Time { return now }

	page, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// likes 3*2 + comments 2*3 + interest 2*4 + recency (100-10)*0.1 = 29.0
	assert.InDelta(t, 29.0, page.Items[0].Score, 1e-9)
}

func TestGetFeed_RecencyClamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []*models.Post{
		// Just posted: age floored at 0.1h.
		{ID: 1, UserID: 2, User: models.User{ID: 2}, CreatedAt: now},
		// Ancient: recency term bottoms out at zero.
		{ID: 2, UserID: 2, User: models.User{ID: 2}, CreatedAt: now.Add(-2000 * time.Hour)},
	}
	svc := feedFixture(posts, &models.User{ID: 1}, nil)
	svc.now = func() time.Time { return now }

	page, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.InDelta(t, 9.99, page.Items[0].Score, 1e-9)
	assert.InDelta(t, 0.0, page.Items[1].Score, 1e-9)
}

func TestGetFeed_TieBreakNewestFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-200 * time.Hour)
	older := now.Add(-300 * time.Hour)
	// Both past the recency horizon and otherwise identical: equal scores.
	posts := []*models.Post{
		{ID: 1, UserID: 2, User: models.User{ID: 2}, CreatedAt: older},
		{ID: 2, UserID: 2, User: models.User{ID: 2}, CreatedAt: old},
	}
	svc := feedFixture(posts, &models.User{ID: 1}, nil)
	svc.now = func() time.Time { return now }

	page, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, uint(2), page.Items[0].ID)
	assert.Equal(t, uint(1), page.Items[1].ID)
}

func TestGetFeed_PlaceholderAuthor(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []*models.Post{
		// Author record gone; zero-value User preloaded.
		{ID: 1, UserID: 99, CreatedAt: now.Add(-1 * time.Hour)},
	}
	svc := feedFixture(posts, &models.User{ID: 1}, []uint{99})
	svc.now = func() time.Time { return now }

	page, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.Equal(t, "Unknown User", item.Author.Name)
	assert.Empty(t, item.Author.Avatar)
	// The follow edge points at a dangling author; no follow boost applies.
	assert.InDelta(t, 9.9, item.Score, 1e-9)
}

func TestGetFeed_Pagination(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]*models.Post, 0, 15)
	for i := 1; i <= 15; i++ {
		posts = append(posts, &models.Post{
			ID:        uint(i),
			UserID:    2,
			User:      models.User{ID: 2},
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	svc := feedFixture(posts, &models.User{ID: 1}, nil)
	svc.now = func() time.Time { return now }

	first, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)

	second, err := svc.GetFeed(context.Background(), 1, 2, 10)
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)

	third, err := svc.GetFeed(context.Background(), 1, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, third.Items)
	// Past-the-end pages keep the array shape in the JSON response.
	assert.NotNil(t, third.Items)

	seen := make(map[uint]bool)
	for _, item := range append(first.Items, second.Items...) {
		require.False(t, seen[item.ID], fmt.Sprintf("post %d paged twice", item.ID))
		seen[item.ID] = true
	}
	assert.Len(t, seen, 15)
}

func TestGetFeed_ClampsPageAndLimit(t *testing.T) {
	svc := feedFixture(nil, &models.User{ID: 1}, nil)

	page, err := svc.GetFeed(context.Background(), 1, 0, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)

	page, err = svc.GetFeed(context.Background(), 1, 1, 5000)
	require.NoError(t, err)
	assert.Equal(t, 50, page.Limit)
}

func TestGetFeed_EmptyFollowingStillRanks(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []*models.Post{
		{ID: 1, UserID: 2, User: models.User{ID: 2}, LikesCount: 1, CreatedAt: now.Add(-200 * time.Hour)},
		{ID: 2, UserID: 3, User: models.User{ID: 3}, CreatedAt: now.Add(-200 * time.Hour)},
	}
	svc := feedFixture(posts, &models.User{ID: 1}, nil)
	svc.now = func() time.Time { return now }

	page, err := svc.GetFeed(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, uint(1), page.Items[0].ID)
}
