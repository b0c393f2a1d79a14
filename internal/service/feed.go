// Package service contains the business logic layered over the repositories.
package service

import (
	"context"
	"sort"
	"time"

	"devlink/internal/models"
	"devlink/internal/repository"
)

// Ranking weights. A followed author outweighs raw engagement, and recency is
// a small tiebreaker that decays over the first ~100 hours.
const (
	followWeight   = 5.0
	likeWeight     = 2.0
	commentWeight  = 3.0
	interestWeight = 4.0
	recencyWeight  = 0.1

	defaultFeedLimit = 10
	maxFeedLimit     = 50
)

// FeedItem is a ranked post as it appears in a user's feed. Author is always
// populated; posts whose author no longer resolves carry a placeholder instead
// of being dropped.
type FeedItem struct {
	ID            uint               `json:"id"`
	Author        models.UserSummary `json:"author"`
	Content       string             `json:"content"`
	ImageURL      string             `json:"image_url,omitempty"`
	TechTags      []string           `json:"tech_tags"`
	LikesCount    int                `json:"likes_count"`
	CommentsCount int                `json:"comments_count"`
	Liked         bool               `json:"liked"`
	Score         float64            `json:"score"`
	CreatedAt     time.Time          `json:"created_at"`
}

// FeedPage is one page of the ranked feed.
type FeedPage struct {
	Items []FeedItem `json:"items"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// FeedService ranks the post corpus for a viewer.
type FeedService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	corpusSize int
	now        func() time.Time
}

// NewFeedService returns a new FeedService. corpusSize bounds how many recent
// posts are loaded for ranking.
func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository, corpusSize int) *FeedService {
	if corpusSize <= 0 {
		corpusSize = 500
	}
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		corpusSize: corpusSize,
		now:        time.Now,
	}
}

// GetFeed returns one page of the viewer's ranked feed. Page and limit are
// clamped; results are deterministic for a fixed corpus and clock.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint, page, limit int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.userRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	following := make(map[uint]bool, len(followingIDs))
	for _, id := range followingIDs {
		following[id] = true
	}

	posts, err := s.postRepo.ListForRanking(ctx, s.corpusSize, viewerID)
	if err != nil {
		return nil, err
	}

	interests := tagSet(viewer.TechStack)
	now := s.now()

	items := make([]FeedItem, 0, len(posts))
	for _, post := range posts {
		item := FeedItem{
			ID:            post.ID,
			Content:       post.Content,
			ImageURL:      post.ImageURL,
			TechTags:      post.TechTags,
			LikesCount:    post.LikesCount,
			CommentsCount: post.CommentsCount,
			Liked:         post.Liked,
			CreatedAt:     post.CreatedAt,
		}
		if post.User.ID != 0 {
			item.Author = post.User.Summary()
		} else {
			item.Author = models.PlaceholderAuthor()
		}
		item.Score = scorePost(post, following[post.User.ID], interests, now)
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	skip := (page - 1) * limit
	if skip >= len(items) {
		// Past-the-end pages still serialize as an empty array, not null.
		items = []FeedItem{}
	} else {
		end := skip + limit
		if end > len(items) {
			end = len(items)
		}
		items = items[skip:end]
	}

	return &FeedPage{Items: items, Page: page, Limit: limit}, nil
}

// scorePost computes the ranking score for a single post.
func scorePost(post *models.Post, followsAuthor bool, viewerInterests map[string]bool, now time.Time) float64 {
	score := float64(post.LikesCount)*likeWeight + float64(post.CommentsCount)*commentWeight

	if followsAuthor {
		score += followWeight
	}

	score += float64(interestMatch(post.TechTags, viewerInterests)) * interestWeight

	hours := now.Sub(post.CreatedAt).Hours()
	if hours < 0.1 {
		hours = 0.1
	}
	if hours > 100 {
		hours = 100
	}
	score += (100 - hours) * recencyWeight

	return score
}

// interestMatch counts the tags shared between a post and the viewer's stack.
func interestMatch(tags []string, interests map[string]bool) int {
	matches := 0
	for _, tag := range tags {
		if interests[tag] {
			matches++
		}
	}
	return matches
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return set
}
