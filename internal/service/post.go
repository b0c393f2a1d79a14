package service

import (
	"context"
	"fmt"
	"strings"

	"devlink/internal/models"
	"devlink/internal/repository"
)

const maxPostLength = 8192

// PostService provides post, like, and comment business logic. Likes and
// comments fan out to the notification and activity services asynchronously.
type PostService struct {
	postRepo     repository.PostRepository
	userRepo     repository.UserRepository
	notification *NotificationService
	activity     *ActivityService
}

// NewPostService returns a new PostService. notification and activity may be
// nil, which disables the corresponding fan-out.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, notification *NotificationService, activity *ActivityService) *PostService {
	return &PostService{
		postRepo:     postRepo,
		userRepo:     userRepo,
		notification: notification,
		activity:     activity,
	}
}

// Create persists a new post and records the activity.
func (s *PostService) Create(ctx context.Context, userID uint, content, imageURL string, techTags []string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Post content is required")
	}
	if len(content) > maxPostLength {
		return nil, models.NewValidationError("Post content is too long")
	}

	post := &models.Post{
		UserID:   userID,
		Content:  content,
		ImageURL: imageURL,
		TechTags: techTags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.activity != nil {
		postID := post.ID
		s.activity.RecordAsync(RecordInput{
			UserID: userID,
			Type:   models.ActivityPost,
			PostID: &postID,
			Text:   "created a post",
		})
	}

	return s.postRepo.GetByID(ctx, post.ID, userID)
}

// GetByID returns a single post with engagement counts for the viewer.
func (s *PostService) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

// GetByUserID returns a user's posts, newest first.
func (s *PostService) GetByUserID(ctx context.Context, userID, viewerID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByUserID(ctx, userID, viewerID)
}

// List returns a chronological page of posts.
func (s *PostService) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.List(ctx, limit, offset, viewerID)
}

// Update edits a post's content and tags. Only the author may edit.
func (s *PostService) Update(ctx context.Context, postID, userID uint, content string, techTags []string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Post content is required")
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	post.Content = content
	post.TechTags = techTags
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// Delete removes a post. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike likes the post if the user has not liked it, unlikes otherwise.
// Returns whether the post is liked after the call plus the new like count.
// A fresh like notifies the author and records activity; an unlike does
// neither.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (bool, int64, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return false, 0, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, 0, err
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return false, 0, err
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return false, 0, err
		}
		s.fanOutLike(userID, post)
	}

	count, err := s.postRepo.CountLikes(ctx, postID)
	if err != nil {
		return !liked, 0, err
	}
	return !liked, count, nil
}

func (s *PostService) fanOutLike(userID uint, post *models.Post) {
	postID := post.ID
	if s.notification != nil {
		s.notification.NotifyAsync(NotifyInput{
			RecipientID: post.UserID,
			SenderID:    userID,
			Type:        models.NotificationLike,
			PostID:      &postID,
			Text:        "liked your post",
		})
	}
	if s.activity != nil {
		s.activity.RecordAsync(RecordInput{
			UserID: userID,
			Type:   models.ActivityLike,
			PostID: &postID,
			Text:   "liked a post",
		})
	}
}

// AddComment appends a comment to a post, notifying the author.
func (s *PostService) AddComment(ctx context.Context, postID, userID uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
	}
	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.notification != nil {
		s.notification.NotifyAsync(NotifyInput{
			RecipientID: post.UserID,
			SenderID:    userID,
			Type:        models.NotificationComment,
			PostID:      &postID,
			Text:        fmt.Sprintf("commented: %s", truncate(text, 80)),
		})
	}
	if s.activity != nil {
		s.activity.RecordAsync(RecordInput{
			UserID: userID,
			Type:   models.ActivityComment,
			PostID: &postID,
			Text:   "commented on a post",
		})
	}

	return comment, nil
}

// GetComments returns a post's comments in ascending order.
func (s *PostService) GetComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.postRepo.GetComments(ctx, postID)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
