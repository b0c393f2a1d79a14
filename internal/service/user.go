package service

import (
	"context"
	"strings"

	"devlink/internal/models"
	"devlink/internal/repository"
)

// UserService provides profile and follow-graph business logic.
type UserService struct {
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	projectRepo  repository.ProjectRepository
	notification *NotificationService
	activity     *ActivityService
}

// NewUserService returns a new UserService. notification and activity may be
// nil, which disables the corresponding fan-out.
func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository, projectRepo repository.ProjectRepository, notification *NotificationService, activity *ActivityService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		postRepo:     postRepo,
		projectRepo:  projectRepo,
		notification: notification,
		activity:     activity,
	}
}

// GetProfile returns a user together with profile counters.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, *models.UserStats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	followers, following, err := s.userRepo.CountFollows(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.postRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	projects, err := s.projectRepo.CountForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	likes, err := s.postRepo.LikesReceived(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return user, &models.UserStats{
		PostsCount:     posts,
		ProjectsCount:  projects,
		FollowersCount: followers,
		FollowingCount: following,
		LikesReceived:  likes,
	}, nil
}

// UpdateProfile edits the user's own profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, name, bio, avatar string, techStack []string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	user.Bio = bio
	user.Avatar = avatar
	if techStack != nil {
		user.TechStack = techStack
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search finds users by name and/or tech stack fragment.
func (s *UserService) Search(ctx context.Context, name, tech string) ([]*models.User, error) {
	name = strings.TrimSpace(name)
	tech = strings.TrimSpace(tech)
	if name == "" && tech == "" {
		return nil, models.NewValidationError("A search term is required")
	}
	return s.userRepo.Search(ctx, name, tech)
}

// ToggleFollow follows the target if not followed, unfollows otherwise.
// Returns whether the caller follows the target after the call. A fresh
// follow notifies the target and records activity; an unfollow does neither.
func (s *UserService) ToggleFollow(ctx context.Context, userID, targetID uint) (bool, error) {
	if userID == targetID {
		return false, models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	following, err := s.userRepo.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return false, err
	}

	if following {
		if err := s.userRepo.Unfollow(ctx, userID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.userRepo.Follow(ctx, userID, targetID); err != nil {
		return false, err
	}

	if s.notification != nil {
		s.notification.NotifyAsync(NotifyInput{
			RecipientID: targetID,
			SenderID:    userID,
			Type:        models.NotificationFollow,
			Text:        "started following you",
		})
	}
	if s.activity != nil {
		target := targetID
		s.activity.RecordAsync(RecordInput{
			UserID:       userID,
			Type:         models.ActivityFollow,
			TargetUserID: &target,
			Text:         "followed a user",
		})
	}

	return true, nil
}

// IsFollowing reports whether userID follows targetID.
func (s *UserService) IsFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.userRepo.IsFollowing(ctx, userID, targetID)
}

// Followers returns the users following userID.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.resolveUsers(ctx, userID, s.userRepo.FollowerIDs)
}

// Following returns the users userID follows.
func (s *UserService) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.resolveUsers(ctx, userID, s.userRepo.FollowingIDs)
}

func (s *UserService) resolveUsers(ctx context.Context, userID uint, idsFn func(context.Context, uint) ([]uint, error)) ([]*models.User, error) {
	ids, err := idsFn(ctx, userID)
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			// Dangling edges are skipped, not fatal.
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
