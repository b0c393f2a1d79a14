package service

import (
	"context"
	"testing"
	"time"

	"devlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func followFixture(following bool) (*userRepoStub, *struct {
	followed, unfollowed bool
}) {
	state := &struct {
		followed, unfollowed bool
	}{}
	repo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		isFollowingFn: func(context.Context, uint, uint) (bool, error) {
			return following, nil
		},
		followFn: func(context.Context, uint, uint) error {
			state.followed = true
			return nil
		},
		unfollowFn: func(context.Context, uint, uint) error {
			state.unfollowed = true
			return nil
		},
	}
	return repo, state
}

func TestToggleFollow_SelfRejected(t *testing.T) {
	repo, _ := followFixture(false)
	svc := NewUserService(repo, &postRepoStub{}, &projectRepoStub{}, nil, nil)

	_, err := svc.ToggleFollow(context.Background(), 1, 1)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrCodeValidation, appErr.Code)
}

func TestToggleFollow_FollowsWhenNotFollowing(t *testing.T) {
	repo, state := followFixture(false)
	svc := NewUserService(repo, &postRepoStub{}, &projectRepoStub{}, nil, nil)

	following, err := svc.ToggleFollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, following)
	assert.True(t, state.followed)
	assert.False(t, state.unfollowed)
}

func TestToggleFollow_UnfollowsWhenFollowing(t *testing.T) {
	repo, state := followFixture(true)
	svc := NewUserService(repo, &postRepoStub{}, &projectRepoStub{}, nil, nil)

	following, err := svc.ToggleFollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, following)
	assert.True(t, state.unfollowed)
	assert.False(t, state.followed)
}

func TestToggleFollow_UnknownTarget(t *testing.T) {
	svc := NewUserService(knownUsers(1), &postRepoStub{}, &projectRepoStub{}, nil, nil)

	_, err := svc.ToggleFollow(context.Background(), 1, 42)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
}

func TestToggleFollow_FreshFollowNotifiesTarget(t *testing.T) {
	repo, _ := followFixture(false)

	notified := make(chan *models.Notification, 1)
	notificationRepo := &notificationRepoStub{
		hasRecentDuplicateFn: func(context.Context, uint, uint, models.NotificationType, *uint, time.Time) (bool, error) {
			return false, nil
		},
		createFn: func(_ context.Context, n *models.Notification) error {
			notified <- n
			return nil
		},
	}
	notification := NewNotificationService(notificationRepo, repo, nil)
	svc := NewUserService(repo, &postRepoStub{}, &projectRepoStub{}, notification, nil)

	_, err := svc.ToggleFollow(context.Background(), 1, 2)
	require.NoError(t, err)

	select {
	case n := <-notified:
		assert.Equal(t, uint(2), n.RecipientID)
		assert.Equal(t, uint(1), n.SenderID)
		assert.Equal(t, models.NotificationFollow, n.Type)
		assert.Nil(t, n.PostID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a follow notification")
	}
}

func TestGetProfile_AggregatesStats(t *testing.T) {
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Ada"}, nil
		},
		countFollowsFn: func(context.Context, uint) (int64, int64, error) {
			return 4, 7, nil
		},
	}
	postRepo := &postRepoStub{
		countByUserFn:   func(context.Context, uint) (int64, error) { return 9, nil },
		likesReceivedFn: func(context.Context, uint) (int64, error) { return 31, nil },
	}
	projectRepo := &projectRepoStub{
		countForUserFn: func(context.Context, uint) (int64, error) { return 2, nil },
	}
	svc := NewUserService(userRepo, postRepo, projectRepo, nil, nil)

	user, stats, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, &models.UserStats{
		PostsCount:     9,
		ProjectsCount:  2,
		FollowersCount: 4,
		FollowingCount: 7,
		LikesReceived:  31,
	}, stats)
}

func TestSearch_RequiresTerm(t *testing.T) {
	svc := NewUserService(&userRepoStub{}, &postRepoStub{}, &projectRepoStub{}, nil, nil)

	_, err := svc.Search(context.Background(), "  ", "")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrCodeValidation, appErr.Code)
}

func TestFollowers_SkipsDanglingEdges(t *testing.T) {
	repo := &userRepoStub{
		followerIDsFn: func(context.Context, uint) ([]uint, error) {
			return []uint{2, 3, 4}, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if id == 3 {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id}, nil
		},
	}
	svc := NewUserService(repo, &postRepoStub{}, &projectRepoStub{}, nil, nil)

	users, err := svc.Followers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, uint(2), users[0].ID)
	assert.Equal(t, uint(4), users[1].ID)
}
