// Package seed provides database seeding utilities for development and
// demo environments.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"devlink/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	SkipBcrypt  bool
}

var techPool = []string{
	"go", "rust", "python", "typescript", "javascript", "java", "kotlin",
	"swift", "elixir", "ruby", "c++", "postgres", "redis", "kafka",
	"docker", "kubernetes", "terraform", "react", "vue", "svelte",
	"grpc", "graphql", "aws", "gcp", "linux", "nginx",
}

var postTemplates = []string{
	"Just shipped a new release of my %s side project. The hardest part was %s.",
	"Hot take: %s is still the best tool for %s and nobody talks about it enough.",
	"Spent the whole weekend debugging a %s issue. Turned out to be %s all along.",
	"Wrote up my notes on migrating from %s to %s. Link in my profile.",
	"Anyone else benchmarking %s lately? Seeing surprising numbers around %s.",
	"TIL you can do %s with plain %s. No framework required.",
}

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := createUsers(db, opts.NumUsers, opts.SkipBcrypt)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	follows, err := createFollows(db, users)
	if err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("created %d follow edges", follows)

	likes, comments, err := createEngagement(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}
	log.Printf("created %d likes and %d comments", likes, comments)

	projects, err := createProjects(db, users)
	if err != nil {
		return fmt.Errorf("failed to create projects: %w", err)
	}
	log.Printf("created %d projects", projects)

	convos, msgs, err := createConversations(db, users)
	if err != nil {
		return fmt.Errorf("failed to create conversations: %w", err)
	}
	log.Printf("created %d conversations with %d messages", convos, msgs)

	log.Println("Seeding complete. All users have password \"password123\".")
	return nil
}

func clearData(db *gorm.DB) error {
	// Dependent tables first so foreign keys never dangle mid-wipe.
	tables := []any{
		&models.Notification{}, &models.Activity{}, &models.Message{},
		&models.Conversation{}, &models.Like{}, &models.Comment{},
		&models.Follow{}, &models.Project{}, &models.Post{}, &models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int, skipBcrypt bool) ([]models.User, error) {
	password := "password123"
	if !skipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		username := fmt.Sprintf("%s%s%d", first, last, gofakeit.Number(10, 999))
		users = append(users, models.User{
			Username:  username,
			Name:      first + " " + last,
			Email:     fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:  password,
			Bio:       gofakeit.Sentence(12),
			Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
			TechStack: pickTech(3 + rand.Intn(4)),
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		tags := pickTech(1 + rand.Intn(3))
		tpl := postTemplates[rand.Intn(len(postTemplates))]
		post := models.Post{
			UserID:    author.ID,
			Content:   fmt.Sprintf(tpl, tags[0], gofakeit.HackerPhrase()),
			TechTags:  tags,
			CreatedAt: spreadTime(90),
		}
		if rand.Intn(4) == 0 {
			post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID())
		}
		posts = append(posts, post)
	}
	if err := db.CreateInBatches(&posts, 100).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func createFollows(db *gorm.DB, users []models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	seen := make(map[string]bool)
	follows := make([]models.Follow, 0)
	// Roughly 8 outgoing edges per user, capped by population size.
	perUser := 8
	if perUser > len(users)-1 {
		perUser = len(users) - 1
	}
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			target := users[rand.Intn(len(users))]
			key := pairKey(u.ID, target.ID)
			if target.ID == u.ID || seen[key] {
				continue
			}
			seen[key] = true
			follows = append(follows, models.Follow{
				FollowerID: u.ID,
				FolloweeID: target.ID,
				CreatedAt:  spreadTime(60),
			})
		}
	}
	if len(follows) == 0 {
		return 0, nil
	}
	if err := db.CreateInBatches(&follows, 200).Error; err != nil {
		return 0, err
	}
	return len(follows), nil
}

func createEngagement(db *gorm.DB, users []models.User, posts []models.Post) (int, int, error) {
	if len(users) == 0 || len(posts) == 0 {
		return 0, 0, nil
	}
	seen := make(map[string]bool)
	likes := make([]models.Like, 0)
	comments := make([]models.Comment, 0)
	for _, post := range posts {
		for i := 0; i < rand.Intn(8); i++ {
			liker := users[rand.Intn(len(users))]
			key := pairKey(liker.ID, post.ID)
			if liker.ID == post.UserID || seen[key] {
				continue
			}
			seen[key] = true
			likes = append(likes, models.Like{
				UserID:    liker.ID,
				PostID:    post.ID,
				CreatedAt: post.CreatedAt.Add(time.Duration(rand.Intn(48)) * time.Hour),
			})
		}
		for i := 0; i < rand.Intn(4); i++ {
			commenter := users[rand.Intn(len(users))]
			comments = append(comments, models.Comment{
				PostID:    post.ID,
				UserID:    commenter.ID,
				Text:      gofakeit.Sentence(8),
				CreatedAt: post.CreatedAt.Add(time.Duration(rand.Intn(72)) * time.Hour),
			})
		}
	}
	if len(likes) > 0 {
		if err := db.CreateInBatches(&likes, 200).Error; err != nil {
			return 0, 0, err
		}
	}
	if len(comments) > 0 {
		if err := db.CreateInBatches(&comments, 200).Error; err != nil {
			return 0, 0, err
		}
	}
	return len(likes), len(comments), nil
}

func createProjects(db *gorm.DB, users []models.User) (int, error) {
	projects := make([]models.Project, 0)
	for _, u := range users {
		for i := 0; i < rand.Intn(3); i++ {
			name := gofakeit.AppName()
			projects = append(projects, models.Project{
				UserID:      u.ID,
				Title:       name,
				Description: gofakeit.Sentence(15),
				TechUsed:    pickTech(2 + rand.Intn(3)),
				RepoURL:     fmt.Sprintf("https://github.com/%s/%s", u.Username, name),
				DemoURL:     gofakeit.URL(),
			})
		}
	}
	if len(projects) == 0 {
		return 0, nil
	}
	if err := db.CreateInBatches(&projects, 100).Error; err != nil {
		return 0, err
	}
	return len(projects), nil
}

func createConversations(db *gorm.DB, users []models.User) (int, int, error) {
	if len(users) < 2 {
		return 0, 0, nil
	}
	seen := make(map[string]bool)
	convoCount := 0
	msgCount := 0
	target := len(users) * 2
	for attempts := 0; convoCount < target && attempts < target*4; attempts++ {
		a := users[rand.Intn(len(users))]
		b := users[rand.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		lo, hi := models.NormalizePair(a.ID, b.ID)
		key := pairKey(lo, hi)
		if seen[key] {
			continue
		}
		seen[key] = true

		convo := models.Conversation{UserAID: lo, UserBID: hi}
		if err := db.Create(&convo).Error; err != nil {
			return convoCount, msgCount, err
		}
		convoCount++

		n := 2 + rand.Intn(10)
		var lastID uint
		when := spreadTime(30)
		for i := 0; i < n; i++ {
			sender, receiver := a.ID, b.ID
			if rand.Intn(2) == 0 {
				sender, receiver = b.ID, a.ID
			}
			when = when.Add(time.Duration(1+rand.Intn(180)) * time.Minute)
			msg := models.Message{
				ConversationID: convo.ID,
				SenderID:       sender,
				ReceiverID:     receiver,
				Text:           gofakeit.HipsterSentence(7),
				Read:           i < n-1,
				CreatedAt:      when,
			}
			if err := db.Create(&msg).Error; err != nil {
				return convoCount, msgCount, err
			}
			lastID = msg.ID
			msgCount++
		}
		if lastID != 0 {
			if err := db.Model(&convo).Update("last_message_id", lastID).Error; err != nil {
				return convoCount, msgCount, err
			}
		}
	}
	return convoCount, msgCount, nil
}

// pickTech returns n distinct entries from the tech pool.
func pickTech(n int) []string {
	if n > len(techPool) {
		n = len(techPool)
	}
	perm := rand.Perm(len(techPool))
	out := make([]string, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, techPool[idx])
	}
	return out
}

// spreadTime returns a timestamp uniformly spread over the past maxDays days.
func spreadTime(maxDays int) time.Time {
	mins := rand.Intn(maxDays * 24 * 60)
	return time.Now().Add(-time.Duration(mins) * time.Minute)
}

func pairKey(a, b uint) string {
	return fmt.Sprintf("%d:%d", a, b)
}
