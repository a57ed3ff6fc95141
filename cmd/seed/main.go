// Package main provides a tool to seed a Circle data directory with demo
// users, friendships, lists and posts.
//
// It goes through the service layer, so everything it writes obeys the same
// rules as the API. Stop the server first: the feed store and search index
// are single-process.
//
// Usage:
//
//	DATA_PATH=~/Circle/data go run ./cmd/seed
//	DATA_PATH=~/Circle/data go run ./cmd/seed --users 12 --posts 5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/circleapp/circle-server/internal/config"
	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/search"
	"github.com/circleapp/circle-server/internal/service"
	"github.com/circleapp/circle-server/internal/sse"
	"github.com/circleapp/circle-server/internal/store/badger"
	"github.com/circleapp/circle-server/internal/store/sqlite"
)

const seedPassword = "password123"

var (
	userCount = flag.Int("users", 8, "Number of demo users to create")
	postCount = flag.Int("posts", 3, "Posts per user")
)

var sampleContent = []string{
	"Coffee on the balcony before anyone else woke up.",
	"Finally finished the puzzle we started in March.",
	"Long walk by the river, saw a heron.",
	"Tried a new recipe and it actually worked.",
	"Caught up with an old friend over lunch.",
	"Rain all day, perfect excuse to read.",
	"The garden tomatoes are finally red.",
	"First swim of the year, freezing and worth it.",
}

type services struct {
	users   *service.UserService
	friends *service.FriendService
	labels  *service.LabelService
	posts   *service.PostService
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Circle/data")
	}
	data := config.DataConfig{Path: dataPath}

	fmt.Printf("Seeding data directory: %s\n", dataPath)

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(data.DatabasePath(), logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	feeds, err := badger.Open(badger.Options{Path: data.FeedPath(), Logger: logger})
	if err != nil {
		log.Fatalf("Failed to open feed store: %v", err)
	}
	defer feeds.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: data.SearchPath(), Logger: logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	// Nobody listens for events offline; the buffered manager absorbs them.
	events := sse.NewManager(logger)
	searchService := service.NewSearchService(index, st, logger)
	friends := service.NewFriendService(st, events, logger)
	labels := service.NewLabelService(st, friends, events, logger)
	svc := services{
		users:   service.NewUserService(st, feeds, labels, searchService, logger),
		friends: friends,
		labels:  labels,
		posts:   service.NewPostService(st, labels, searchService, logger),
	}

	ctx := context.Background()

	users := createUsers(ctx, svc, *userCount)
	if len(users) < 2 {
		log.Fatal("Need at least two users to build friendships.")
	}

	friendships := befriendNeighbors(ctx, svc, users)
	fmt.Printf("Created %d friendships\n", friendships)

	lists := createCloseFriendsLists(ctx, svc, users)
	fmt.Printf("Created %d lists\n", lists)

	posts := createPosts(ctx, svc, users, *postCount)
	fmt.Printf("Created %d posts\n", posts)

	count, _ := searchService.DocumentCount()
	fmt.Printf("\nSeeding complete! %d posts indexed. Log in as any seed user with password %q.\n", count, seedPassword)
}

func createUsers(ctx context.Context, svc services, n int) []*domain.User {
	users := make([]*domain.User, 0, n)
	for i := range n {
		username := fmt.Sprintf("seed-user-%02d", i+1)

		user, err := svc.users.CreateUser(ctx, "", service.RegisterRequest{
			Username: username,
			Password: seedPassword,
		})
		if err != nil {
			// Re-running the seeder reuses earlier users.
			existing, lookupErr := svc.users.GetUserByUsername(ctx, username)
			if lookupErr != nil {
				log.Printf("Failed to create %s: %v", username, err)
				continue
			}
			user = existing
		} else {
			fmt.Printf("  Created user: %s (%s)\n", user.Username, user.ID)
		}
		users = append(users, user)
	}
	return users
}

// befriendNeighbors links each user with the next two around a ring.
func befriendNeighbors(ctx context.Context, svc services, users []*domain.User) int {
	created := 0
	for i, from := range users {
		for step := 1; step <= 2; step++ {
			to := users[(i+step)%len(users)]
			if from.ID == to.ID {
				continue
			}
			if _, err := svc.friends.SendRequest(ctx, from, to); err != nil {
				continue
			}
			if _, err := svc.friends.AcceptRequest(ctx, from, to); err != nil {
				log.Printf("Failed to accept %s -> %s: %v", from.Username, to.Username, err)
				continue
			}
			created++
		}
	}
	return created
}

// createCloseFriendsLists gives every user a list holding one of their friends.
func createCloseFriendsLists(ctx context.Context, svc services, users []*domain.User) int {
	created := 0
	for _, user := range users {
		friendIDs, err := svc.friends.GetFriends(ctx, user.ID)
		if err != nil || len(friendIDs) == 0 {
			continue
		}

		label, err := svc.labels.CreateUserLabel(ctx, user.ID, service.CreateLabelRequest{Name: "Close friends"})
		if err != nil {
			log.Printf("Failed to create list for %s: %v", user.Username, err)
			continue
		}
		if _, err := svc.labels.AssignFriend(ctx, user, label.ID, friendIDs[0]); err != nil {
			log.Printf("Failed to assign friend for %s: %v", user.Username, err)
		}
		created++
	}
	return created
}

func createPosts(ctx context.Context, svc services, users []*domain.User, perUser int) int {
	created := 0
	for _, user := range users {
		lists, err := svc.labels.GetLabelsByAuthor(ctx, user.ID)
		if err != nil {
			log.Printf("Failed to list labels for %s: %v", user.Username, err)
			continue
		}

		for range perUser {
			req := service.CreatePostRequest{
				Content: sampleContent[rand.IntN(len(sampleContent))],
				Prompt:  rand.IntN(len(domain.Prompts)),
			}
			// Roughly one post in four goes to a list instead of everyone.
			if len(lists) > 0 && rand.IntN(4) == 0 {
				req.Audience = &lists[0].ID
			}

			if _, err := svc.posts.CreatePost(ctx, user, req); err != nil {
				log.Printf("Failed to create post for %s: %v", user.Username, err)
				continue
			}
			created++
		}
	}
	return created
}
