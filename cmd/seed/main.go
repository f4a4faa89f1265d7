package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/timmy/vidfeed/internal/config"
	"github.com/timmy/vidfeed/internal/domain"
	"github.com/timmy/vidfeed/internal/logger"
	"github.com/timmy/vidfeed/internal/repository"
)

type seedOptions struct {
	Users    int
	Videos   int
	Hashtags int
	Seed     int64
}

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "vidfeed-seed",
	})
	logger.SetDefaultLogger(appLogger)

	users := flag.Int("users", 50, "Number of users to create")
	videos := flag.Int("videos", 500, "Number of videos to create")
	hashtags := flag.Int("hashtags", 30, "Number of hashtags to create")
	seed := flag.Int64("seed", 1, "Random seed; the same seed yields the same rows")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := seedOptions{Users: *users, Videos: *videos, Hashtags: *hashtags, Seed: *seed}
	fx := generate(opts, time.Now().UTC())

	if err := repository.NewFixtureWriter(db, 500).Write(ctx, fx); err != nil {
		appLogger.WithError(err).Fatal("Failed to write fixtures")
	}

	appLogger.WithFields(logger.Fields{
		"users":    len(fx.Users),
		"videos":   len(fx.Videos),
		"hashtags": len(fx.Hashtags),
		"follows":  len(fx.Follows),
		"likes":    len(fx.Likes),
		"comments": len(fx.Comments),
	}).Info("Seeding completed")
}

// seedID derives a stable id so reruns with the same seed are idempotent.
func seedID(seed int64, kind string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("vidfeed/%d/%s/%d", seed, kind, i))).String()
}

// generate builds a synthetic social graph. Videos are spread over the last
// ten days so every ranking window has candidates; a few are removed,
// flagged or still processing.
func generate(opts seedOptions, now time.Time) *repository.Fixtures {
	f := gofakeit.New(opts.Seed)
	fx := &repository.Fixtures{}

	for i := 0; i < opts.Users; i++ {
		name := f.Name()
		fx.Users = append(fx.Users, domain.User{
			ID:          seedID(opts.Seed, "user", i),
			Username:    fmt.Sprintf("%s_%d", strings.ToLower(f.Username()), i),
			DisplayName: name,
			AvatarKey:   fmt.Sprintf("avatars/%d.jpg", i),
			CreatedAt:   now.Add(-time.Duration(f.IntRange(240, 2400)) * time.Hour),
		})
	}
	if len(fx.Users) == 0 {
		return fx
	}

	seen := make(map[string]bool)
	for i := 0; len(fx.Hashtags) < opts.Hashtags && i < opts.Hashtags*10; i++ {
		name := strings.ToLower(f.Word())
		if seen[name] {
			continue
		}
		seen[name] = true
		fx.Hashtags = append(fx.Hashtags, domain.Hashtag{
			ID:   seedID(opts.Seed, "hashtag", len(fx.Hashtags)),
			Name: name,
		})
	}

	for i := 0; i < opts.Videos; i++ {
		// Skew authorship so some creators stay under the diversity thresholds.
		author := fx.Users[f.IntRange(0, len(fx.Users)-1)/f.IntRange(1, 3)]
		created := now.Add(-time.Duration(f.IntRange(10, 240*60)) * time.Minute)
		v := domain.Video{
			ID:           seedID(opts.Seed, "video", i),
			AuthorID:     author.ID,
			Caption:      f.Sentence(f.IntRange(3, 10)),
			VideoURL:     fmt.Sprintf("videos/%d.mp4", i),
			ThumbnailURL: fmt.Sprintf("thumbnails/%d.jpg", i),
			ViewCount:    int64(f.IntRange(0, 50000)),
			CreatedAt:    created,
			UpdatedAt:    created,
		}
		switch n := f.IntRange(0, 99); {
		case n < 2:
			v.IsRemoved = true
		case n < 4:
			v.IsFlagged = true
		case n < 6:
			v.VideoURL = domain.MediaURLProcessing + v.ID
		}
		fx.Videos = append(fx.Videos, v)

		if len(fx.Hashtags) == 0 {
			continue
		}
		tagged := make(map[string]bool)
		for t := f.IntRange(0, 3); t > 0; t-- {
			h := fx.Hashtags[f.IntRange(0, len(fx.Hashtags)-1)]
			if tagged[h.ID] {
				continue
			}
			tagged[h.ID] = true
			fx.Tags = append(fx.Tags, domain.VideoHashtag{VideoID: v.ID, HashtagID: h.ID})
		}
	}

	for i, u := range fx.Users {
		following := make(map[string]bool)
		for n := f.IntRange(0, 10); n > 0; n-- {
			other := fx.Users[f.IntRange(0, len(fx.Users)-1)]
			if other.ID == u.ID || following[other.ID] {
				continue
			}
			following[other.ID] = true
			fx.Follows = append(fx.Follows, domain.Follow{
				FollowerID:  u.ID,
				FollowingID: other.ID,
				CreatedAt:   now.Add(-time.Duration(f.IntRange(1, 720)) * time.Hour),
			})
		}

		if len(fx.Videos) == 0 {
			continue
		}
		liked := make(map[string]bool)
		for n := f.IntRange(0, 20); n > 0; n-- {
			v := fx.Videos[f.IntRange(0, len(fx.Videos)-1)]
			if liked[v.ID] {
				continue
			}
			liked[v.ID] = true
			fx.Likes = append(fx.Likes, domain.Like{
				UserID:    u.ID,
				VideoID:   v.ID,
				CreatedAt: v.CreatedAt.Add(time.Duration(f.IntRange(1, 600)) * time.Second),
			})
		}

		for n := f.IntRange(0, 5); n > 0; n-- {
			v := fx.Videos[f.IntRange(0, len(fx.Videos)-1)]
			fx.Comments = append(fx.Comments, domain.Comment{
				ID:        seedID(opts.Seed, "comment", i*100+n),
				VideoID:   v.ID,
				UserID:    u.ID,
				Body:      f.Sentence(f.IntRange(2, 12)),
				CreatedAt: v.CreatedAt.Add(time.Duration(f.IntRange(1, 600)) * time.Second),
			})
		}
	}

	return fx
}
