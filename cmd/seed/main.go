package main

import (
	"fmt"
	"time"

	"postpilot/pkg/config"
	"postpilot/pkg/database"
	"postpilot/pkg/logger"
	"postpilot/pkg/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, log *logger.Logger) error {
	users := []struct {
		email    string
		username string
		password string
		role     models.UserRole
	}{
		{"alice@postpilot.dev", "alice", "password123", models.RoleCreator},
		{"bob@postpilot.dev", "bob", "password123", models.RoleCreator},
		{"admin@postpilot.dev", "admin", "admin12345", models.RoleAdmin},
	}

	seededUsers := make(map[string]string)
	for _, u := range users {
		var existing models.User
		err := db.Where("email = ?", u.email).First(&existing).Error
		if err == nil {
			log.Info("User %s already exists, skipping", u.email)
			seededUsers[u.username] = existing.ID
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.email, err)
		}

		user := models.User{
			Email:    u.email,
			Username: u.username,
			Password: string(hashed),
			Role:     u.role,
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.email, err)
		}

		seededUsers[u.username] = user.ID
		log.Info("Created user %s (%s)", u.username, u.role)
	}

	var postCount int64
	db.Model(&models.Post{}).Count(&postCount)
	if postCount > 0 {
		log.Info("Posts already exist, skipping post seeding")
		return nil
	}

	now := time.Now()
	in10 := now.Add(10 * time.Minute)
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	posts := []models.Post{
		{
			UserID:   seededUsers["alice"],
			Content:  "Working on a new side project. More details soon!",
			Platform: models.PlatformGeneral,
			Status:   models.StatusDraft,
		},
		{
			UserID:      seededUsers["alice"],
			Content:     "Shipping day! Our deferred publishing pipeline goes live in ten minutes. #launch",
			Platform:    models.PlatformX,
			Status:      models.StatusScheduled,
			ScheduledAt: &in10,
		},
		{
			UserID:      seededUsers["bob"],
			Content:     "Weekly roundup: what we learned building a post scheduler in Go.",
			Platform:    models.PlatformFacebook,
			Status:      models.StatusScheduled,
			ScheduledAt: &tomorrow,
		},
		{
			UserID:      seededUsers["bob"],
			Content:     "Hello world, first published post from the seed data.",
			Platform:    models.PlatformGeneral,
			Status:      models.StatusPublished,
			ScheduledAt: &yesterday,
			PublishedAt: &yesterday,
		},
	}

	for i := range posts {
		if err := db.Create(&posts[i]).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
	}

	log.Info("Created %d posts", len(posts))
	return nil
}
