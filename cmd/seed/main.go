package main

import (
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/forkbook/backend/config"
	"github.com/forkbook/backend/internal/database"
	"github.com/forkbook/backend/internal/logger"
	"github.com/forkbook/backend/internal/models"
)

// Seeds an admin account, a demo user and a couple of recipes so a fresh
// install has something to browse.
func main() {
	logger.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	admin := seedUser(db, "Admin User", "admin@mail.com", "admin123", models.RoleAdmin)
	demo := seedUser(db, "Test Mail", "test@mail.com", "password", models.RoleUser)

	seedRecipe(db, demo, "Spaghetti Carbonara", "Italian", models.VisibilityPublic)
	seedRecipe(db, demo, "Family Sushi", "Japanese", models.VisibilityPrivate)
	seedRecipe(db, admin, "House Curry", "Indian", models.VisibilityPublic)

	logger.Info("seeding complete")
}

func seedUser(db *gorm.DB, name, email, password string, role models.Role) *models.User {
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		logger.Info("user already seeded", "email", email)
		return &existing
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		os.Exit(1)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Error("failed to seed user", "email", email, "error", err)
		os.Exit(1)
	}

	logger.Info("seeded user", "email", email, "role", role)
	return &user
}

func seedRecipe(db *gorm.DB, owner *models.User, name, cuisine string, visibility models.Visibility) {
	var count int64
	db.Model(&models.Recipe{}).Where("user_id = ? AND name = ?", owner.ID, name).Count(&count)
	if count > 0 {
		return
	}

	recipe := models.Recipe{
		UserID:      owner.ID,
		Name:        name,
		CuisineType: cuisine,
		Ingredients: "see notes",
		Steps:       "combine and cook",
		Visibility:  visibility,
	}
	if err := db.Create(&recipe).Error; err != nil {
		logger.Error("failed to seed recipe", "name", name, "error", err)
		os.Exit(1)
	}
	logger.Info("seeded recipe", "name", name, "visibility", visibility)
}
