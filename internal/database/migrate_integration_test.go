package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkbook/backend/internal/models"
	"github.com/forkbook/backend/internal/testhelpers"
)

func TestMigrateAgainstPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Recipe{}))

	user := models.User{
		Name:         "Integration User",
		Email:        "integration@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEmpty(t, user.UUID, "BeforeCreate must assign a uuid")
	assert.Equal(t, models.RoleUser, user.Role)

	// The email column carries a unique constraint.
	dup := models.User{
		Name:         "Duplicate",
		Email:        "integration@example.com",
		PasswordHash: "not-a-real-hash",
	}
	assert.Error(t, db.Create(&dup).Error)

	recipe := models.Recipe{
		UserID:      user.ID,
		Name:        "Integration Stew",
		CuisineType: "Test Kitchen",
		Ingredients: "water",
		Steps:       "boil",
	}
	require.NoError(t, db.Create(&recipe).Error)

	var got models.Recipe
	require.NoError(t, db.First(&got, recipe.ID).Error)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility, "visibility defaults to private")
}
