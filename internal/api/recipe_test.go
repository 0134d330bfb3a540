package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkbook/backend/internal/models"
)

var pictureBytes = []byte("\x89PNG\r\n\x1a\nfake-image-data")

func recipeFields() map[string]string {
	return map[string]string{
		"name":         "Spaghetti Carbonara",
		"cuisine_type": "Italian",
		"ingredients":  "200g pasta\n4 eggs\n100g pancetta",
		"steps":        "1. Boil pasta\n2. Fry pancetta\n3. Mix with eggs",
		"visibility":   "public",
	}
}

func TestCreateRecipe(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUser(t, env, models.RoleUser)

	body, contentType := MultipartForm(t, recipeFields(), "dish.png", pictureBytes)
	w := PerformRequest(env.Router, "POST", "/api/v1/recipes", token, body, contentType)
	assert.Equal(t, http.StatusCreated, w.Code)

	envelope := decodeEnvelope(t, w.Body.Bytes())
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "Spaghetti Carbonara", data["name"])
	assert.Equal(t, "public", data["visibility"])

	key, _ := data["picture"].(string)
	require.NotEmpty(t, key)
	exists, err := env.Store.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, exists, "uploaded picture must be stored")
}

func TestCreateRecipeDefaultsToPrivate(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUser(t, env, models.RoleUser)

	fields := recipeFields()
	delete(fields, "visibility")
	body, contentType := MultipartForm(t, fields, "", nil)
	w := PerformRequest(env.Router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, "private", data["visibility"])
}

func TestCreateRecipeValidation(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUser(t, env, models.RoleUser)

	body, contentType := MultipartForm(t, map[string]string{"visibility": "friends"}, "", nil)
	w := PerformRequest(env.Router, "POST", "/api/v1/recipes", token, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	errs := fieldErrorsOf(t, decodeEnvelope(t, w.Body.Bytes()))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "cuisine_type")
	assert.Contains(t, errs, "ingredients")
	assert.Contains(t, errs, "steps")
	assert.Contains(t, errs, "visibility")
}

func TestCreateRecipePictureRules(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUser(t, env, models.RoleUser)

	// Wrong extension.
	body, contentType := MultipartForm(t, recipeFields(), "dish.pdf", pictureBytes)
	w := PerformRequest(env.Router, "POST", "/api/v1/recipes", token, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := fieldErrorsOf(t, decodeEnvelope(t, w.Body.Bytes()))
	assert.Contains(t, errs, "picture")

	// Over the size ceiling.
	big := bytes.Repeat([]byte("x"), 2049*1024)
	body, contentType = MultipartForm(t, recipeFields(), "dish.jpg", big)
	w = PerformRequest(env.Router, "POST", "/api/v1/recipes", token, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs = fieldErrorsOf(t, decodeEnvelope(t, w.Body.Bytes()))
	assert.Contains(t, errs, "picture")
}

func TestGetRecipeVisibility(t *testing.T) {
	env := SetupTestEnv(t)
	owner, ownerToken := CreateTestUser(t, env, models.RoleUser)
	_, otherToken := CreateTestUser(t, env, models.RoleUser)
	_, adminToken := CreateTestUser(t, env, models.RoleAdmin)

	public := CreateTestRecipe(t, env, owner, "Open Omelette", models.VisibilityPublic)
	private := CreateTestRecipe(t, env, owner, "Secret Stew", models.VisibilityPrivate)

	// Public recipe: readable by anyone, token or not.
	w := PerformRequest(env.Router, "GET", fmt.Sprintf("/api/v1/recipes/%d", public.ID), "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = PerformRequest(env.Router, "GET", fmt.Sprintf("/api/v1/recipes/%d", public.ID), otherToken, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Private recipe: owner and admin only.
	w = PerformRequest(env.Router, "GET", fmt.Sprintf("/api/v1/recipes/%d", private.ID), ownerToken, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = PerformRequest(env.Router, "GET", fmt.Sprintf("/api/v1/recipes/%d", private.ID), adminToken, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = PerformRequest(env.Router, "GET", fmt.Sprintf("/api/v1/recipes/%d", private.ID), otherToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = PerformRequest(env.Router, "GET", fmt.Sprintf("/api/v1/recipes/%d", private.ID), "", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Missing and malformed ids are 404 for everyone.
	w = PerformRequest(env.Router, "GET", "/api/v1/recipes/9999", adminToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = PerformRequest(env.Router, "GET", "/api/v1/recipes/not-a-number", adminToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecipePermissions(t *testing.T) {
	env := SetupTestEnv(t)
	owner, ownerToken := CreateTestUser(t, env, models.RoleUser)
	_, otherToken := CreateTestUser(t, env, models.RoleUser)
	_, adminToken := CreateTestUser(t, env, models.RoleAdmin)

	recipe := CreateTestRecipe(t, env, owner, "Carbonara", models.VisibilityPrivate)
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	update := map[string]string{"name": "Updated Carbonara"}

	// Non-owner on an existing recipe: 403, never 404.
	body, contentType := MultipartForm(t, update, "", nil)
	w := PerformRequest(env.Router, "PUT", path, otherToken, body, contentType)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Owner may update.
	body, contentType = MultipartForm(t, update, "", nil)
	w = PerformRequest(env.Router, "PUT", path, ownerToken, body, contentType)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, "Updated Carbonara", data["name"])

	// Admin may update someone else's recipe.
	body, contentType = MultipartForm(t, map[string]string{"cuisine_type": "Roman"}, "", nil)
	w = PerformRequest(env.Router, "PUT", path, adminToken, body, contentType)
	assert.Equal(t, http.StatusOK, w.Code)

	// Nonexistent id: 404 regardless of requester.
	body, contentType = MultipartForm(t, update, "", nil)
	w = PerformRequest(env.Router, "PUT", "/api/v1/recipes/9999", adminToken, body, contentType)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecipeValidation(t *testing.T) {
	env := SetupTestEnv(t)
	owner, ownerToken := CreateTestUser(t, env, models.RoleUser)
	recipe := CreateTestRecipe(t, env, owner, "Carbonara", models.VisibilityPrivate)
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	// A provided-but-empty field fails; omitted fields do not.
	body, contentType := MultipartForm(t, map[string]string{"name": ""}, "", nil)
	w := PerformRequest(env.Router, "PUT", path, ownerToken, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := fieldErrorsOf(t, decodeEnvelope(t, w.Body.Bytes()))
	assert.Contains(t, errs, "name")

	body, contentType = MultipartForm(t, map[string]string{"visibility": "friends"}, "", nil)
	w = PerformRequest(env.Router, "PUT", path, ownerToken, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Length ceilings count runes, not bytes: a 255-rune multibyte name
	// is fine, a 256-rune one is not.
	body, contentType = MultipartForm(t, map[string]string{"name": strings.Repeat("é", 255)}, "", nil)
	w = PerformRequest(env.Router, "PUT", path, ownerToken, body, contentType)
	assert.Equal(t, http.StatusOK, w.Code)

	body, contentType = MultipartForm(t, map[string]string{"name": strings.Repeat("é", 256)}, "", nil)
	w = PerformRequest(env.Router, "PUT", path, ownerToken, body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs = fieldErrorsOf(t, decodeEnvelope(t, w.Body.Bytes()))
	assert.Contains(t, errs, "name")
}

func TestUpdateRecipeReplacesPicture(t *testing.T) {
	env := SetupTestEnv(t)
	owner, ownerToken := CreateTestUser(t, env, models.RoleUser)
	recipe := CreateTestRecipe(t, env, owner, "Carbonara", models.VisibilityPrivate)

	oldKey := "recipes/old.jpg"
	require.NoError(t, env.Store.Save(context.Background(), oldKey, []byte("old"), "image/jpeg"))
	require.NoError(t, env.DB.Model(recipe).UpdateColumn("picture", oldKey).Error)

	body, contentType := MultipartForm(t, nil, "new.png", pictureBytes)
	w := PerformRequest(env.Router, "PUT", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), ownerToken, body, contentType)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	newKey, _ := data["picture"].(string)
	require.NotEmpty(t, newKey)
	require.NotEqual(t, oldKey, newKey)

	oldExists, err := env.Store.Exists(context.Background(), oldKey)
	require.NoError(t, err)
	assert.False(t, oldExists, "previous picture must be removed")

	newExists, err := env.Store.Exists(context.Background(), newKey)
	require.NoError(t, err)
	assert.True(t, newExists)
}

func TestDeleteRecipe(t *testing.T) {
	env := SetupTestEnv(t)
	owner, ownerToken := CreateTestUser(t, env, models.RoleUser)
	_, otherToken := CreateTestUser(t, env, models.RoleUser)
	_, adminToken := CreateTestUser(t, env, models.RoleAdmin)

	recipe := CreateTestRecipe(t, env, owner, "Carbonara", models.VisibilityPrivate)
	key := "recipes/dish.jpg"
	require.NoError(t, env.Store.Save(context.Background(), key, []byte("image"), "image/jpeg"))
	require.NoError(t, env.DB.Model(recipe).UpdateColumn("picture", key).Error)

	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	// Only the owner may delete; admins are not exempt.
	w := PerformRequest(env.Router, "DELETE", path, otherToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = PerformRequest(env.Router, "DELETE", path, adminToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = PerformRequest(env.Router, "DELETE", path, ownerToken, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	// Row and stored picture are both gone.
	var count int64
	env.DB.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Count(&count)
	assert.Zero(t, count)
	exists, err := env.Store.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again: 404.
	w = PerformRequest(env.Router, "DELETE", path, ownerToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipes(t *testing.T) {
	env := SetupTestEnv(t)
	alice, aliceToken := CreateTestUser(t, env, models.RoleUser)
	bob, _ := CreateTestUser(t, env, models.RoleUser)
	_, adminToken := CreateTestUser(t, env, models.RoleAdmin)

	CreateTestRecipe(t, env, alice, "Alice Private", models.VisibilityPrivate)
	CreateTestRecipe(t, env, bob, "Bob Public", models.VisibilityPublic)

	// A user lists only their own recipes, public or not.
	w := PerformRequest(env.Router, "GET", "/api/v1/recipes", aliceToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeEnvelope(t, w.Body.Bytes())["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Alice Private", items[0].(map[string]interface{})["name"])

	// An admin lists everything.
	w = PerformRequest(env.Router, "GET", "/api/v1/recipes", adminToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items = decodeEnvelope(t, w.Body.Bytes())["data"].([]interface{})
	assert.Len(t, items, 2)

	// Listing is paginated; a page past the result set is empty.
	w = PerformRequest(env.Router, "GET", "/api/v1/recipes?page=5", aliceToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items = decodeEnvelope(t, w.Body.Bytes())["data"].([]interface{})
	assert.Empty(t, items)
}

func TestFilterRecipesEndpoint(t *testing.T) {
	env := SetupTestEnv(t)
	owner, _ := CreateTestUser(t, env, models.RoleUser)

	CreateTestRecipe(t, env, owner, "Spaghetti Carbonara", models.VisibilityPublic)
	CreateTestRecipe(t, env, owner, "Sushi", models.VisibilityPublic)
	CreateTestRecipe(t, env, owner, "Secret Stew", models.VisibilityPrivate)

	// Anonymous filtered listing sees public recipes only.
	w := PerformRequest(env.Router, "GET", "/api/v1/recipes/filtered", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 1, data["page"])

	// Name filter narrows the set.
	w = PerformRequest(env.Router, "GET", "/api/v1/recipes/filtered?name=spa", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	items = data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Spaghetti Carbonara", items[0].(map[string]interface{})["name"])

	// Out-of-range page: empty items, not an error.
	w = PerformRequest(env.Router, "GET", "/api/v1/recipes/filtered?page=50", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w.Body.Bytes())["data"].(map[string]interface{})
	assert.Empty(t, data["items"])
}
