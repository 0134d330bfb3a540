package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forkbook/backend/internal/logger"
	"github.com/forkbook/backend/internal/middleware"
	"github.com/forkbook/backend/internal/models"
	"github.com/forkbook/backend/internal/service"
	"github.com/forkbook/backend/internal/storage"
)

type CreateRecipeRequest struct {
	Name        string `form:"name" validate:"required,max=255"`
	CuisineType string `form:"cuisine_type" validate:"required,max=100"`
	Ingredients string `form:"ingredients" validate:"required"`
	Steps       string `form:"steps" validate:"required"`
	Visibility  string `form:"visibility" validate:"omitempty,oneof=public private"`
}

type UpdateRecipeRequest struct {
	Name        *string `form:"name"`
	CuisineType *string `form:"cuisine_type"`
	Ingredients *string `form:"ingredients"`
	Steps       *string `form:"steps"`
	Visibility  *string `form:"visibility" validate:"omitempty,oneof=public private"`
}

type RecipeHandler struct {
	recipeService *service.RecipeService
	store         storage.PictureStore
}

func NewRecipeHandler(recipeService *service.RecipeService, store storage.PictureStore) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		store:         store,
	}
}

// RegisterRoutes wires the recipe endpoints. The open group allows
// anonymous reads and is rate limited; the protected group requires auth.
func (h *RecipeHandler) RegisterRoutes(open, protected *gin.RouterGroup) {
	open.GET("/recipes/filtered", h.FilterRecipes)
	open.GET("/recipes/:id", h.GetRecipe)

	protected.GET("/recipes", h.ListRecipes)
	protected.POST("/recipes", h.CreateRecipe)
	protected.PUT("/recipes/:id", h.UpdateRecipe)
	protected.DELETE("/recipes/:id", h.DeleteRecipe)
}

func requesterFrom(c *gin.Context) service.Requester {
	return service.Requester{
		ID:   middleware.UserIDFrom(c),
		Role: middleware.RoleFrom(c),
	}
}

func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusNotFound, "Recipe not found", nil)
		return 0, false
	}
	return uint(id), true
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	recipes, err := h.recipeService.List(c.Request.Context(), requesterFrom(c), page)
	if err != nil {
		logger.Error("failed to list recipes", "error", err)
		Error(c, http.StatusInternalServerError, "Failed to fetch recipes", nil)
		return
	}
	Success(c, http.StatusOK, "Recipes retrieved", recipes)
}

func (h *RecipeHandler) FilterRecipes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.recipeService.Filter(c.Request.Context(), requesterFrom(c), service.RecipeFilter{
		Name:        c.Query("name"),
		CuisineType: c.Query("cuisine_type"),
		Page:        page,
	})
	if err != nil {
		logger.Error("failed to filter recipes", "error", err)
		Error(c, http.StatusInternalServerError, "Failed to fetch recipes", nil)
		return
	}
	Success(c, http.StatusOK, "Recipes fetched successfully", result)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), requesterFrom(c), id)
	if err != nil {
		h.renderRecipeError(c, err)
		return
	}
	Success(c, http.StatusOK, "Recipe retrieved", recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBind(&req); err != nil {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", nil)
		return
	}

	errs := validateStruct(&req)
	pictureHeader, _ := c.FormFile("picture")
	contentType := validatePicture(pictureHeader, errs)
	if len(errs) > 0 {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", errs)
		return
	}

	visibility := models.Visibility(req.Visibility)
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	recipe := models.Recipe{
		Name:        req.Name,
		CuisineType: req.CuisineType,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		Visibility:  visibility,
	}

	if pictureHeader != nil {
		key, err := h.storePicture(c, pictureHeader, contentType)
		if err != nil {
			logger.Error("failed to store picture", "error", err)
			Error(c, http.StatusInternalServerError, "Failed to store picture", nil)
			return
		}
		recipe.Picture = key
	}

	created, err := h.recipeService.Create(c.Request.Context(), requesterFrom(c), &recipe)
	if err != nil {
		logger.Error("failed to create recipe", "error", err)
		Error(c, http.StatusInternalServerError, "Failed to create recipe", nil)
		return
	}

	Success(c, http.StatusCreated, "Recipe created successfully", created)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBind(&req); err != nil {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", nil)
		return
	}

	errs := validateStruct(&req)
	requirePresent(errs, "name", req.Name, 255)
	requirePresent(errs, "cuisine_type", req.CuisineType, 100)
	requirePresent(errs, "ingredients", req.Ingredients, 0)
	requirePresent(errs, "steps", req.Steps, 0)

	pictureHeader, _ := c.FormFile("picture")
	contentType := validatePicture(pictureHeader, errs)
	if len(errs) > 0 {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", errs)
		return
	}

	update := service.RecipeUpdate{
		Name:        req.Name,
		CuisineType: req.CuisineType,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
	}
	if req.Visibility != nil {
		v := models.Visibility(*req.Visibility)
		update.Visibility = &v
	}

	// New picture goes to storage before the row is written; the service
	// deletes the replaced file only after the update commits.
	if pictureHeader != nil {
		key, err := h.storePicture(c, pictureHeader, contentType)
		if err != nil {
			logger.Error("failed to store picture", "error", err)
			Error(c, http.StatusInternalServerError, "Failed to store picture", nil)
			return
		}
		update.Picture = &key
	}

	updated, err := h.recipeService.Update(c.Request.Context(), requesterFrom(c), id, update)
	if err != nil {
		h.renderRecipeError(c, err)
		return
	}

	Success(c, http.StatusOK, "Recipe updated successfully", updated)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), requesterFrom(c), id); err != nil {
		h.renderRecipeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) renderRecipeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "Recipe not found", nil)
	case errors.Is(err, service.ErrForbidden):
		Error(c, http.StatusForbidden, "Unauthorized", nil)
	default:
		logger.Error("recipe operation failed", "error", err)
		Error(c, http.StatusInternalServerError, "Something went wrong", nil)
	}
}

func (h *RecipeHandler) storePicture(c *gin.Context, header *multipart.FileHeader, contentType string) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	key := "recipes/" + uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	if err := h.store.Save(c.Request.Context(), key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// requirePresent rejects provided-but-empty fields and enforces the
// per-field length ceiling on partial updates. A zero maxLen means no cap.
func requirePresent(errs fieldErrors, field string, value *string, maxLen int) {
	if value == nil {
		return
	}
	if *value == "" {
		errs.add(field, "The "+strings.ReplaceAll(field, "_", " ")+" field is required.")
		return
	}
	if maxLen > 0 && utf8.RuneCountInString(*value) > maxLen {
		errs.add(field, "The "+strings.ReplaceAll(field, "_", " ")+" field must not be greater than "+strconv.Itoa(maxLen)+" characters.")
	}
}
