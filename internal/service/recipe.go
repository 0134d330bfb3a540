package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/forkbook/backend/internal/logger"
	"github.com/forkbook/backend/internal/models"
	"github.com/forkbook/backend/internal/storage"
)

// Requester is the authenticated identity a request runs as.
type Requester struct {
	ID   uint
	Role models.Role
}

// Action is a capability checked against a recipe.
type Action int

const (
	ActionRead Action = iota
	ActionUpdate
	ActionDelete
)

// Can decides whether the requester may perform action on recipe.
// Read: public, owner or admin. Update: owner or admin. Delete: owner only.
func (r Requester) Can(action Action, recipe *models.Recipe) bool {
	owner := recipe.UserID == r.ID

	switch r.Role {
	case models.RoleAdmin:
		switch action {
		case ActionRead, ActionUpdate:
			return true
		case ActionDelete:
			return owner
		}
		return false
	case models.RoleUser:
		switch action {
		case ActionRead:
			return owner || recipe.Visibility == models.VisibilityPublic
		case ActionUpdate, ActionDelete:
			return owner
		}
		return false
	}
	return false
}

// RecipeFilter narrows the visible recipe set. Empty fields are no-ops.
type RecipeFilter struct {
	Name        string
	CuisineType string
	Page        int
}

// RecipePage is one page of filtered results.
type RecipePage struct {
	Items   []models.Recipe `json:"items"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int64           `json:"total"`
}

// RecipeUpdate carries the fields of a partial update; nil means "keep".
type RecipeUpdate struct {
	Name        *string
	CuisineType *string
	Ingredients *string
	Steps       *string
	Picture     *string
	Visibility  *models.Visibility
}

// RecipeService is the access-control and filter evaluator for recipes.
type RecipeService struct {
	db      *gorm.DB
	store   storage.PictureStore
	perPage int
}

func NewRecipeService(db *gorm.DB, store storage.PictureStore, perPage int) *RecipeService {
	return &RecipeService{
		db:      db,
		store:   store,
		perPage: perPage,
	}
}

// visibleTo scopes a query to what the requester may read:
// admins see everything, users see public recipes plus their own.
func (s *RecipeService) visibleTo(query *gorm.DB, requester Requester) *gorm.DB {
	switch requester.Role {
	case models.RoleAdmin:
		return query
	default:
		return query.Where("visibility = ? OR user_id = ?", models.VisibilityPublic, requester.ID)
	}
}

// List returns one page of the requester's recipes, or of every recipe
// for an admin, newest id first. A page beyond the result set yields an
// empty page, not an error.
func (s *RecipeService) List(ctx context.Context, requester Requester, page int) ([]models.Recipe, error) {
	if page < 1 {
		page = 1
	}

	recipes := []models.Recipe{}
	query := s.db.WithContext(ctx)
	if requester.Role != models.RoleAdmin {
		query = query.Where("user_id = ?", requester.ID)
	}
	err := query.
		Order("id DESC").
		Offset((page - 1) * s.perPage).
		Limit(s.perPage).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Filter returns the page of recipes visible to the requester that match
// the filter. Name and cuisine match case-insensitive substrings and are
// AND-combined. Results come newest-created first, ties broken by id.
// A page beyond the result set yields an empty page, not an error.
func (s *RecipeService) Filter(ctx context.Context, requester Requester, filter RecipeFilter) (*RecipePage, error) {
	query := s.visibleTo(s.db.WithContext(ctx).Model(&models.Recipe{}), requester)

	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.CuisineType != "" {
		query = query.Where("LOWER(cuisine_type) LIKE ?", "%"+strings.ToLower(filter.CuisineType)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	var recipes []models.Recipe
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * s.perPage).
		Limit(s.perPage).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	return &RecipePage{
		Items:   recipes,
		Page:    page,
		PerPage: s.perPage,
		Total:   total,
	}, nil
}

// Get fetches one recipe. Existence is checked before permission, so a
// missing id is ErrNotFound for everyone while a private recipe read by a
// non-owner is ErrForbidden.
func (s *RecipeService) Get(ctx context.Context, requester Requester, id uint) (*models.Recipe, error) {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.Can(ActionRead, recipe) {
		return nil, ErrForbidden
	}
	return recipe, nil
}

// Create stores a new recipe owned by the requester.
func (s *RecipeService) Create(ctx context.Context, requester Requester, recipe *models.Recipe) (*models.Recipe, error) {
	recipe.UserID = requester.ID
	if recipe.Visibility == "" {
		recipe.Visibility = models.VisibilityPrivate
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

// Update applies the provided fields to an existing recipe. Owners and
// admins may update. When the picture is replaced the row is written
// first, then the previous file is deleted best-effort.
func (s *RecipeService) Update(ctx context.Context, requester Requester, id uint, update RecipeUpdate) (*models.Recipe, error) {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.Can(ActionUpdate, recipe) {
		return nil, ErrForbidden
	}

	oldPicture := recipe.Picture

	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.CuisineType != nil {
		changes["cuisine_type"] = *update.CuisineType
	}
	if update.Ingredients != nil {
		changes["ingredients"] = *update.Ingredients
	}
	if update.Steps != nil {
		changes["steps"] = *update.Steps
	}
	if update.Picture != nil {
		changes["picture"] = *update.Picture
	}
	if update.Visibility != nil {
		changes["visibility"] = *update.Visibility
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(recipe).Updates(changes).Error; err != nil {
			return nil, err
		}
	}

	if update.Picture != nil && oldPicture != "" && oldPicture != *update.Picture {
		s.removePicture(ctx, oldPicture)
	}

	return s.find(ctx, id)
}

// Delete removes a recipe. Owner only; admins get no exception. The row
// is deleted first, then the stored picture best-effort.
func (s *RecipeService) Delete(ctx context.Context, requester Requester, id uint) error {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !requester.Can(ActionDelete, recipe) {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
		return err
	}

	if recipe.Picture != "" {
		s.removePicture(ctx, recipe.Picture)
	}

	return nil
}

func (s *RecipeService) find(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeService) removePicture(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Warn("failed to delete stored picture", "key", key, "error", err)
	}
}
