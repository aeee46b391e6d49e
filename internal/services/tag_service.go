package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// tagService handles tag-related business logic.
type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

// CreateTag creates a new tag. Names are unique per user, ignoring case.
func (s *tagService) CreateTag(userID, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name is required")
	}
	if err := s.ensureUniqueName(userID, name, ""); err != nil {
		return nil, err
	}

	tag := &models.Tag{
		UserID: userID,
		Name:   name,
		Color:  color,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tag).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// GetUserTags retrieves a paginated list of tags for a user, ordered by name.
func (s *tagService) GetUserTags(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Tag], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Tag{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var tags []models.Tag
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(tags, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTagByID retrieves a tag by ID for a specific user
func (s *tagService) GetTagByID(userID, tagID string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.Where("id = ? AND user_id = ?", tagID, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

// UpdateTag renames or recolours a tag. Nil fields are left unchanged.
func (s *tagService) UpdateTag(userID, tagID string, name, color *string) (*models.Tag, error) {
	if _, err := s.GetTagByID(userID, tagID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name cannot be empty")
		}
		if err := s.ensureUniqueName(userID, trimmed, tagID); err != nil {
			return nil, err
		}
		updates["name"] = trimmed
	}
	if color != nil {
		updates["color"] = *color
	}

	if len(updates) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Tag{}).Where("id = ? AND user_id = ?", tagID, userID).Updates(updates).Error; err != nil {
				return err
			}
			return bumpRecordsVersion(tx, userID)
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetTagByID(userID, tagID)
}

// DeleteTag deletes a tag. Transactions keep their reference to it, which
// from then on resolves to nothing: their spend becomes untagged and
// provisions pointing at the tag become plain set-asides.
func (s *tagService) DeleteTag(userID, tagID string) error {
	tag, err := s.GetTagByID(userID, tagID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(tag).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *tagService) ensureUniqueName(userID, name, exceptID string) error {
	query := s.db.Model(&models.Tag{}).Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name))
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateTag
	}
	return nil
}
