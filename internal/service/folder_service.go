package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thundergames/backend/internal/models"

	"gorm.io/gorm"
)

type FolderService interface {
	List(ctx context.Context) ([]models.Folder, error)
	// Create returns the folder with the given name, creating it if needed.
	// created reports whether a new row was inserted.
	Create(ctx context.Context, name string) (folder models.Folder, created bool, err error)
	Get(ctx context.Context, id uint) (models.Folder, error)
	Count(ctx context.Context) (int64, error)
}

type folderService struct {
	db *gorm.DB
}

func NewFolderService(db *gorm.DB) FolderService {
	return &folderService{db: db}
}

func (s *folderService) List(ctx context.Context) ([]models.Folder, error) {
	folders := []models.Folder{}
	if err := s.db.WithContext(ctx).Order("name").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (s *folderService) Create(ctx context.Context, name string) (models.Folder, bool, error) {
	req := CreateFolderRequest{Name: strings.TrimSpace(name)}
	if err := validateStruct(req); err != nil {
		return models.Folder{}, false, err
	}

	db := s.db.WithContext(ctx)
	folder, err := findFolderByName(db, req.Name)
	if err != nil {
		return models.Folder{}, false, err
	}
	if folder != nil {
		return *folder, false, nil
	}

	created := models.Folder{Name: req.Name}
	if err := db.Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent create of the same name.
			if existing, findErr := findFolderByName(db, req.Name); findErr == nil && existing != nil {
				return *existing, false, nil
			}
		}
		return models.Folder{}, false, fmt.Errorf("create folder: %w", err)
	}
	return created, true, nil
}

func (s *folderService) Get(ctx context.Context, id uint) (models.Folder, error) {
	var folder models.Folder
	if err := s.db.WithContext(ctx).First(&folder, id).Error; err != nil {
		return models.Folder{}, notFoundOr(err, "Folder")
	}
	return folder, nil
}

func (s *folderService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return n, nil
}

func findFolderByName(db *gorm.DB, name string) (*models.Folder, error) {
	var folder models.Folder
	err := db.Where("name = ?", name).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find folder: %w", err)
	}
	return &folder, nil
}

// notFoundOr maps gorm's missing-record error to a NotFoundError for resource.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return fmt.Errorf("get %s: %w", strings.ToLower(resource), err)
}
