package repository

import (
	"errors"
	"fmt"

	"github.com/filmscatalog/backend/internal/models"
	"github.com/filmscatalog/backend/pkg/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPageSize is used when the caller supplies a non-positive page size.
const DefaultPageSize = 20

// FilmRepository persists and queries film records.
type FilmRepository interface {
	Create(film *models.Film) error
	GetByID(id uuid.UUID) (*models.Film, error)
	ListPage(page, pageSize int) ([]models.Film, int64, error)
	Update(film *models.Film) error
	Delete(id uuid.UUID) error
}

type filmRepo struct {
	db *gorm.DB
}

func NewFilmRepository(db *gorm.DB) FilmRepository {
	return &filmRepo{db: db}
}

func (r *filmRepo) Create(film *models.Film) error {
	if film == nil {
		return errors.New("film cannot be nil")
	}
	if err := r.db.Create(film).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("film %s: %w", film.ID, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create film: %w", err)
	}
	return nil
}

func (r *filmRepo) GetByID(id uuid.UUID) (*models.Film, error) {
	var film models.Film
	if err := r.db.Preload("Creator").First(&film, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("film %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &film, nil
}

// ListPage returns one 1-based page in creation order plus the total count.
// Ordering is created_at with the id as tiebreak so paging stays
// deterministic under concurrent inserts.
func (r *filmRepo) ListPage(page, pageSize int) ([]models.Film, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	offset := (page - 1) * pageSize

	var total int64
	if err := r.db.Model(&models.Film{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var films []models.Film
	if err := r.db.Preload("Creator").Order("created_at ASC, id ASC").Offset(offset).Limit(pageSize).Find(&films).Error; err != nil {
		return nil, 0, err
	}

	return films, total, nil
}

// Update persists field changes keyed by id, guarded by the version stamp.
// Zero rows affected means either the record vanished (NotFound) or a
// concurrent writer bumped the version first (Concurrency); an existence
// re-check tells the two apart.
func (r *filmRepo) Update(film *models.Film) error {
	if film == nil {
		return errors.New("film cannot be nil")
	}

	result := r.db.Model(&models.Film{}).
		Where("id = ? AND version = ?", film.ID, film.Version).
		Updates(map[string]interface{}{
			"name":          film.Name,
			"description":   film.Description,
			"release_date":  film.ReleaseDate,
			"director_name": film.DirectorName,
			"file_name":     film.FileName,
			"file_path":     film.FilePath,
			"version":       film.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update film: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Film{}).Where("id = ?", film.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("film %s: %w", film.ID, apperr.ErrNotFound)
		}
		return fmt.Errorf("film %s: %w", film.ID, apperr.ErrConcurrency)
	}

	film.Version++
	return nil
}

func (r *filmRepo) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Film{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete film: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("film %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
