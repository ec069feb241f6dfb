package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/filmscatalog/backend/internal/models"
	"github.com/filmscatalog/backend/internal/repository"
	"github.com/filmscatalog/backend/pkg/apperr"
	"github.com/filmscatalog/backend/pkg/validation"
	"github.com/google/uuid"
)

// Upload is a poster file supplied with a create or edit request,
// already read fully from the multipart form.
type Upload struct {
	FileName string
	Data     []byte
}

// FilmInput carries the mutable film fields for create and edit.
type FilmInput struct {
	Name         string
	Description  string
	ReleaseDate  time.Time
	DirectorName string
	Upload       *Upload
}

// FilmService orchestrates the film repository, the poster store and the
// permission check into the create/edit/delete/list/detail use cases.
type FilmService struct {
	repo    repository.FilmRepository
	posters *PosterStore
}

func NewFilmService(repo repository.FilmRepository, posters *PosterStore) *FilmService {
	return &FilmService{repo: repo, posters: posters}
}

// Create validates the input, stores the poster (if any) and then the
// record. When the record insert fails after the poster was written the
// poster is deleted again so no orphaned file is left behind.
func (s *FilmService) Create(ctx context.Context, input FilmInput, currentUser *models.User) (*models.Film, error) {
	if errs := validation.ValidateFilmName(input.Name); len(errs) > 0 {
		return nil, &apperr.ValidationError{Fields: errs}
	}
	if currentUser == nil {
		return nil, fmt.Errorf("create film: %w", apperr.ErrAuthentication)
	}

	// Validate the upload before anything is written.
	var ext string
	if input.Upload != nil {
		var err error
		ext, err = CanonicalExtension(filepath.Ext(input.Upload.FileName))
		if err != nil {
			return nil, err
		}
	}

	id := uuid.New()

	var logicalPath string
	if input.Upload != nil {
		var err error
		logicalPath, err = s.posters.Save(ctx, id, ext, bytes.NewReader(input.Upload.Data))
		if err != nil {
			return nil, err
		}
	}

	film := &models.Film{
		ID:           id,
		CreatorID:    currentUser.ID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		ReleaseDate:  input.ReleaseDate,
		DirectorName: input.DirectorName,
	}
	if input.Upload != nil {
		film.FileName = input.Upload.FileName
		film.FilePath = logicalPath
	}

	if err := s.repo.Create(film); err != nil {
		// Compensate: the poster was written but the record was not.
		if logicalPath != "" {
			if derr := s.posters.Delete(ctx, logicalPath); derr != nil {
				log.Printf("WARN: failed to clean up poster %s after create failure: %v", logicalPath, derr)
			}
		}
		return nil, err
	}

	return film, nil
}

// Edit updates a film's fields and, when a new upload is supplied,
// replaces its poster. The new extension is validated before the old
// poster is touched. A lost optimistic write surfaces as ErrConcurrency
// without retry; the already-replaced poster is not rolled back.
func (s *FilmService) Edit(ctx context.Context, id uuid.UUID, input FilmInput, currentUser *models.User) (*models.Film, error) {
	film, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !CanEdit(film, currentUser) {
		return nil, fmt.Errorf("edit film %s: %w", id, apperr.ErrAuthorization)
	}

	if errs := validation.ValidateFilmName(input.Name); len(errs) > 0 {
		return nil, &apperr.ValidationError{Fields: errs}
	}

	if input.Upload != nil {
		newPath, err := s.posters.Replace(ctx, film.ID, film.FilePath, filepath.Ext(input.Upload.FileName), bytes.NewReader(input.Upload.Data))
		if err != nil {
			return nil, err
		}
		film.FilePath = newPath
		film.FileName = input.Upload.FileName
	}

	film.Name = strings.TrimSpace(input.Name)
	film.Description = input.Description
	film.ReleaseDate = input.ReleaseDate
	film.DirectorName = input.DirectorName

	if err := s.repo.Update(film); err != nil {
		if input.Upload != nil {
			// Known gap: the poster swap already happened and stays.
			log.Printf("WARN: film %s update failed after poster replace: %v", id, err)
		}
		return nil, err
	}

	return film, nil
}

// Delete removes the poster first, then the record. If the record
// delete fails afterwards the film is left pointing at a gone file;
// that is logged and the error surfaced, no un-delete is attempted.
func (s *FilmService) Delete(ctx context.Context, id uuid.UUID, currentUser *models.User) error {
	film, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if !CanEdit(film, currentUser) {
		return fmt.Errorf("delete film %s: %w", id, apperr.ErrAuthorization)
	}

	if err := s.posters.Delete(ctx, film.FilePath); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		if film.FilePath != "" {
			log.Printf("WARN: film %s record delete failed after poster delete, record now stale: %v", id, err)
		}
		return err
	}

	return nil
}

// List returns one page of films plus the total count. Public.
func (s *FilmService) List(ctx context.Context, page, pageSize int) ([]models.Film, int64, error) {
	return s.repo.ListPage(page, pageSize)
}

// GetDetail returns a single film by id. Public.
func (s *FilmService) GetDetail(ctx context.Context, id uuid.UUID) (*models.Film, error) {
	return s.repo.GetByID(id)
}
