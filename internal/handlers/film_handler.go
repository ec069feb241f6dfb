package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/filmscatalog/backend/internal/config"
	"github.com/filmscatalog/backend/internal/middleware"
	"github.com/filmscatalog/backend/internal/models"
	"github.com/filmscatalog/backend/internal/repository"
	"github.com/filmscatalog/backend/internal/services"
	"github.com/filmscatalog/backend/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FilmHandler struct {
	filmService *services.FilmService
	cfg         *config.Config
}

func NewFilmHandler(filmService *services.FilmService, cfg *config.Config) *FilmHandler {
	return &FilmHandler{
		filmService: filmService,
		cfg:         cfg,
	}
}

// GetFilms lists films in creation order. Public.
// GET /films?page=1&limit=20
func (h *FilmHandler) GetFilms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	// Clamp here so the envelope echoes the values actually applied.
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = repository.DefaultPageSize
	}

	films, total, err := h.filmService.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve films"})
		return
	}

	filmList := make([]gin.H, len(films))
	for i, film := range films {
		filmList[i] = filmResponse(&film)
	}

	c.JSON(http.StatusOK, gin.H{
		"films": filmList,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetFilm returns one film. Public. A malformed id surfaces the same
// not-found response as an absent one.
// GET /films/:id
func (h *FilmHandler) GetFilm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Film not found"})
		return
	}

	film, err := h.filmService.GetDetail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, filmResponse(film))
}

// CreateFilm creates a film from a multipart form with an optional poster.
// POST /films
// Form: name (required), description, director_name, release_date, file
func (h *FilmHandler) CreateFilm(c *gin.Context) {
	input, err := h.bindFilmForm(c)
	if err != nil {
		writeError(c, err)
		return
	}

	film, err := h.filmService.Create(c.Request.Context(), *input, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, filmResponse(film))
}

// UpdateFilm edits a film; only its creator may. A new poster upload
// replaces the stored one, otherwise file_name/file_path stay as they are.
// PUT /films/:id
func (h *FilmHandler) UpdateFilm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Film not found"})
		return
	}

	input, err := h.bindFilmForm(c)
	if err != nil {
		writeError(c, err)
		return
	}

	film, err := h.filmService.Edit(c.Request.Context(), id, *input, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, filmResponse(film))
}

// DeleteFilm removes a film and its poster; only its creator may.
// DELETE /films/:id
func (h *FilmHandler) DeleteFilm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Film not found"})
		return
	}

	if err := h.filmService.Delete(c.Request.Context(), id, middleware.CurrentUser(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Film deleted successfully"})
}

// bindFilmForm reads the multipart fields and the optional poster file.
func (h *FilmHandler) bindFilmForm(c *gin.Context) (*services.FilmInput, error) {
	input := &services.FilmInput{
		Name:         c.PostForm("name"),
		Description:  c.PostForm("description"),
		DirectorName: c.PostForm("director_name"),
	}

	if raw := c.PostForm("release_date"); raw != "" {
		parsed, err := parseReleaseDate(raw)
		if err != nil {
			return nil, apperr.Invalid("release_date", "expected YYYY-MM-DD")
		}
		input.ReleaseDate = parsed
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		// Absent file field or a non-multipart body both mean "no upload".
		return input, nil
	}
	defer file.Close()

	if header.Size > h.cfg.UploadMaxSize {
		return nil, apperr.Invalid("file", "poster file is too large")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Invalid("file", "failed to read uploaded file")
	}

	input.Upload = &services.Upload{
		FileName: header.Filename,
		Data:     data,
	}
	return input, nil
}

func parseReleaseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// filmResponse builds the JSON envelope for one film.
func filmResponse(film *models.Film) gin.H {
	resp := gin.H{
		"id":            film.ID,
		"creator_id":    film.CreatorID,
		"name":          film.Name,
		"description":   film.Description,
		"release_date":  film.ReleaseDate,
		"director_name": film.DirectorName,
		"file_name":     film.FileName,
		"file_path":     film.FilePath,
		"created_at":    film.CreatedAt,
		"updated_at":    film.UpdatedAt,
	}
	if film.Creator != nil {
		resp["creator"] = gin.H{
			"id":       film.Creator.ID,
			"username": film.Creator.Username,
			"name":     film.Creator.Name,
		}
	}
	return resp
}

// writeError maps the failure taxonomy to HTTP statuses.
func writeError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.CodeValidation, "fields": ve.Fields})
	case errors.Is(err, apperr.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperr.CodeAuthentication, "message": "authentication required"})
	case errors.Is(err, apperr.ErrAuthorization):
		c.JSON(http.StatusForbidden, gin.H{"error": apperr.CodeAuthorization, "message": "only the creator may modify this film"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.CodeNotFound, "message": "Film not found"})
	case errors.Is(err, apperr.ErrConcurrency):
		c.JSON(http.StatusConflict, gin.H{"error": apperr.CodeConcurrency, "message": "the film was modified concurrently, reload and retry"})
	case errors.Is(err, apperr.ErrDuplicateAsset):
		c.JSON(http.StatusConflict, gin.H{"error": apperr.CodeDuplicateAsset, "message": "a poster already exists at this location"})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": apperr.CodeConflict, "message": "the record already exists"})
	default:
		log.Printf("ERROR: unhandled failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
