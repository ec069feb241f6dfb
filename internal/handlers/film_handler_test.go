package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/filmscatalog/backend/internal/config"
	"github.com/filmscatalog/backend/internal/middleware"
	"github.com/filmscatalog/backend/internal/models"
	"github.com/filmscatalog/backend/internal/repository"
	"github.com/filmscatalog/backend/internal/services"
	"github.com/filmscatalog/backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerFixture struct {
	router  *gin.Engine
	cfg     *config.Config
	store   *services.PosterStore
	service *services.FilmService
	u1      *models.User
	u2      *models.User
	token1  string
	token2  string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Film{}))

	cfg := &config.Config{
		Env:                    "test",
		JWTSecret:              "test-secret",
		JWTAccessTokenDuration: time.Hour,
		PosterStoragePath:      t.TempDir(),
		PosterPublicPath:       "/filmPics",
		UploadMaxSize:          1024 * 1024,
		BcryptCost:             4,
	}

	u1 := &models.User{Username: "user-one", Password: "x", Name: "User One", IsActive: true}
	u2 := &models.User{Username: "user-two", Password: "x", Name: "User Two", IsActive: true}
	require.NoError(t, db.Create(u1).Error)
	require.NoError(t, db.Create(u2).Error)

	token1, err := jwt.GenerateToken(u1.ID.String(), jwt.AccessToken, cfg.JWTSecret, cfg.JWTAccessTokenDuration)
	require.NoError(t, err)
	token2, err := jwt.GenerateToken(u2.ID.String(), jwt.AccessToken, cfg.JWTSecret, cfg.JWTAccessTokenDuration)
	require.NoError(t, err)

	userService := services.NewUserService(db, cfg)
	store := services.NewPosterStore(cfg)
	filmService := services.NewFilmService(repository.NewFilmRepository(db), store)
	filmHandler := NewFilmHandler(filmService, cfg)
	userHandler := NewUserHandler()

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/films", filmHandler.GetFilms)
	api.GET("/films/:id", filmHandler.GetFilm)
	authed := api.Group("")
	authed.Use(middleware.Auth(cfg, userService))
	authed.GET("/user/profile", userHandler.GetProfile)
	authed.POST("/films", filmHandler.CreateFilm)
	authed.PUT("/films/:id", filmHandler.UpdateFilm)
	authed.DELETE("/films/:id", filmHandler.DeleteFilm)

	return &handlerFixture{
		router:  router,
		cfg:     cfg,
		store:   store,
		service: filmService,
		u1:      u1,
		u2:      u2,
		token1:  token1,
		token2:  token2,
	}
}

// filmForm builds a multipart request body with the usual fields.
func filmForm(t *testing.T, name string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	require.NoError(t, writer.WriteField("name", name))
	require.NoError(t, writer.WriteField("description", "a film"))
	require.NoError(t, writer.WriteField("director_name", "Villeneuve"))
	require.NoError(t, writer.WriteField("release_date", "2016-11-11"))

	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (f *handlerFixture) do(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func TestCreateFilm(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "Arrival", "poster.png", []byte("fake png"))
	rec, resp := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Arrival", resp["name"])
	assert.Equal(t, f.u1.ID.String(), resp["creator_id"])
	filePath, _ := resp["file_path"].(string)
	assert.True(t, strings.HasSuffix(filePath, ".png"))
	assert.True(t, f.store.Exists(filePath))
}

func TestCreateFilm_RequiresAuth(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "Arrival", "", nil)
	rec, _ := f.do(t, http.MethodPost, "/api/v1/films", "", body, contentType)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateFilm_MissingName(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "", "", nil)
	rec, resp := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields, ok := resp["fields"].([]interface{})
	require.True(t, ok)
	require.Len(t, fields, 1)
	field := fields[0].(map[string]interface{})
	assert.Equal(t, "name", field["field"])
}

func TestCreateFilm_DisallowedExtension(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "Arrival", "poster.bmp", []byte("nope"))
	rec, _ := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFilms_Pagination(t *testing.T) {
	f := newHandlerFixture(t)

	for i := 0; i < 3; i++ {
		body, contentType := filmForm(t, fmt.Sprintf("Film %d", i+1), "", nil)
		rec, _ := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, resp := f.do(t, http.MethodGet, "/api/v1/films?page=1&limit=2", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	films, ok := resp["films"].([]interface{})
	require.True(t, ok)
	assert.Len(t, films, 2)

	pagination := resp["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(2), pagination["limit"])
}

func TestGetFilms_ClampedParamsEchoed(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "Only Film", "", nil)
	rec, _ := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Out-of-range values are clamped, and the envelope reports the
	// values actually applied to the returned slice.
	rec, resp := f.do(t, http.MethodGet, "/api/v1/films?page=0&limit=-1", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	films := resp["films"].([]interface{})
	assert.Len(t, films, 1)

	pagination := resp["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(20), pagination["limit"])
	assert.Equal(t, float64(1), pagination["total"])
}

func TestGetFilm_MalformedID(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/films/not-a-uuid", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFilm_Absent(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/films/7b5df995-3f3f-4f8f-9859-1f8a6a2c2a10", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFilm_ForbiddenForNonCreator(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "Arrival", "", nil)
	rec, resp := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)

	body, contentType = filmForm(t, "Tampered", "", nil)
	rec, _ = f.do(t, http.MethodPut, "/api/v1/films/"+id, f.token2, body, contentType)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = f.do(t, http.MethodGet, "/api/v1/films/"+id, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Arrival", resp["name"])
}

func TestUpdateFilm(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "Arrival", "poster.png", []byte("fake png"))
	rec, resp := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)
	originalPath := resp["file_path"].(string)

	body, contentType = filmForm(t, "Arrival (2016)", "", nil)
	rec, resp = f.do(t, http.MethodPut, "/api/v1/films/"+id, f.token1, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Arrival (2016)", resp["name"])
	assert.Equal(t, originalPath, resp["file_path"])
}

func TestDeleteFilm(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := filmForm(t, "Arrival", "poster.png", []byte("fake png"))
	rec, resp := f.do(t, http.MethodPost, "/api/v1/films", f.token1, body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := resp["id"].(string)
	filePath := resp["file_path"].(string)

	rec, _ = f.do(t, http.MethodDelete, "/api/v1/films/"+id, f.token1, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.store.Exists(filePath))

	rec, _ = f.do(t, http.MethodGet, "/api/v1/films/"+id, "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFilm_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	rec, _ := f.do(t, http.MethodDelete, "/api/v1/films/7b5df995-3f3f-4f8f-9859-1f8a6a2c2a10", f.token1, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProfile(t *testing.T) {
	f := newHandlerFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/api/v1/user/profile", f.token1, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-one", resp["username"])
}
