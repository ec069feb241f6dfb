package services

import (
	"testing"

	"github.com/filmscatalog/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanEdit(t *testing.T) {
	creator := &models.User{ID: uuid.New()}
	other := &models.User{ID: uuid.New()}
	film := &models.Film{ID: uuid.New(), CreatorID: creator.ID}

	assert.True(t, CanEdit(film, creator))
	assert.False(t, CanEdit(film, other))
	assert.False(t, CanEdit(film, nil))
	assert.False(t, CanEdit(nil, creator))
}
