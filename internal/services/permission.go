package services

import "github.com/filmscatalog/backend/internal/models"

// CanEdit reports whether user may mutate or delete the film: only the
// authenticated creator may. Listing and detail have no such gate.
func CanEdit(film *models.Film, user *models.User) bool {
	if film == nil || user == nil {
		return false
	}
	return user.ID == film.CreatorID
}
