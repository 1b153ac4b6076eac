// Package todolist holds the client-side todo logic: the live list kept
// in sync with the store, the add/edit form state, the session binding
// that ties both to the signed-in user, and the login and sign-up flows.
package todolist

import (
	"slices"

	"github.com/ytakahashi/todo-sync/internal/models"
)

// SortForDisplay returns a copy of todos ordered by ascending dateAdded.
// Equal timestamps keep their input order.
func SortForDisplay(todos []models.Todo) []models.Todo {
	sorted := slices.Clone(todos)
	slices.SortStableFunc(sorted, func(a, b models.Todo) int {
		return a.AddedAt().Compare(b.AddedAt())
	})
	return sorted
}

// ResolveIndex maps a display index to the record's ID.
func ResolveIndex(display []models.Todo, i int) (string, bool) {
	if i < 0 || i >= len(display) {
		return "", false
	}
	return display[i].ID, true
}
