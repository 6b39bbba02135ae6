package budget

import (
	"strings"

	"github.com/warp/budget-rules/generic"
)

// CategoryGroup is a named bucket categories point at by ID. It does not own them.
type CategoryGroup struct {
	ID   generic.GroupID `json:"id"`
	Name string          `json:"name"`
}

func NewCategoryGroup(id generic.GroupID, name string) (CategoryGroup, error) {
	if id < 0 {
		return CategoryGroup{}, generic.NewInvariantError("id", "must be positive, got %d", id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CategoryGroup{}, generic.NewInvariantError("name", "must not be empty")
	}
	return CategoryGroup{ID: id, Name: name}, nil
}
