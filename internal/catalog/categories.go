package catalog

import "strings"

// Category is a placement area a student can apply under. A category with
// subcategories requires the applicant to pick one.
type Category struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories,omitempty"`
}

var categories = []Category{
	{ID: "media", Name: "Media"},
	{ID: "public-relations", Name: "Public Relations"},
	{ID: "film-production", Name: "Film Production"},
	{ID: "graphic-design", Name: "Graphic and Design"},
	{ID: "animation-video-editing", Name: "Animation and Video Editing"},
	{ID: "scripting", Name: "Scripting"},
	{ID: "photography", Name: "Photography"},
	{
		ID:   "computer-science",
		Name: "Computer Science / Information Technology",
		Subcategories: []string{
			"General",
			"Cybersecurity",
			"Mobile Development (Android)",
			"Mobile Development (iOS)",
			"Web Development",
			"Web Design",
			"Networking",
			"Graphic Design",
		},
	},
}

func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func Find(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// HasSubcategories reports whether the category exists and requires a
// subcategory selection.
func HasSubcategories(id string) bool {
	c, ok := Find(id)
	return ok && len(c.Subcategories) > 0
}

func ValidSubcategory(categoryID, sub string) bool {
	c, ok := Find(categoryID)
	if !ok {
		return false
	}
	for _, s := range c.Subcategories {
		if strings.EqualFold(s, sub) {
			return true
		}
	}
	return false
}
