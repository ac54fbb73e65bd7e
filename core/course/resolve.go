package course

const (
	UnknownName  = "Unknown Course"
	UnknownColor = "#6b7280"
)

// Display is what views need to render a course reference.
type Display struct {
	ID    int    `json:"Id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Resolve looks up `id` in `courses`. Dangling references resolve to the "Unknown Course" sentinel.
func Resolve(id int, courses []Course) Display {
	for _, c := range courses {
		if c.ID == id {
			return Display{ID: c.ID, Name: c.Name, Color: c.Color}
		}
	}
	return Display{ID: id, Name: UnknownName, Color: UnknownColor}
}

// Find returns the course `id` from `courses`.
func Find(id int, courses []Course) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}
