package accordion

import (
	"time"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// sampleTree is the starter content: two top-level folders with a few
// children, one level nested under Citrus.
var sampleTree = []struct {
	title    string
	children []string
}{
	{"Fruit", []string{"Apple", "Banana", "Citrus"}},
	{"Citrus", []string{"Orange", "Lemon"}},
	{"Vegetables", []string{"Carrot", "Lettuce"}},
}

// sampleRecords builds the sample folders with fresh ids and consecutive
// manual orders in display order.
func (m *Model) sampleRecords() []model.Node {
	now := m.now()
	ids := make(map[string]string)
	var out []model.Node
	add := func(title, parent string) {
		// Creation times follow display order so every sort starts stable.
		at := now.Add(time.Duration(len(out)) * time.Millisecond)
		id := m.newID()
		ids[title] = id
		out = append(out, model.Node{
			ID:         id,
			Title:      title,
			Order:      len(out),
			CreatedAt:  at,
			ModifiedAt: at,
			ParentID:   ids[parent],
		})
	}
	var walk func(title, parent string)
	walk = func(title, parent string) {
		add(title, parent)
		for _, group := range sampleTree {
			if group.title != title {
				continue
			}
			for _, child := range group.children {
				walk(child, title)
			}
		}
	}
	walk("Fruit", "")
	walk("Vegetables", "")
	return out
}
