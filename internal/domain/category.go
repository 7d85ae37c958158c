package domain

import "strings"

// CategoryKind is the closed set of expense categories the service knows about.
type CategoryKind int

const (
	CategoryOther CategoryKind = iota
	CategoryFood
	CategoryTransportation
	CategoryEducation
	CategoryEntertainment
	CategoryUtilities
	CategoryIncome
)

var categoryLabels = map[CategoryKind]struct {
	label string
	emoji string
}{
	CategoryOther:          {"Other", "📦"},
	CategoryFood:           {"Food", "🍔"},
	CategoryTransportation: {"Transportation", "🚌"},
	CategoryEducation:      {"Education", "📚"},
	CategoryEntertainment:  {"Entertainment", "🎮"},
	CategoryUtilities:      {"Utilities", "💡"},
	CategoryIncome:         {"Income", "💰"},
}

// Label returns the display name of the kind. Unknown kinds render as Other.
func (k CategoryKind) Label() string {
	if v, ok := categoryLabels[k]; ok {
		return v.label
	}
	return categoryLabels[CategoryOther].label
}

// Emoji returns the icon shown next to the category on dashboards.
func (k CategoryKind) Emoji() string {
	if v, ok := categoryLabels[k]; ok {
		return v.emoji
	}
	return categoryLabels[CategoryOther].emoji
}

// Slug is the stable identifier used for seeded category rows.
func (k CategoryKind) Slug() string {
	return strings.ToLower(k.Label())
}

func (k CategoryKind) String() string {
	return k.Label()
}

// KindOf maps a category name onto its kind by exact match.
// Anything that is not a known label is Other.
func KindOf(name string) CategoryKind {
	name = strings.TrimSpace(name)
	for kind, v := range categoryLabels {
		if v.label == name {
			return kind
		}
	}
	return CategoryOther
}

// DefaultCategoryKinds lists the kinds seeded into a fresh record store.
func DefaultCategoryKinds() []CategoryKind {
	return []CategoryKind{
		CategoryFood,
		CategoryTransportation,
		CategoryEducation,
		CategoryEntertainment,
		CategoryUtilities,
		CategoryOther,
		CategoryIncome,
	}
}

// ClassifiableKinds lists the labels offered to the text service when it is
// asked to categorize a transaction.
func ClassifiableKinds() []CategoryKind {
	return []CategoryKind{
		CategoryFood,
		CategoryTransportation,
		CategoryEducation,
		CategoryEntertainment,
		CategoryUtilities,
	}
}

// Category is a persisted classification bucket.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Kind returns the enumeration value for the category name.
func (c Category) Kind() CategoryKind {
	return KindOf(c.Name)
}

// DefaultCategories builds the seed rows for DefaultCategoryKinds.
func DefaultCategories() []Category {
	kinds := DefaultCategoryKinds()
	out := make([]Category, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, Category{ID: k.Slug(), Name: k.Label()})
	}
	return out
}
