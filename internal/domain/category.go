package domain

// Category is a question catalog the player can play or unlock.
type Category string

const (
	CategoryAnimals   Category = "animals"
	CategoryMovies    Category = "movies"
	CategoryFood      Category = "food"
	CategorySports    Category = "sports"
	CategorySongs     Category = "songs"
	CategoryCountries Category = "countries"
)

// DefaultCategory is playable without an unlock.
const DefaultCategory = CategoryAnimals

type categoryInfo struct {
	price int
	emoji string
}

var categoryTable = map[Category]categoryInfo{
	CategoryAnimals:   {price: 0, emoji: "🐼"},
	CategoryMovies:    {price: 500, emoji: "🎬"},
	CategoryFood:      {price: 500, emoji: "🍕"},
	CategorySports:    {price: 750, emoji: "⚽"},
	CategorySongs:     {price: 1000, emoji: "🎵"},
	CategoryCountries: {price: 1000, emoji: "🌍"},
}

// ParseCategory maps a catalog name to its Category.
func ParseCategory(name string) (Category, error) {
	c := Category(name)
	if _, ok := categoryTable[c]; !ok {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// Price is the points cost to unlock the category.
func (c Category) Price() int {
	return categoryTable[c].price
}

// Emoji is the category's icon.
func (c Category) Emoji() string {
	return categoryTable[c].emoji
}

// Categories lists the full catalog in a stable order.
func Categories() []Category {
	return []Category{
		CategoryAnimals,
		CategoryMovies,
		CategoryFood,
		CategorySports,
		CategorySongs,
		CategoryCountries,
	}
}
