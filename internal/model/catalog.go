package model

// Tag is reference data attached to recipes. Name and slug are both unique;
// tags are created by administrators, not through the public API.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Ingredient is reference data. The (name, measurement_unit) pair is unique:
// "sugar (g)" and "sugar (tbsp)" are distinct rows.
type Ingredient struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}
