package model

// Category is one of the fixed report categories accepted by the municipality.
type Category string

const (
	CategoryWaterSupply      Category = "Water Supply – Drinking Water"
	CategoryBarriers         Category = "Architectural Barriers"
	CategorySewerSystem      Category = "Sewer System"
	CategoryPublicLighting   Category = "Public Lighting"
	CategoryWaste            Category = "Waste"
	CategoryRoadSigns        Category = "Road Signs and Traffic Lights"
	CategoryRoadsFurnishings Category = "Roads and Urban Furnishings"
	CategoryGreenAreas       Category = "Public Green Areas and Playgrounds"
	CategoryOther            Category = "Other"
)

// Categories is ordered; a category's position is the index carried by the
// category buttons.
var Categories = []Category{
	CategoryWaterSupply,
	CategoryBarriers,
	CategorySewerSystem,
	CategoryPublicLighting,
	CategoryWaste,
	CategoryRoadSigns,
	CategoryRoadsFurnishings,
	CategoryGreenAreas,
	CategoryOther,
}

// CategoryByIndex returns the category at index i.
func CategoryByIndex(i int) (Category, bool) {
	if i < 0 || i >= len(Categories) {
		return "", false
	}
	return Categories[i], true
}

func (c Category) String() string {
	return string(c)
}
