package models

import "time"

// Property is a candidate rental listing.
type Property struct {
	ID                string  `bson:"id" json:"id"`
	Address           string  `bson:"address" json:"address"`
	PropertyType      string  `bson:"propertyType" json:"property_type"` // Home, Townhome, Apartment
	PricePerMonth     float64 `bson:"pricePerMonth" json:"price_per_month"`
	SquareFootage     float64 `bson:"squareFootage" json:"square_footage"`
	Description       string  `bson:"description,omitempty" json:"description,omitempty"`
	Contacts          string  `bson:"contacts,omitempty" json:"contacts,omitempty"`
	CatFriendly       bool    `bson:"catFriendly" json:"cat_friendly"`
	AirConditioning   bool    `bson:"airConditioning" json:"air_conditioning"`
	OnPremisesParking bool    `bson:"onPremisesParking" json:"on_premises_parking"`

	// Conservative travel time estimates in minutes, one per slot. Nil means
	// no estimate was available at the last calculation.
	TravelTime830AM  *float64 `bson:"travelTime830am,omitempty" json:"travel_time_830am"`
	TravelTime930AM  *float64 `bson:"travelTime930am,omitempty" json:"travel_time_930am"`
	TravelTimeMidday *float64 `bson:"travelTimeMidday,omitempty" json:"travel_time_midday"`
	TravelTime630PM  *float64 `bson:"travelTime630pm,omitempty" json:"travel_time_630pm"`
	TravelTime730PM  *float64 `bson:"travelTime730pm,omitempty" json:"travel_time_730pm"`

	Images []PropertyImage `bson:"images,omitempty" json:"images"`
	Notes  []PropertyNote  `bson:"notes,omitempty" json:"notes"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// TravelTimeField maps a slot to the bson field its conservative estimate is
// stored under.
func TravelTimeField(slot TravelSlot) string {
	switch slot {
	case Slot830AM:
		return "travelTime830am"
	case Slot930AM:
		return "travelTime930am"
	case SlotMidday:
		return "travelTimeMidday"
	case Slot630PM:
		return "travelTime630pm"
	case Slot730PM:
		return "travelTime730pm"
	}
	return ""
}

// PropertyImage is an uploaded listing photo stored with the image provider.
type PropertyImage struct {
	ID       string `bson:"id" json:"id"`
	Filename string `bson:"filename" json:"filename"` // provider public ID
	URL      string `bson:"url" json:"url"`
	IsMain   bool   `bson:"isMain" json:"is_main"`

	// Image metadata captured at upload time.
	Width          int     `bson:"width,omitempty" json:"width,omitempty"`
	Height         int     `bson:"height,omitempty" json:"height,omitempty"`
	Format         string  `bson:"format,omitempty" json:"format,omitempty"`
	SizeKB         float64 `bson:"sizeKb,omitempty" json:"size_kb,omitempty"`
	IsOptimized    bool    `bson:"isOptimized" json:"is_optimized"`
	OriginalFormat string  `bson:"originalFormat,omitempty" json:"original_format,omitempty"`
}

// PropertyNote is a free-text note attached to a listing.
type PropertyNote struct {
	ID        string    `bson:"id" json:"id"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}

// PropertyPatch holds the fields the partial update endpoint may change.
// Nil fields are left untouched.
type PropertyPatch struct {
	TravelTime830AM  *float64 `json:"travel_time_830am"`
	TravelTime930AM  *float64 `json:"travel_time_930am"`
	TravelTimeMidday *float64 `json:"travel_time_midday"`
	TravelTime630PM  *float64 `json:"travel_time_630pm"`
	TravelTime730PM  *float64 `json:"travel_time_730pm"`
	Contacts         *string  `json:"contacts"`
}
