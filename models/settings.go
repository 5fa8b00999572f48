package models

// Settings is the single global settings record. The origin address is the
// commute origin every property's travel times are estimated against.
type Settings struct {
	ID            string `bson:"id" json:"id"`
	OriginAddress string `bson:"originAddress" json:"origin_address"`
}
