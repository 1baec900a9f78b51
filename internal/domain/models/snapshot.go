package models

import "time"

// ProcurementSnapshot is the nightly one-day procurement summary archived by
// the scheduler.
type ProcurementSnapshot struct {
	Date         string    `bson:"date" json:"date"`
	Entries      int       `bson:"entries" json:"entries"`
	QtyKg        float64   `bson:"qty_kg" json:"qtyKg"`
	FatKg        float64   `bson:"fat_kg" json:"fatKg"`
	SNFKg        float64   `bson:"snf_kg" json:"snfKg"`
	AvgFat       float64   `bson:"avg_fat" json:"avgFat"`
	AvgSNF       float64   `bson:"avg_snf" json:"avgSnf"`
	MilkValue    float64   `bson:"milk_value" json:"milkValue"`
	GrossPayment float64   `bson:"gross_payment" json:"grossPayment"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}
