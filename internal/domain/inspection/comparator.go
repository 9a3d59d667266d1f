package inspection

// Report is the delta between a booking's check-in and check-out records.
// Damages and missing items are the check-out record's full lists, not a diff
// against check-in.
type Report struct {
	MileageDifference int64        `json:"mileage_difference"`
	FuelDifference    int          `json:"fuel_difference"`
	CleanlinessDelta  int          `json:"cleanliness_delta"`
	Damages           []DamageItem `json:"damages"`
	MissingItems      []string     `json:"missing_items"`
}

// Compare derives the delta report between the check-in and check-out records
// of a booking. If either record is missing the comparison is undefined and a
// zero report is returned; this never errors.
func Compare(checkIn, checkOut *Record) Report {
	if checkIn == nil || checkOut == nil {
		return Report{Damages: []DamageItem{}, MissingItems: []string{}}
	}

	damages := checkOut.Damages()
	if damages == nil {
		damages = []DamageItem{}
	}
	missing := checkOut.MissingItems()
	if missing == nil {
		missing = []string{}
	}

	return Report{
		MileageDifference: checkOut.OdometerKm() - checkIn.OdometerKm(),
		FuelDifference:    checkOut.FuelPercent() - checkIn.FuelPercent(),
		CleanlinessDelta:  checkOut.Cleanliness() - checkIn.Cleanliness(),
		Damages:           damages,
		MissingItems:      missing,
	}
}
