package inspection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testRecord(eventType EventType, odometerKm int64, fuelPercent, cleanliness int,
	damages []DamageItem, missing []string) *Record {
	return Reconstruct(
		uuid.New(), uuid.New(), uuid.New(), eventType,
		nil, Checklist{},
		fuelPercent, odometerKm,
		damages, missing,
		cleanliness, "", "",
		time.Now().UTC(),
	)
}

func TestCompare(t *testing.T) {
	checkIn := testRecord(EventCheckIn, 42000, 80, 5, nil, nil)
	checkOut := testRecord(EventCheckOut, 42350, 55, 3,
		[]DamageItem{{Location: "front bumper", Description: "scratch", Severity: SeverityMinor}},
		[]string{"charging cable"},
	)

	report := Compare(checkIn, checkOut)

	assert.Equal(t, int64(350), report.MileageDifference)
	assert.Equal(t, -25, report.FuelDifference)
	assert.Equal(t, -2, report.CleanlinessDelta)
	assert.Equal(t, checkOut.Damages(), report.Damages)
	assert.Equal(t, []string{"charging cable"}, report.MissingItems)
}

func TestCompareReturnsCheckOutListsNotDiff(t *testing.T) {
	// A damage noted at check-in still appears in the report if the check-out
	// record lists it again.
	preexisting := []DamageItem{{Location: "rear door", Description: "dent", Severity: SeverityModerate}}
	checkIn := testRecord(EventCheckIn, 10000, 100, 5, preexisting, nil)
	checkOut := testRecord(EventCheckOut, 10200, 90, 4, preexisting, nil)

	report := Compare(checkIn, checkOut)
	assert.Equal(t, preexisting, report.Damages)
}

func TestCompareMissingRecordYieldsZeroReport(t *testing.T) {
	record := testRecord(EventCheckIn, 42000, 80, 5, nil, nil)

	for _, report := range []Report{
		Compare(nil, record),
		Compare(record, nil),
		Compare(nil, nil),
	} {
		assert.Zero(t, report.MileageDifference)
		assert.Zero(t, report.FuelDifference)
		assert.Zero(t, report.CleanlinessDelta)
		assert.Empty(t, report.Damages)
		assert.NotNil(t, report.Damages, "damages must encode as [] not null")
		assert.NotNil(t, report.MissingItems)
	}
}

func TestCompareNormalizesNilSlices(t *testing.T) {
	checkIn := testRecord(EventCheckIn, 100, 50, 3, nil, nil)
	checkOut := testRecord(EventCheckOut, 100, 50, 3, nil, nil)

	report := Compare(checkIn, checkOut)
	assert.NotNil(t, report.Damages)
	assert.NotNil(t, report.MissingItems)
	assert.Empty(t, report.Damages)
	assert.Empty(t, report.MissingItems)
}
