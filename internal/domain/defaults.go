package domain

import (
	"errors"
	"fmt"
	"time"
)

// Defaults enumerates every placeholder value the pipeline writes where
// staging has no data. Nothing else in the pipeline invents values.
type Defaults struct {
	// MineType is written to dim_mine.type; the registry has no mine type.
	MineType string
	// MineLocation is used when a registry entry has no location.
	MineLocation string
	// MineOpenedDate is written to dim_mine.opened_date; the registry has no
	// opening date.
	MineOpenedDate time.Time

	// EquipmentType is written to dim_equipment.equipment_type; sensors report
	// only an ID.
	EquipmentType string
	// EquipmentLastMaintenance is written to dim_equipment.last_maintenance_date.
	EquipmentLastMaintenance time.Time
	// EquipmentMineID is the mine_id on fact_equipment_metrics; sensors carry no
	// mine reference. BuildMineDimension adds a dim_mine row for it when the
	// registry has none.
	EquipmentMineID string

	// Location is the dim_location row used when the climate source returned no
	// site metadata. Its LocationID and Location name are also used when it did.
	Location LocationDimensionRow

	// MissingColumnFill is written for any schema column a row does not supply,
	// such as climate fields on days without a climate record.
	MissingColumnFill float64
}

// StandardDefaults returns the defaults for the single deployment site at
// Berau, East Kalimantan.
func StandardDefaults() Defaults {
	return Defaults{
		MineType:                 "unknown",
		MineLocation:             "unknown",
		MineOpenedDate:           time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC),
		EquipmentType:            "unknown",
		EquipmentLastMaintenance: time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC),
		EquipmentMineID:          "UNASSIGNED",
		Location: LocationDimensionRow{
			LocationID:       1,
			Location:         "Berau",
			Latitude:         2.0167,
			Longitude:        117.3,
			Elevation:        0,
			Timezone:         "Asia/Jakarta",
			UTCOffsetSeconds: 7 * 60 * 60,
		},
		MissingColumnFill: 0.0,
	}
}

// Validate checks that every placeholder is usable as a warehouse value.
func (d Defaults) Validate() error {
	var errs []error
	if d.MineType == "" {
		errs = append(errs, errors.New("mine type default is empty"))
	}
	if d.MineLocation == "" {
		errs = append(errs, errors.New("mine location default is empty"))
	}
	if d.MineOpenedDate.IsZero() {
		errs = append(errs, errors.New("mine opened date default is unset"))
	}
	if d.EquipmentType == "" {
		errs = append(errs, errors.New("equipment type default is empty"))
	}
	if d.EquipmentLastMaintenance.IsZero() {
		errs = append(errs, errors.New("equipment last maintenance default is unset"))
	}
	if d.EquipmentMineID == "" {
		errs = append(errs, errors.New("equipment mine_id default is empty"))
	}
	if d.Location.LocationID <= 0 {
		errs = append(errs, fmt.Errorf("location_id must be positive, got %d", d.Location.LocationID))
	}
	if d.Location.Location == "" {
		errs = append(errs, errors.New("location name default is empty"))
	}
	if d.Location.Latitude < -90 || d.Location.Latitude > 90 {
		errs = append(errs, fmt.Errorf("fallback latitude %g out of range", d.Location.Latitude))
	}
	if d.Location.Longitude < -180 || d.Location.Longitude > 180 {
		errs = append(errs, fmt.Errorf("fallback longitude %g out of range", d.Location.Longitude))
	}
	if d.Location.Timezone == "" {
		errs = append(errs, errors.New("fallback timezone is empty"))
	}
	return errors.Join(errs...)
}
