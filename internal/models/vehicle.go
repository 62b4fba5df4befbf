// Package models defines the data structures for the vehicle match engine.
package models

import (
	"regexp"
	"strconv"
	"strings"
)

// BodyType is the normalized vehicle body style.
type BodyType string

const (
	BodyTypeSedan     BodyType = "Sedan"
	BodyTypeSUV       BodyType = "SUV"
	BodyTypeTruck     BodyType = "Truck"
	BodyTypeMinivan   BodyType = "Minivan"
	BodyTypeCoupe     BodyType = "Coupe"
	BodyTypeHatchback BodyType = "Hatchback"
	BodyTypeVan       BodyType = "Van"
)

// FuelType is the normalized powertrain family.
type FuelType string

const (
	FuelTypeGas          FuelType = "Gas"
	FuelTypeHybrid       FuelType = "Hybrid"
	FuelTypePlugInHybrid FuelType = "Plug-in Hybrid"
	FuelTypeEV           FuelType = "EV"
)

// Drivetrain is the normalized drive layout.
type Drivetrain string

const (
	DrivetrainFWD Drivetrain = "FWD"
	DrivetrainRWD Drivetrain = "RWD"
	DrivetrainAWD Drivetrain = "AWD"
	Drivetrain4WD Drivetrain = "4WD"
)

// DefaultSeats is assumed when a catalog record does not state seating capacity.
const DefaultSeats = 5

// Package is an optional equipment package offered on a trim.
type Package struct {
	Name     string   `json:"name"`
	Contents []string `json:"contents,omitempty"`
}

// AudioMultimedia describes the infotainment system of a trim.
type AudioMultimedia struct {
	Display    string   `json:"display,omitempty"`
	SystemName string   `json:"system_name,omitempty"`
	Features   []string `json:"features,omitempty"`
}

// Vehicle is one purchasable configuration (model + trim + year) after normalization.
type Vehicle struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Trim       string     `json:"trim"`
	Year       int        `json:"year"`
	Price      int        `json:"price"`
	BodyType   BodyType   `json:"bodyType"`
	FuelType   FuelType   `json:"fuelType"`
	Drivetrain Drivetrain `json:"drivetrain"`
	Features   []string   `json:"features"`

	MPG        string  `json:"mpg,omitempty"`
	MPGCity    float64 `json:"mpgCity,omitempty"`
	MPGHighway float64 `json:"mpgHighway,omitempty"`
	Seats      int     `json:"seats,omitempty"`
	CargoSpace string  `json:"cargoSpace,omitempty"`
	Image      string  `json:"image,omitempty"`

	ElectricRange     string           `json:"electricRange,omitempty"`
	KeyFeatures       []string         `json:"keyFeatures,omitempty"`
	Colors            []string         `json:"colors,omitempty"`
	Horsepower        int              `json:"horsepower,omitempty"`
	Engine            string           `json:"engine,omitempty"`
	Transmission      string           `json:"transmission,omitempty"`
	SafetyFeatures    []string         `json:"safetyFeatures,omitempty"`
	ExteriorFeatures  []string         `json:"exteriorFeatures,omitempty"`
	InteriorFeatures  []string         `json:"interiorFeatures,omitempty"`
	AudioMultimedia   *AudioMultimedia `json:"audioMultimedia,omitempty"`
	Packages          []Package        `json:"packages,omitempty"`
	ConnectedServices []string         `json:"connectedServices,omitempty"`
}

var firstNumber = regexp.MustCompile(`\d+\.?\d*`)

// SeatCount returns the stated seating capacity or DefaultSeats.
func (v *Vehicle) SeatCount() int {
	if v.Seats > 0 {
		return v.Seats
	}
	return DefaultSeats
}

// HasMPG reports whether both city and highway ratings are present.
func (v *Vehicle) HasMPG() bool {
	return v.MPGCity > 0 && v.MPGHighway > 0
}

// IsElectrified reports whether the vehicle is a hybrid, plug-in hybrid or EV.
func (v *Vehicle) IsElectrified() bool {
	switch v.FuelType {
	case FuelTypeHybrid, FuelTypePlugInHybrid, FuelTypeEV:
		return true
	}
	return false
}

// HasAllWheelTraction reports AWD or 4WD.
func (v *Vehicle) HasAllWheelTraction() bool {
	return v.Drivetrain == DrivetrainAWD || v.Drivetrain == Drivetrain4WD
}

// CargoCubicFeet extracts the first number from the cargo space description.
func (v *Vehicle) CargoCubicFeet() (float64, bool) {
	match := firstNumber.FindString(v.CargoSpace)
	if match == "" {
		return 0, false
	}
	cargo, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return cargo, true
}

// DedupKey identifies the same configuration across catalog sources.
func (v *Vehicle) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(v.Name)) + "|" +
		strings.ToLower(strings.TrimSpace(v.Trim)) + "|" +
		strconv.Itoa(v.Year)
}

// Richness counts how much detail a record carries. Used to pick between duplicates.
func (v *Vehicle) Richness() int {
	n := len(v.Features) + len(v.SafetyFeatures) + len(v.ExteriorFeatures) +
		len(v.InteriorFeatures) + len(v.Packages) + len(v.KeyFeatures) + len(v.ConnectedServices)
	for _, present := range []bool{
		v.MPGCity > 0, v.MPGHighway > 0, v.Seats > 0, v.CargoSpace != "",
		v.Horsepower > 0, v.Engine != "", v.Transmission != "", v.ElectricRange != "",
		v.AudioMultimedia != nil, v.Image != "",
	} {
		if present {
			n++
		}
	}
	return n
}

// NormalizeBodyType maps free-text body descriptions onto BodyType, defaulting to Sedan.
func NormalizeBodyType(raw string) BodyType {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "hatchback"):
		return BodyTypeHatchback
	case strings.Contains(s, "sedan"):
		return BodyTypeSedan
	case strings.Contains(s, "suv"), strings.Contains(s, "crossover"):
		return BodyTypeSUV
	case strings.Contains(s, "truck"), strings.Contains(s, "pickup"):
		return BodyTypeTruck
	case strings.Contains(s, "van"):
		return BodyTypeMinivan
	case strings.Contains(s, "coupe"):
		return BodyTypeCoupe
	}
	return BodyTypeSedan
}

// NormalizeFuelType maps free-text powertrain descriptions onto FuelType, defaulting to Gas.
func NormalizeFuelType(raw string) FuelType {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "plug-in"), strings.Contains(s, "plug in"), strings.Contains(s, "phev"):
		return FuelTypePlugInHybrid
	case strings.Contains(s, "hybrid"):
		return FuelTypeHybrid
	case strings.Contains(s, "electric"), s == "ev", s == "bev":
		return FuelTypeEV
	}
	return FuelTypeGas
}

// NormalizeDrivetrain maps free-text drive descriptions onto Drivetrain, defaulting to FWD.
func NormalizeDrivetrain(raw string) Drivetrain {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "4wd"), strings.Contains(s, "4-wheel"), strings.Contains(s, "4x4"):
		return Drivetrain4WD
	case strings.Contains(s, "awd"), strings.Contains(s, "all-wheel"), strings.Contains(s, "all wheel"):
		return DrivetrainAWD
	case strings.Contains(s, "rwd"), strings.Contains(s, "rear-wheel"):
		return DrivetrainRWD
	}
	return DrivetrainFWD
}
