package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vehicle-match-engine/internal/models"
)

func TestNormalizeBodyType(t *testing.T) {
	tests := []struct {
		input    string
		expected models.BodyType
	}{
		{"Compact SUV", models.BodyTypeSUV},
		{"crossover", models.BodyTypeSUV},
		{"Sedan", models.BodyTypeSedan},
		{"5-door Hatchback", models.BodyTypeHatchback},
		{"Pickup", models.BodyTypeTruck},
		{"Minivan", models.BodyTypeMinivan},
		{"Sports Coupe", models.BodyTypeCoupe},
		{"", models.BodyTypeSedan},
		{"spaceship", models.BodyTypeSedan},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.NormalizeBodyType(tt.input))
		})
	}
}

func TestNormalizeFuelType(t *testing.T) {
	tests := []struct {
		input    string
		expected models.FuelType
	}{
		{"Plug-in Hybrid", models.FuelTypePlugInHybrid},
		{"PHEV", models.FuelTypePlugInHybrid},
		{"Hybrid", models.FuelTypeHybrid},
		{"Battery Electric", models.FuelTypeEV},
		{"EV", models.FuelTypeEV},
		{"Gasoline", models.FuelTypeGas},
		{"", models.FuelTypeGas},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.NormalizeFuelType(tt.input))
		})
	}
}

func TestNormalizeDrivetrain(t *testing.T) {
	assert.Equal(t, models.DrivetrainAWD, models.NormalizeDrivetrain("Electronic On-Demand AWD"))
	assert.Equal(t, models.Drivetrain4WD, models.NormalizeDrivetrain("4x4"))
	assert.Equal(t, models.DrivetrainRWD, models.NormalizeDrivetrain("Rear-Wheel Drive"))
	assert.Equal(t, models.DrivetrainFWD, models.NormalizeDrivetrain(""))
}

func TestVehicleHelpers(t *testing.T) {
	v := models.Vehicle{
		Name: " RAV4 ", Trim: "XLE", Year: 2025,
		FuelType: models.FuelTypeHybrid, Drivetrain: models.DrivetrainAWD,
		CargoSpace: "37.5 cu ft behind 2nd row", MPGCity: 41,
	}

	assert.Equal(t, models.DefaultSeats, v.SeatCount())
	assert.False(t, v.HasMPG())
	assert.True(t, v.IsElectrified())
	assert.True(t, v.HasAllWheelTraction())
	assert.Equal(t, "rav4|xle|2025", v.DedupKey())

	cargo, ok := v.CargoCubicFeet()
	assert.True(t, ok)
	assert.Equal(t, 37.5, cargo)

	_, ok = (&models.Vehicle{}).CargoCubicFeet()
	assert.False(t, ok)

	richer := v
	richer.Features = []string{"Sunroof"}
	richer.Engine = "2.5L"
	assert.Greater(t, richer.Richness(), v.Richness())
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile models.UserProfile
		err     error
	}{
		{"minimal", models.UserProfile{UserID: "u1"}, nil},
		{"missing id", models.UserProfile{UserID: "  "}, models.ErrEmptyUserID},
		{"bad email", models.UserProfile{UserID: "u1", Email: "a@b"}, models.ErrInvalidEmail},
		{"bad term", models.UserProfile{UserID: "u1", LoanTermPreference: "84"}, models.ErrInvalidLoanTerm},
		{"bad income", models.UserProfile{UserID: "u1", AnnualIncome: "lots"}, models.ErrInvalidIncome},
		{"complete", models.UserProfile{
			UserID: "u1", Email: "ana@example.com", LoanTermPreference: "60", AnnualIncome: "75k_100k",
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := models.ValidateProfile(&tt.profile)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestNormalizeProfile(t *testing.T) {
	p := models.UserProfile{UserID: " u1 ", Name: " Ana ", Priority: " Safety ", FuelPreference: "EV"}
	models.NormalizeProfile(&p)

	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "safety", p.Priority)
	assert.Equal(t, "ev", p.FuelPreference)
}

func TestProfileMerge(t *testing.T) {
	base := models.UserProfile{UserID: "u1", Name: "Ana", AnnualIncome: "50k_75k", SelectedFeatures: []string{"Sunroof"}}
	overlay := &models.UserProfile{AnnualIncome: "75k_100k", Weather: "snow"}

	merged := base.Merge(overlay)
	assert.Equal(t, "Ana", merged.Name)
	assert.Equal(t, "75k_100k", merged.AnnualIncome)
	assert.Equal(t, "snow", merged.Weather)
	assert.Equal(t, []string{"Sunroof"}, merged.SelectedFeatures)
	assert.Equal(t, "50k_75k", base.AnnualIncome, "merge does not modify the receiver")

	assert.Equal(t, base, base.Merge(nil))
}

func TestProfileRecordFieldsAndEmptiness(t *testing.T) {
	p := models.UserProfile{UserID: "u1", Email: "ana@example.com", Weather: "snow"}

	record := p.RecordFields()
	assert.Equal(t, "ana@example.com", record.Email)
	assert.Empty(t, record.Weather)

	assert.False(t, p.IsEmpty())
	assert.True(t, (&models.UserProfile{UserID: "u1"}).IsEmpty())
}

func TestDesiredFeatures(t *testing.T) {
	p := models.UserProfile{
		SelectedFeatures: []string{"Sunroof", "Apple CarPlay", ""},
		MustHaveFeatures: []string{"apple carplay ", "Heated seats"},
	}
	assert.Equal(t, []string{"Sunroof", "Apple CarPlay", "Heated seats"}, p.DesiredFeatures())
}

func TestIncomeBand(t *testing.T) {
	assert.Equal(t, "under_30k", models.IncomeBand(12000))
	assert.Equal(t, "30k_50k", models.IncomeBand(30000))
	assert.Equal(t, "75k_100k", models.IncomeBand(99999))
	assert.Equal(t, "over_150k", models.IncomeBand(150000))
}
