package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"vehicle-match-engine/internal/models"
)

// modelDocument is a model-year document with one entry per trim.
type modelDocument struct {
	ModelYear           flexNumber        `json:"model_year"`
	Make                string            `json:"make"`
	Model               string            `json:"model"`
	BodyStyle           string            `json:"body_style"`
	FuelType            string            `json:"fuel_type"`
	FuelTypes           []string          `json:"fuel_types"`
	DrivetrainOptions   []string          `json:"drivetrain_options"`
	SeatingCapacity     flexNumber        `json:"seating_capacity"`
	CargoSpace          string            `json:"cargo_space"`
	PerformanceOverview *performanceBlock `json:"performance_overview"`
	Performance         *performanceBlock `json:"performance"`
	ColorOptions        []string          `json:"color_options"`
	Finance             struct {
		StartingMSRP json.RawMessage `json:"starting_msrp_usd"`
	} `json:"finance"`
	Trims []trimRecord `json:"trims"`
}

type mpgPair struct {
	City    flexNumber `json:"mpg_city"`
	Highway flexNumber `json:"mpg_highway"`
}

type performanceBlock struct {
	mpgPair
	GasEngine      *mpgPair `json:"gas_engine"`
	HybridSystem   *mpgPair `json:"hybrid_system"`
	StandardHybrid *struct {
		MPGEstimates struct {
			Combined flexNumber `json:"combined_mpg"`
		} `json:"mpg_estimates"`
	} `json:"standard_hybrid"`
}

type mechanicalPerformance struct {
	Features      []string   `json:"features"`
	Drivetrain    string     `json:"drivetrain"`
	Engine        string     `json:"engine"`
	Transmission  string     `json:"transmission"`
	NetCombinedHP flexNumber `json:"net_combined_hp"`
	MPGEst        *struct {
		City    flexNumber `json:"city"`
		Highway flexNumber `json:"highway"`
	} `json:"mpg_est"`
}

type audioSection struct {
	SystemName string   `json:"system_name"`
	Display    string   `json:"display"`
	Features   []string `json:"features"`
}

type safetySection struct {
	SuiteName    string   `json:"safety_suite_name"`
	ActiveSafety []string `json:"active_safety"`
	DriverAssist []string `json:"driver_assist"`
}

type infotainmentSection struct {
	Display               string   `json:"display"`
	SmartphoneIntegration []string `json:"smartphone_integration"`
}

type trimRecord struct {
	TrimName          string                 `json:"trim_name"`
	PriceUSD          flexNumber             `json:"price_usd"`
	MSRP              flexNumber             `json:"msrp"`
	FuelType          string                 `json:"fuel_type"`
	PowertrainType    string                 `json:"powertrain_type"`
	Drivetrain        string                 `json:"drivetrain"`
	Mechanical        *mechanicalPerformance `json:"mechanical_performance"`
	ExteriorFeatures  []string               `json:"exterior_features"`
	InteriorFeatures  []string               `json:"interior_features"`
	Audio             *audioSection          `json:"audio_multimedia"`
	Safety            *safetySection         `json:"safety_and_driver_assistance"`
	Infotainment      *infotainmentSection   `json:"infotainment_and_tech"`
	SafetyConvenience []string               `json:"safety_convenience_features"`
	Packages          []rawPackage           `json:"options_and_packages"`
	ConnectedServices []string               `json:"connected_services_trials"`
	Comfort           *struct {
		Features []string `json:"features"`
	} `json:"comfort_and_convenience"`
}

func normalizeTrims(data []byte) ([]models.Vehicle, error) {
	var doc modelDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode model document: %w", err)
	}

	basePrice := startingMSRP(doc.Finance.StartingMSRP)
	baseFuel := doc.FuelType
	if baseFuel == "" && len(doc.FuelTypes) > 0 {
		baseFuel = doc.FuelTypes[0]
	}
	var baseDrivetrain string
	if len(doc.DrivetrainOptions) > 0 {
		baseDrivetrain = doc.DrivetrainOptions[0]
	}
	perf := doc.PerformanceOverview
	if perf == nil {
		perf = doc.Performance
	}
	baseCity, baseHighway := perf.mpg()

	name := firstNonEmpty(doc.Model, doc.Make)

	vehicles := make([]models.Vehicle, 0, len(doc.Trims))
	for _, trim := range doc.Trims {
		v := models.Vehicle{
			Name:              name,
			Trim:              trim.TrimName,
			Year:              doc.ModelYear.Int(),
			Price:             trim.price(basePrice),
			BodyType:          models.NormalizeBodyType(doc.BodyStyle),
			FuelType:          trimFuelType(baseFuel, trim),
			Drivetrain:        models.NormalizeDrivetrain(firstNonEmpty(trim.drivetrain(), baseDrivetrain)),
			Seats:             doc.SeatingCapacity.Int(),
			CargoSpace:        firstNonEmpty(doc.CargoSpace, DefaultCargo),
			Features:          trim.features(),
			Image:             imagePath(name, trim.TrimName),
			Colors:            doc.ColorOptions,
			SafetyFeatures:    trim.SafetyConvenience,
			ExteriorFeatures:  trim.ExteriorFeatures,
			InteriorFeatures:  trim.InteriorFeatures,
			ConnectedServices: trim.ConnectedServices,
		}

		city, highway := baseCity, baseHighway
		if m := trim.Mechanical; m != nil {
			if m.MPGEst != nil {
				if c := m.MPGEst.City.Float(); c > 0 {
					city = c
				}
				if h := m.MPGEst.Highway.Float(); h > 0 {
					highway = h
				}
			}
			v.Horsepower = m.NetCombinedHP.Int()
			v.Engine = m.Engine
			v.Transmission = m.Transmission
		}
		v.MPGCity, v.MPGHighway = city, highway

		if a := trim.Audio; a != nil {
			v.AudioMultimedia = &models.AudioMultimedia{
				Display:    a.Display,
				SystemName: a.SystemName,
				Features:   a.Features,
			}
		}
		for _, p := range trim.Packages {
			v.Packages = append(v.Packages, p.toPackage())
		}

		finish(&v)
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// mpg checks the known nested locations in order and returns the first populated rating.
func (p *performanceBlock) mpg() (float64, float64) {
	if p == nil {
		return 0, 0
	}
	if p.City > 0 && p.Highway > 0 {
		return p.City.Float(), p.Highway.Float()
	}
	if p.GasEngine != nil && p.GasEngine.City > 0 {
		return p.GasEngine.City.Float(), p.GasEngine.Highway.Float()
	}
	if p.HybridSystem != nil && p.HybridSystem.City > 0 {
		return p.HybridSystem.City.Float(), p.HybridSystem.Highway.Float()
	}
	if p.StandardHybrid != nil {
		if combined := p.StandardHybrid.MPGEstimates.Combined.Float(); combined > 0 {
			return combined, combined
		}
	}
	return 0, 0
}

// startingMSRP reads a single price or, for per-variant maps, the cheapest variant.
func startingMSRP(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var single flexNumber
	if err := json.Unmarshal(raw, &single); err == nil && single > 0 {
		return single.Int()
	}
	var variants map[string]flexNumber
	if err := json.Unmarshal(raw, &variants); err != nil {
		return 0
	}
	lowest := math.MaxFloat64
	for _, price := range variants {
		if price > 0 && price.Float() < lowest {
			lowest = price.Float()
		}
	}
	if lowest == math.MaxFloat64 {
		return 0
	}
	return int(lowest)
}

func (t trimRecord) price(base int) int {
	if t.MSRP > 0 {
		return t.MSRP.Int()
	}
	if t.PriceUSD > 0 {
		return t.PriceUSD.Int()
	}
	return base
}

func (t trimRecord) drivetrain() string {
	if t.Mechanical != nil && t.Mechanical.Drivetrain != "" {
		return t.Mechanical.Drivetrain
	}
	return t.Drivetrain
}

// trimFuelType lets a trim override the model's fuel type only when its hint names one.
func trimFuelType(base string, t trimRecord) models.FuelType {
	hint := t.FuelType
	if hint == "" {
		if t.Mechanical != nil {
			hint = t.Mechanical.Drivetrain
		} else {
			hint = t.PowertrainType
		}
	}
	if namesFuel(hint) {
		return models.NormalizeFuelType(hint)
	}
	return models.NormalizeFuelType(base)
}

func namesFuel(hint string) bool {
	lower := strings.ToLower(strings.TrimSpace(hint))
	if lower == "ev" || lower == "bev" {
		return true
	}
	for _, word := range []string{"hybrid", "plug-in", "plug in", "phev", "electric", "gas", "petrol"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// features aggregates every feature section of a trim, newer layouts first.
func (t trimRecord) features() []string {
	var out []string
	if t.Mechanical != nil {
		out = append(out, t.Mechanical.Features...)
	}
	out = append(out, t.ExteriorFeatures...)
	out = append(out, t.InteriorFeatures...)
	if a := t.Audio; a != nil {
		out = append(out, a.Features...)
		out = append(out, a.SystemName, a.Display)
	}
	if s := t.Safety; s != nil {
		out = append(out, s.SuiteName)
		out = append(out, s.ActiveSafety...)
		out = append(out, s.DriverAssist...)
	}
	if i := t.Infotainment; i != nil {
		out = append(out, i.Display)
		out = append(out, i.SmartphoneIntegration...)
	}
	if t.Comfort != nil {
		out = append(out, t.Comfort.Features...)
	}
	return dedupeStrings(out)
}

func imagePath(model, trim string) string {
	slug := func(s string) string {
		s = strings.ToLower(s)
		s = strings.Join(strings.Fields(s), "")
		return strings.ReplaceAll(s, "/", "")
	}
	return "/CarImages/" + slug(model) + "_" + slug(trim) + ".png"
}
