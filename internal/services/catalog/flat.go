package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"vehicle-match-engine/internal/models"
)

const flatRecordSchema = `{
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id":               {"type": ["integer", "string"]},
    "name":             {"type": "string", "minLength": 1},
    "trim":             {"type": ["string", "null"]},
    "year":             {"type": ["number", "string", "null"]},
    "price":            {"type": ["number", "string", "null"]},
    "bodyType":         {"type": ["string", "null"]},
    "fuelType":         {"type": ["string", "null"]},
    "drivetrain":       {"type": ["string", "null"]},
    "mpg":              {"type": ["string", "number", "null"]},
    "mpgCity":          {"type": ["number", "string", "null"]},
    "mpgHighway":       {"type": ["number", "string", "null"]},
    "seats":            {"type": ["number", "string", "null"]},
    "horsepower":       {"type": ["number", "string", "null"]},
    "features":         {"type": ["array", "null"], "items": {"type": "string"}},
    "keyFeatures":      {"type": ["array", "null"], "items": {"type": "string"}},
    "colors":           {"type": ["array", "null"], "items": {"type": "string"}},
    "safetyFeatures":   {"type": ["array", "null"], "items": {"type": "string"}},
    "exteriorFeatures": {"type": ["array", "null"], "items": {"type": "string"}},
    "interiorFeatures": {"type": ["array", "null"], "items": {"type": "string"}},
    "packages":         {"type": ["array", "null"], "items": {"type": "object"}}
  }
}`

var (
	firstInt    = regexp.MustCompile(`\d+`)
	mpgNumbers  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	hpKeywords  = []string{"hp", "horsepower"}
	engineWords = []string{"liter", "cylinder", "engine", "turbocharged", "i-force"}
	transWords  = []string{"transmission", "automatic", "manual", "cvt"}
	safetyWords = []string{"safety", "sense", "assist", "airbag"}
)

// flatRecord is a pre-normalized vehicle as found in flat catalog arrays.
type flatRecord struct {
	Name              string                  `json:"name"`
	Trim              string                  `json:"trim"`
	Year              flexNumber              `json:"year"`
	Price             flexNumber              `json:"price"`
	BodyType          string                  `json:"bodyType"`
	FuelType          string                  `json:"fuelType"`
	Drivetrain        string                  `json:"drivetrain"`
	MPG               json.RawMessage         `json:"mpg"`
	MPGCity           flexNumber              `json:"mpgCity"`
	MPGHighway        flexNumber              `json:"mpgHighway"`
	Seats             flexNumber              `json:"seats"`
	CargoSpace        string                  `json:"cargoSpace"`
	Image             string                  `json:"image"`
	ElectricRange     string                  `json:"electricRange"`
	Features          []string                `json:"features"`
	KeyFeatures       []string                `json:"keyFeatures"`
	Colors            []string                `json:"colors"`
	Horsepower        flexNumber              `json:"horsepower"`
	Engine            string                  `json:"engine"`
	Transmission      string                  `json:"transmission"`
	SafetyFeatures    []string                `json:"safetyFeatures"`
	ExteriorFeatures  []string                `json:"exteriorFeatures"`
	InteriorFeatures  []string                `json:"interiorFeatures"`
	AudioMultimedia   *models.AudioMultimedia `json:"audioMultimedia"`
	Packages          []rawPackage            `json:"packages"`
	ConnectedServices []string                `json:"connectedServices"`
}

// rawPackage accepts the package spellings seen across catalog generations.
type rawPackage struct {
	Name        string   `json:"name"`
	PackageName string   `json:"packageName"`
	SnakeName   string   `json:"package_name"`
	Contents    []string `json:"contents"`
	Features    []string `json:"features"`
}

func (p rawPackage) toPackage() models.Package {
	name := firstNonEmpty(p.PackageName, p.SnakeName, p.Name, "Package")
	contents := p.Contents
	if len(contents) == 0 {
		contents = p.Features
	}
	return models.Package{Name: name, Contents: contents}
}

func (n *Normalizer) normalizeFlat(doc Document) ([]models.Vehicle, []error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(doc.Data, &raws); err != nil {
		return nil, []error{fmt.Errorf("%s: %w", doc.Name, err)}
	}

	var errs []error
	vehicles := make([]models.Vehicle, 0, len(raws))
	for i, raw := range raws {
		if err := n.validateFlat(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", doc.Name, i, err))
			continue
		}

		var rec flatRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w: %v", doc.Name, i, ErrInvalidRecord, err))
			continue
		}
		vehicles = append(vehicles, rec.toVehicle())
	}
	return vehicles, errs
}

func (n *Normalizer) validateFlat(raw json.RawMessage) error {
	var record interface{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	result, err := n.schema.Validate(gojsonschema.NewGoLoader(record))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
	}
	return nil
}

func (r flatRecord) toVehicle() models.Vehicle {
	v := models.Vehicle{
		Name:              r.Name,
		Trim:              r.Trim,
		Year:              r.Year.Int(),
		Price:             r.Price.Int(),
		BodyType:          models.BodyType(r.BodyType),
		FuelType:          models.FuelType(r.FuelType),
		Drivetrain:        models.Drivetrain(r.Drivetrain),
		MPG:               mpgText(r.MPG),
		MPGCity:           r.MPGCity.Float(),
		MPGHighway:        r.MPGHighway.Float(),
		Seats:             r.Seats.Int(),
		CargoSpace:        r.CargoSpace,
		Image:             r.Image,
		ElectricRange:     r.ElectricRange,
		Features:          r.Features,
		KeyFeatures:       r.KeyFeatures,
		Colors:            r.Colors,
		Horsepower:        r.Horsepower.Int(),
		Engine:            r.Engine,
		Transmission:      r.Transmission,
		SafetyFeatures:    r.SafetyFeatures,
		ExteriorFeatures:  r.ExteriorFeatures,
		InteriorFeatures:  r.InteriorFeatures,
		AudioMultimedia:   r.AudioMultimedia,
		ConnectedServices: r.ConnectedServices,
	}
	for _, p := range r.Packages {
		v.Packages = append(v.Packages, p.toPackage())
	}

	if !v.HasMPG() && v.MPG != "" {
		v.MPGCity, v.MPGHighway = parseMPGDisplay(v.MPG, v.MPGCity, v.MPGHighway)
	}
	enrichFromFeatures(&v)
	finish(&v)
	return v
}

// mpgText accepts "30 city / 38 highway" as well as a bare number.
func mpgText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && f > 0 {
		return formatNumber(f) + " combined"
	}
	return ""
}

// parseMPGDisplay recovers ratings from a display string when the numeric fields are absent.
// Two numbers are city then highway; a single number is a combined rating.
func parseMPGDisplay(display string, city, highway float64) (float64, float64) {
	nums := mpgNumbers.FindAllString(display, 2)
	values := make([]float64, 0, len(nums))
	for _, s := range nums {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			values = append(values, f)
		}
	}
	switch len(values) {
	case 2:
		if city <= 0 {
			city = values[0]
		}
		if highway <= 0 {
			highway = values[1]
		}
	case 1:
		if city <= 0 {
			city = values[0]
		}
		if highway <= 0 {
			highway = values[0]
		}
	}
	return city, highway
}

// enrichFromFeatures fills detail fields that older flat catalogs only mention in the feature list.
func enrichFromFeatures(v *models.Vehicle) {
	if v.Horsepower <= 0 {
		if f, ok := findFeature(v.Features, hpKeywords); ok {
			if hp, err := strconv.Atoi(firstInt.FindString(f)); err == nil {
				v.Horsepower = hp
			}
		}
	}
	if v.Engine == "" {
		if f, ok := findFeature(v.Features, engineWords); ok {
			v.Engine = f
		}
	}
	if v.Transmission == "" {
		if f, ok := findFeature(v.Features, transWords); ok {
			v.Transmission = f
		}
	}
	if len(v.SafetyFeatures) == 0 {
		for _, f := range v.Features {
			if containsAny(f, safetyWords) {
				v.SafetyFeatures = append(v.SafetyFeatures, f)
			}
		}
	}
}

func findFeature(features []string, words []string) (string, bool) {
	for _, f := range features {
		if containsAny(f, words) {
			return f, true
		}
	}
	return "", false
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
