// Package catalog turns heterogeneous vehicle JSON documents into one normalized catalog.
//
// Two document shapes are understood: a flat array of vehicle records that already
// carry an id and a name, and a model document with a trims array that is flattened
// into one vehicle per trim. Records from all documents of a pass are merged by
// name, trim and year, and every surviving vehicle gets an id unique within the pass.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/metrics"
	"vehicle-match-engine/internal/utils"
)

var (
	// ErrUnknownFormat is reported for documents that match neither known shape.
	ErrUnknownFormat = errors.New("unknown catalog document format")
	// ErrInvalidRecord is reported for flat records that fail schema validation.
	ErrInvalidRecord = errors.New("invalid vehicle record")
)

// Defaults applied when a source omits a required field.
const (
	DefaultName    = "Unknown Vehicle"
	DefaultYear    = 2025
	DefaultTrim    = "Base"
	DefaultFeature = "Standard features"
	DefaultCargo   = "N/A"
	KeyFeatureMax  = 8
)

// Document is one raw catalog file.
type Document struct {
	Name string
	Data []byte
}

type shape int

const (
	shapeUnknown shape = iota
	shapeEmpty
	shapeFlat
	shapeTrims
)

// Normalizer converts raw documents into vehicles.
type Normalizer struct {
	schema *gojsonschema.Schema
	logger *zap.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used to report skipped documents and records.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer compiles the flat record schema and returns a ready normalizer.
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(flatRecordSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile vehicle record schema: %w", err)
	}

	n := &Normalizer{schema: schema, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Normalize runs one pass over docs. Problems with individual documents or records are
// returned alongside the vehicles that could be normalized; they never abort the pass.
func (n *Normalizer) Normalize(docs ...Document) ([]models.Vehicle, []error) {
	var errs []error
	collections := make([][]models.Vehicle, 0, len(docs))

	for _, doc := range docs {
		vehicles, docErrs := n.normalizeDocument(doc)
		for _, err := range docErrs {
			n.logger.Warn("Skipping catalog input",
				zap.String("document", doc.Name),
				zap.Error(err),
			)
		}
		errs = append(errs, docErrs...)
		collections = append(collections, vehicles)
	}

	vehicles := Merge(collections...)
	AssignIDs(vehicles)
	metrics.CatalogErrors.Add(float64(len(errs)))

	n.logger.Info("Normalized catalog",
		zap.Int("documents", len(docs)),
		zap.Int("vehicles", len(vehicles)),
		zap.Int("errors", len(errs)),
	)
	return vehicles, errs
}

func (n *Normalizer) normalizeDocument(doc Document) ([]models.Vehicle, []error) {
	switch detectShape(doc.Data) {
	case shapeEmpty:
		return nil, nil
	case shapeFlat:
		return n.normalizeFlat(doc)
	case shapeTrims:
		vehicles, err := normalizeTrims(doc.Data)
		if err != nil {
			return nil, []error{fmt.Errorf("%s: %w", doc.Name, err)}
		}
		return vehicles, nil
	}
	return nil, []error{fmt.Errorf("%s: %w", doc.Name, ErrUnknownFormat)}
}

// detectShape looks only at the top level of the document.
func detectShape(data []byte) shape {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return shapeUnknown
	}

	switch trimmed[0] {
	case '[':
		var records []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return shapeUnknown
		}
		if len(records) == 0 {
			return shapeEmpty
		}
		_, hasID := records[0]["id"]
		_, hasName := records[0]["name"]
		if hasID && hasName {
			return shapeFlat
		}
	case '{':
		var doc struct {
			Trims json.RawMessage `json:"trims"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return shapeUnknown
		}
		if bytes.HasPrefix(bytes.TrimSpace(doc.Trims), []byte("[")) {
			return shapeTrims
		}
	}
	return shapeUnknown
}

// flexNumber accepts a JSON number, a numeric string such as "$56,000", or null.
// Anything unparsable decodes as zero.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	*f = 0
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil
		}
		if v, ok := utils.ParseAmount(text); ok {
			*f = flexNumber(v)
		}
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexNumber(v)
	}
	return nil
}

func (f flexNumber) Float() float64 { return float64(f) }

func (f flexNumber) Int() int { return int(f) }

// finish fills every required field and the derived display fields.
func finish(v *models.Vehicle) {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		v.Name = DefaultName
	}
	v.Trim = strings.TrimSpace(v.Trim)
	if v.Trim == "" {
		v.Trim = DefaultTrim
	}
	if v.Year <= 0 {
		v.Year = DefaultYear
	}
	if v.Price < 0 {
		v.Price = 0
	}
	v.BodyType = models.NormalizeBodyType(string(v.BodyType))
	v.FuelType = models.NormalizeFuelType(string(v.FuelType))
	v.Drivetrain = models.NormalizeDrivetrain(string(v.Drivetrain))

	v.Features = dedupeStrings(v.Features)
	if len(v.Features) == 0 {
		v.Features = []string{DefaultFeature}
	}
	if len(v.KeyFeatures) == 0 {
		v.KeyFeatures = append([]string(nil), v.Features[:min(KeyFeatureMax, len(v.Features))]...)
	}
	if v.MPG == "" {
		v.MPG = mpgDisplay(v.MPGCity, v.MPGHighway)
	}
	if v.ElectricRange == "" && (v.FuelType == models.FuelTypeEV || v.FuelType == models.FuelTypePlugInHybrid) {
		v.ElectricRange = electricRange(v.Features)
	}
}

func mpgDisplay(city, highway float64) string {
	if city > 0 && highway > 0 {
		return formatNumber(city) + " city / " + formatNumber(highway) + " highway"
	}
	combined := city
	if combined <= 0 {
		combined = highway
	}
	return formatNumber(combined) + " combined"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// electricRange finds the first feature mentioning miles or range and returns "N miles".
func electricRange(features []string) string {
	for _, f := range features {
		lower := strings.ToLower(f)
		if !strings.Contains(lower, "mile") && !strings.Contains(lower, "range") {
			continue
		}
		if match := firstInt.FindString(f); match != "" {
			return match + " miles"
		}
		return ""
	}
	return ""
}

// dedupeStrings drops blanks and repeats, keeping first occurrence order.
func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
