package coercer

import (
	"math"
	"strconv"
	"strings"

	"datadash/domain/dataset"
)

// TypeCoercer turns raw text cells into typed column values
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of non-missing cells that must parse as numbers
	BooleanThreshold float64  `json:"boolean_threshold"` // share of non-missing cells that must parse as booleans
	TrimSpace        bool     `json:"trim_space"`
	MissingTokens    []string `json:"missing_tokens"` // cells equal to one of these are missing
}

// DefaultCoercionConfig requires a column to be uniformly numeric or boolean
// before it is typed that way; anything else stays text.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		BooleanThreshold: 1.0,
		TrimSpace:        true,
		MissingTokens:    []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "#N/A", "<NA>"},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int               `json:"total_count"`
	ValidCount      int               `json:"valid_count"`
	NumericCount    int               `json:"numeric_count"`
	BooleanCount    int               `json:"boolean_count"`
	NumericRatio    float64           `json:"numeric_ratio"`
	BooleanRatio    float64           `json:"boolean_ratio"`
	RecommendedType dataset.ValueType `json:"recommended_type"`
}

// AnalyzeTypeDistribution counts how many cells parse as each type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, raw := range values {
		if c.IsMissing(raw) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.tryParseNumeric(raw); ok {
			analysis.NumericCount++
		}
		if _, ok := c.tryParseBoolean(raw); ok {
			analysis.BooleanCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.BooleanRatio = float64(analysis.BooleanCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

// CoerceColumn types a whole column at once so every cell shares the
// column's type (cells that do not fit fall back to text).
func (c *TypeCoercer) CoerceColumn(name string, raw []string) dataset.Column {
	analysis := c.AnalyzeTypeDistribution(raw)
	values := make([]dataset.Value, len(raw))
	for i, cell := range raw {
		values[i] = c.coerceAs(cell, analysis.RecommendedType)
	}
	return dataset.Column{Name: name, Type: analysis.RecommendedType, Values: values}
}

// IsMissing reports whether raw is an empty or missing-marker cell
func (c *TypeCoercer) IsMissing(raw string) bool {
	if c.config.TrimSpace {
		raw = strings.TrimSpace(raw)
	}
	for _, token := range c.config.MissingTokens {
		if raw == token {
			return true
		}
	}
	return false
}

func (c *TypeCoercer) coerceAs(raw string, target dataset.ValueType) dataset.Value {
	if c.IsMissing(raw) {
		return dataset.NewMissingValue()
	}
	switch target {
	case dataset.ValueTypeNumeric:
		if v, ok := c.tryParseNumeric(raw); ok {
			return v
		}
	case dataset.ValueTypeBoolean:
		if v, ok := c.tryParseBoolean(raw); ok {
			return v
		}
	}
	return c.coerceToString(raw)
}

func (c *TypeCoercer) coerceToString(raw string) dataset.Value {
	if c.config.TrimSpace {
		raw = strings.TrimSpace(raw)
	}
	return dataset.NewStringValue(raw)
}

// tryParseNumeric accepts plain decimal and scientific notation only
func (c *TypeCoercer) tryParseNumeric(raw string) (dataset.Value, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" || hasHexPrefix(clean) {
		return dataset.Value{}, false
	}
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return dataset.Value{}, false
	}
	return dataset.NewNumericValue(val), true
}

func (c *TypeCoercer) tryParseBoolean(raw string) (dataset.Value, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return dataset.NewBooleanValue(true), true
	case "false":
		return dataset.NewBooleanValue(false), true
	}
	return dataset.Value{}, false
}

// determineRecommendedType chooses the best type based on analysis
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) dataset.ValueType {
	if analysis.ValidCount == 0 {
		return dataset.ValueTypeMissing
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.ValueTypeNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.ValueTypeBoolean
	}
	return dataset.ValueTypeString
}

// hasHexPrefix reports a 0x/0X literal, which strconv.ParseFloat would accept
func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
