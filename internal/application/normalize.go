package application

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// aliases is an ordered list of accepted source field names for one canonical
// field. The first match wins.
type aliases []string

// first returns the first present, non-null value.
func (a aliases) first(obj map[string]any) any {
	for _, name := range a {
		if v, ok := obj[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

// firstSet returns the first value that is set: present and not null, empty,
// false or zero.
func (a aliases) firstSet(obj map[string]any) any {
	for _, name := range a {
		if v, ok := obj[name]; ok && isSet(v) {
			return v
		}
	}
	return nil
}

var (
	conditionsField    = aliases{"possible_conditions"}
	confidenceField    = aliases{"confidence_score", "confidence"}
	conditionNameField = aliases{"condition", "name"}
	conditionNoteField = aliases{"note", "excerpt"}
	stepsField         = aliases{"recommended_next_steps", "recommendations"}
	facilitiesField    = aliases{"nearby_hospitals"}
	distanceField      = aliases{"distance_meters", "distance"}
	disclaimerField    = aliases{"disclaimer"}
)

// unknownCondition labels a condition the service sent without a name.
const unknownCondition = "Unknown"

// stepSeparator matches newline runs and numbered-list markers ("1.", "2.",
// ...). splitSteps skips a marker directly followed by a digit so decimals
// such as "2.5 mg" stay intact.
var stepSeparator = regexp.MustCompile(`\n+|\d+\.`)

// Normalize maps an arbitrary decoded analysis response onto the canonical
// AnalysisResult. It never fails: missing, null or mistyped fields produce
// empty or default values, and collections are never nil.
func Normalize(raw any) model.AnalysisResult {
	result := model.AnalysisResult{
		Conditions:       []model.Condition{},
		RecommendedSteps: []string{},
		Facilities:       []model.Facility{},
	}

	var obj map[string]any
	switch v := raw.(type) {
	case map[string]any:
		obj = v
	case model.AnalysisResult:
		return canonical(v, result)
	case *model.AnalysisResult:
		if v == nil {
			return result
		}
		return canonical(*v, result)
	default:
		return result
	}

	for _, row := range rows(conditionsField.first(obj)) {
		result.Conditions = append(result.Conditions, normalizeCondition(row))
	}
	result.RecommendedSteps = normalizeSteps(stepsField.firstSet(obj))
	for _, row := range rows(facilitiesField.first(obj)) {
		result.Facilities = append(result.Facilities, normalizeFacility(row))
	}
	result.Disclaimer = stringify(disclaimerField.firstSet(obj))

	return result
}

// canonical copies an already-normalized result into empty, replacing nil
// collections with the empty ones empty carries.
func canonical(r, empty model.AnalysisResult) model.AnalysisResult {
	empty.Conditions = append(empty.Conditions, r.Conditions...)
	empty.RecommendedSteps = append(empty.RecommendedSteps, r.RecommendedSteps...)
	empty.Facilities = append(empty.Facilities, r.Facilities...)
	empty.Disclaimer = r.Disclaimer
	return empty
}

// rows returns the elements of a list field. A single object is treated as a
// one-row list; anything else yields no rows.
func rows(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case map[string]any:
		return []any{list}
	default:
		return nil
	}
}

func normalizeCondition(row any) model.Condition {
	obj, ok := row.(map[string]any)
	if !ok {
		name := stringify(row)
		if name == "" {
			name = unknownCondition
		}
		return model.Condition{Name: name}
	}

	name := stringify(conditionNameField.firstSet(obj))
	if name == "" {
		name = unknownCondition
	}

	return model.Condition{
		Name:            name,
		ConfidenceLabel: stringify(confidenceField.first(obj)),
		Note:            stringify(conditionNoteField.firstSet(obj)),
	}
}

func normalizeFacility(row any) model.Facility {
	obj, ok := row.(map[string]any)
	if !ok {
		return model.Facility{Name: stringify(row)}
	}

	return model.Facility{
		Name:           stringify(obj["name"]),
		Address:        stringify(obj["address"]),
		DistanceMeters: meters(distanceField.first(obj)),
	}
}

// normalizeSteps turns the steps field into paragraphs. A string is split, a
// list is used element by element, and any other value becomes one paragraph.
func normalizeSteps(v any) []string {
	switch steps := v.(type) {
	case nil:
		return []string{}
	case string:
		return splitSteps(steps)
	case []any:
		out := make([]string, 0, len(steps))
		for _, s := range steps {
			out = append(out, stringify(s))
		}
		return out
	default:
		return []string{stringify(steps)}
	}
}

func splitSteps(text string) []string {
	out := []string{}
	start := 0
	for _, m := range stepSeparator.FindAllStringIndex(text, -1) {
		if text[m[1]-1] == '.' && m[1] < len(text) && isDigit(text[m[1]]) {
			continue
		}
		out = appendStep(out, text[start:m[0]])
		start = m[1]
	}
	return appendStep(out, text[start:])
}

func appendStep(steps []string, fragment string) []string {
	if fragment = strings.TrimSpace(fragment); fragment != "" {
		steps = append(steps, fragment)
	}
	return steps
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// meters reads a distance as a finite number. Numeric strings are accepted.
func meters(v any) *float64 {
	var d float64
	switch n := v.(type) {
	case float64:
		d = n
	case int:
		d = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		d = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		d = f
	default:
		return nil
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return nil
	}
	return &d
}

// stringify renders a decoded JSON value for display.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		encoded, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// isSet reports whether v counts as provided: null, "", false, 0 and NaN do not.
func isSet(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return s != ""
	case bool:
		return s
	case float64:
		return s != 0 && !math.IsNaN(s)
	case int:
		return s != 0
	default:
		return true
	}
}
