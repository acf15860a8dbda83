package flow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"SevaFlow/entity"
)

// NormalizeText lowercases and trims a citizen message for matching.
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Words that advance an optional media step without an upload.
var skipWords = map[string]bool{
	"skip":     true,
	"back":     true,
	"no":       true,
	"nahi":     true,
	"nako":     true,
	"cancel":   true,
	"continue": true,
}

// IsSkipWord reports whether the text is an explicit media skip.
func IsSkipWord(text string) bool {
	return skipWords[NormalizeText(text)]
}

// Language selector click payloads mapped to language codes.
var languageClicks = map[string]string{
	"lang_en": "en",
	"lang_hi": "hi",
	"lang_mr": "mr",
	"lang_or": "or",
}

// LanguageForClick returns the language code for a selector payload, empty
// when the payload is not a language click.
func LanguageForClick(payload string) string {
	return languageClicks[payload]
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	datePattern  = regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2,4}$`)
)

// ValidateInput checks a citizen answer against an input step's rules.
// Returns the authored error message (or a generic one) when the answer
// fails.
func ValidateInput(cfg *entity.InputConfig, text string) error {
	if cfg == nil {
		return nil
	}

	fail := func(fallback string) error {
		if cfg.Validation != nil && cfg.Validation.ErrorMessage != "" {
			return fmt.Errorf("%s", cfg.Validation.ErrorMessage)
		}
		return fmt.Errorf("%s", fallback)
	}

	trimmed := strings.TrimSpace(text)
	if cfg.Validation != nil {
		v := cfg.Validation
		if v.Required && trimmed == "" {
			return fail("This field is required.")
		}
		if v.MinLength > 0 && len([]rune(trimmed)) < v.MinLength {
			return fail(fmt.Sprintf("Please enter at least %d characters.", v.MinLength))
		}
		if v.MaxLength > 0 && len([]rune(trimmed)) > v.MaxLength {
			return fail(fmt.Sprintf("Please keep it under %d characters.", v.MaxLength))
		}
		if v.Pattern != "" {
			pattern, err := regexp.Compile(v.Pattern)
			if err == nil && !pattern.MatchString(trimmed) {
				return fail("That doesn't look right, please try again.")
			}
		}
	}

	switch cfg.InputType {
	case entity.InputNumber:
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return fail("Please enter a number.")
		}
	case entity.InputEmail:
		if !emailPattern.MatchString(trimmed) {
			return fail("Please enter a valid email address.")
		}
	case entity.InputPhone:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, trimmed)
		if !phonePattern.MatchString(digits) {
			return fail("Please enter a valid phone number.")
		}
	case entity.InputDate:
		if !datePattern.MatchString(trimmed) {
			return fail("Please enter a date like 25/12/2026.")
		}
	}

	return nil
}

// EvaluateCondition applies a condition step's operator to session data.
// Missing fields read as empty strings; "exists" is false for both absent
// and empty values. Numeric operators on non-numbers are false.
func EvaluateCondition(cfg *entity.ConditionConfig, data map[string]string) bool {
	if cfg == nil {
		return false
	}
	value, ok := data[cfg.Field]

	switch cfg.Operator {
	case entity.OpExists:
		return ok && value != ""
	case entity.OpEquals:
		return value == cfg.Value
	case entity.OpContains:
		return cfg.Value != "" && strings.Contains(value, cfg.Value)
	case entity.OpGreaterThan:
		left, lerr := strconv.ParseFloat(value, 64)
		right, rerr := strconv.ParseFloat(cfg.Value, 64)
		return lerr == nil && rerr == nil && left > right
	case entity.OpLessThan:
		left, lerr := strconv.ParseFloat(value, 64)
		right, rerr := strconv.ParseFloat(cfg.Value, 64)
		return lerr == nil && rerr == nil && left < right
	}
	return false
}
