package flow

import (
	"regexp"
	"time"
)

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Interpolator resolves {placeholder} tokens in step templates against
// session data. Unknown tokens are left verbatim so a typo in a template
// degrades to visible text instead of an empty hole.
type Interpolator struct {
	CompanyName string
	Now         func() time.Time
}

func NewInterpolator(companyName string) *Interpolator {
	return &Interpolator{
		CompanyName: companyName,
		Now:         time.Now,
	}
}

// Built-in tokens resolved before session data.
const (
	tokenDate        = "date"
	tokenTime        = "time"
	tokenCompanyName = "companyName"
)

// Apply substitutes every {key} token in template. Session data wins over
// built-ins so a flow can shadow {date} with its own collected value.
func (p *Interpolator) Apply(template string, data map[string]string) string {
	if template == "" {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		if value, ok := data[key]; ok {
			return value
		}
		switch key {
		case tokenDate:
			return p.Now().Format("02/01/2006")
		case tokenTime:
			return p.Now().Format("15:04")
		case tokenCompanyName:
			return p.CompanyName
		}
		return token
	})
}
