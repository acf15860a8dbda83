package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedInterpolator() *Interpolator {
	return &Interpolator{
		CompanyName: "Greenfield Municipality",
		Now: func() time.Time {
			return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
		},
	}
}

func TestInterpolator_SessionData(t *testing.T) {
	p := fixedInterpolator()
	data := map[string]string{
		"name":       "Asha",
		"department": "Water Supply",
	}

	got := p.Apply("Hello {name}, your complaint goes to {department}.", data)
	assert.Equal(t, "Hello Asha, your complaint goes to Water Supply.", got)
}

func TestInterpolator_BuiltIns(t *testing.T) {
	p := fixedInterpolator()

	got := p.Apply("{companyName} on {date} at {time}", nil)
	assert.Equal(t, "Greenfield Municipality on 14/03/2026 at 09:30", got)
}

func TestInterpolator_DataShadowsBuiltIns(t *testing.T) {
	p := fixedInterpolator()
	data := map[string]string{"date": "tomorrow"}

	got := p.Apply("See you {date}", data)
	assert.Equal(t, "See you tomorrow", got)
}

func TestInterpolator_UnknownTokenStaysVerbatim(t *testing.T) {
	p := fixedInterpolator()

	got := p.Apply("Ref: {refNumber}", map[string]string{})
	assert.Equal(t, "Ref: {refNumber}", got)
}

func TestInterpolator_EmptyTemplate(t *testing.T) {
	p := fixedInterpolator()
	assert.Equal(t, "", p.Apply("", map[string]string{"x": "y"}))
}
