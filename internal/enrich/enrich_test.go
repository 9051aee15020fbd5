package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"worktime/internal/model"
)

func TestNoop(t *testing.T) {
	var e Enricher = Noop{}

	name, err := e.PlaceName(context.Background(), model.Location{Lat: 1, Lng: 2})
	assert.NoError(t, err)
	assert.Empty(t, name)

	summary, err := e.Summarize(context.Background(), "Audit", time.Hour)
	assert.NoError(t, err)
	assert.Empty(t, summary)
}

func TestSummaryPrompt(t *testing.T) {
	p := SummaryPrompt("Roof repair", 90*time.Minute)

	assert.Contains(t, p, `Job: "Roof repair"`)
	assert.Contains(t, p, "Duration: 1.50 hours")
}

func TestPlacePrompt(t *testing.T) {
	p := PlacePrompt(model.Location{Lat: 13.7563, Lng: 100.5018})

	assert.Contains(t, p, "latitude 13.756300")
	assert.Contains(t, p, "longitude 100.501800")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Siam Square", cleanText("  **Siam Square**\n"))
	assert.Equal(t, "", cleanText("   "))
}
