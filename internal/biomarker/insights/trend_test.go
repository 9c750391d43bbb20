package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"healthhub/internal/biomarker/models"
)

func TestDescribeTrend_NeutralWithoutDirection(t *testing.T) {
	statuses := append(models.Statuses(), "", "unknown")
	for _, s := range statuses {
		assert.Equal(t, trendStableText, DescribeTrend("", s), "missing trend, status %q", s)
		assert.Equal(t, trendStableText, DescribeTrend(models.TrendStable, s), "stable trend, status %q", s)
	}
}

func TestDescribeTrend_Table(t *testing.T) {
	tests := []struct {
		trend  models.Trend
		status models.Status
		prefix string
	}{
		{models.TrendUp, models.StatusLow, "Improving"},
		{models.TrendUp, models.StatusElevated, "Worsening"},
		{models.TrendUp, models.StatusCritical, "Worsening"},
		{models.TrendUp, models.StatusNormal, "Rising"},
		{models.TrendDown, models.StatusElevated, "Improving"},
		{models.TrendDown, models.StatusCritical, "Improving"},
		{models.TrendDown, models.StatusLow, "Worsening"},
		{models.TrendDown, models.StatusNormal, "Falling"},
	}
	for _, tt := range tests {
		t.Run(string(tt.trend)+"/"+string(tt.status), func(t *testing.T) {
			assert.Regexp(t, "^"+tt.prefix, DescribeTrend(tt.trend, tt.status))
		})
	}
}

func TestDescribeTrend_UnknownStatusReadsAsNormal(t *testing.T) {
	assert.Equal(t, DescribeTrend(models.TrendUp, models.StatusNormal), DescribeTrend(models.TrendUp, "weird"))
	assert.Equal(t, DescribeTrend(models.TrendDown, models.StatusNormal), DescribeTrend(models.TrendDown, ""))
}

func TestDescribeTrend_UnknownDirectionIsNeutral(t *testing.T) {
	assert.Equal(t, trendStableText, DescribeTrend("sideways", models.StatusCritical))
}
