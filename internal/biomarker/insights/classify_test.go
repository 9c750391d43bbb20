package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"healthhub/internal/biomarker/models"
)

func TestClassify(t *testing.T) {
	t.Run("each status has a distinct palette", func(t *testing.T) {
		seen := map[Palette]models.Status{}
		for _, s := range models.Statuses() {
			p := Classify(s)
			assert.NotEmpty(t, p.Text)
			assert.NotEmpty(t, p.Background)
			_, dup := seen[p]
			assert.False(t, dup, "palette for %s reused", s)
			seen[p] = s
		}
	})

	t.Run("unknown status renders as normal", func(t *testing.T) {
		assert.Equal(t, Classify(models.StatusNormal), Classify("borderline"))
		assert.Equal(t, Classify(models.StatusNormal), Classify(""))
		assert.Equal(t, DescribeStatus(models.StatusNormal, "Iron"), DescribeStatus("???", "Iron"))
	})
}

func TestDescribeStatus(t *testing.T) {
	assert.Equal(t, "Glucose is within the normal range", DescribeStatus(models.StatusNormal, "Glucose"))
	assert.Equal(t, "LDL is above the normal range", DescribeStatus(models.StatusElevated, "LDL"))
	assert.Equal(t, "Iron is below the normal range", DescribeStatus(models.StatusLow, "Iron"))
	assert.Contains(t, DescribeStatus(models.StatusCritical, "Potassium"), "Potassium is at a critical level")
}

func TestLegend(t *testing.T) {
	legend := Legend()
	assert.Len(t, legend, 4)
	for i, s := range models.Statuses() {
		assert.Equal(t, s, legend[i].Status)
		assert.Equal(t, Classify(s), legend[i].Palette)
	}
}
