package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-tailor/internal/models"
)

func TestResumeUpdateDataToMap(t *testing.T) {
	html := "<h1>Jane</h1>"
	score := 82
	status := models.PaymentStatusPaid

	updates, err := (&ResumeUpdateData{
		OptimizedResumeHTML: &html,
		ATSScore:            &score,
		ATSMatchedKeywords:  []string{"Go"},
		ATSMissingKeywords:  []string{},
		PaymentStatus:       &status,
	}).toMap()
	require.NoError(t, err)

	assert.Equal(t, html, updates["optimized_resume_html"])
	assert.Equal(t, 82, updates["ats_score"])
	assert.Equal(t, datatypes.JSON(`["Go"]`), updates["ats_matched_keywords"])
	assert.Equal(t, datatypes.JSON(`[]`), updates["ats_missing_keywords"])
	assert.Equal(t, models.PaymentStatusPaid, updates["payment_status"])
	assert.Contains(t, updates, "updated_at")

	assert.NotContains(t, updates, "jd_text")
	assert.NotContains(t, updates, "download_token")
	assert.NotContains(t, updates, "optimized_cover_letter_html")
}

func TestResumeUpdateDataToMapEmpty(t *testing.T) {
	updates, err := (&ResumeUpdateData{}).toMap()

	require.NoError(t, err)
	assert.Len(t, updates, 1)
}
