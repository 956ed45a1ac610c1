package service

import (
	"testing"
	"time"

	"integrity/analytics"
	"integrity/config"
	"integrity/models"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestSendHighRiskAlertDisabled(t *testing.T) {
	s := newTestEmailService()
	err := s.SendHighRiskAlert(&models.Asset{}, &models.Inspection{}, &analytics.Prediction{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")
}

func TestGenerateAlertBody(t *testing.T) {
	s := newTestEmailService()
	depth := 62.5
	asset := &models.Asset{ID: 12, Name: "管段 150-200km", PipelineID: "MG-2"}
	rec := &models.Inspection{
		Method:       models.MethodMFL,
		Date:         time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Depth:        &depth,
		QualityGrade: models.GradeUnacceptable,
	}
	pred := &analytics.Prediction{Label: models.LabelHigh, Confidence: 91.3, ModelType: analytics.ModelTypeML}

	body := s.generateAlertBody(asset, rec, pred)
	assert.Contains(t, body, "管段 150-200km")
	assert.Contains(t, body, "MG-2")
	assert.Contains(t, body, "MFL")
	assert.Contains(t, body, "2025-03-15")
	assert.Contains(t, body, "62.5")
	assert.Contains(t, body, "unacceptable")
	assert.Contains(t, body, "91.3")
	assert.Contains(t, body, "高危缺陷告警")
}

func TestSendTrainingReportDisabled(t *testing.T) {
	s := newTestEmailService()
	err := s.SendTrainingReport(&analytics.TrainResult{Trained: true})
	assert.Error(t, err)
}
