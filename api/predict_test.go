package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"integrity/analytics"
	"integrity/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictHandler_Predict_RuleFallback(t *testing.T) {
	// 未训练状态走规则回退
	old := analytics.Current()
	analytics.Replace(nil)
	defer analytics.Replace(old)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewPredictHandler(testConfig())
	router.POST("/predict", h.Predict)

	body := `{"defect_found":true,"param1":60,"quality_grade":"unacceptable","method":"MFL"}`
	req := httptest.NewRequest("POST", "/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, models.LabelHigh, data["prediction"])
	assert.Equal(t, analytics.ModelTypeRuleBased, data["model_type"])
	assert.Equal(t, 90.0, data["confidence"])
}

func TestPredictHandler_Predict_NoDefect(t *testing.T) {
	old := analytics.Current()
	analytics.Replace(nil)
	defer analytics.Replace(old)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewPredictHandler(testConfig())
	router.POST("/predict", h.Predict)

	body := `{"defect_found":false,"method":"VIK"}`
	req := httptest.NewRequest("POST", "/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, models.LabelNormal, data["prediction"])
	assert.Equal(t, 95.0, data["confidence"])
}

func TestPredictHandler_Predict_BadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewPredictHandler(testConfig())
	router.POST("/predict", h.Predict)

	req := httptest.NewRequest("POST", "/predict", bytes.NewBufferString(`{"param1":"深"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}
