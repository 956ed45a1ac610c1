package analytics

import (
	"testing"
	"time"

	"integrity/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fleetFixture() ([]models.Inspection, []models.Asset) {
	assets := []models.Asset{
		{ID: 1, Name: "管段 0-50km", Type: models.AssetTypePipelineSection, PipelineID: "MG-1"},
		{ID: 2, Name: "1 号阀室", Type: models.AssetTypeCrane, PipelineID: "MG-1"},
		{ID: 3, Name: "压气站-2", Type: models.AssetTypeCompressor, PipelineID: "MG-2"},
	}
	history := []models.Inspection{
		// 对象 1：缺陷加深，高风险
		rec(1, 1, 0, true, 10),
		rec(2, 1, 100, true, 20),
		rec(3, 1, 120, false, 0),
		// 对象 2：三次检测均无缺陷，低风险
		rec(4, 2, 0, false, 0),
		rec(5, 2, 100, false, 0),
		rec(6, 2, 200, false, 0),
		// 对象 3：仅一条记录，数据不足
		rec(7, 3, 0, false, 0),
	}
	return history, assets
}

func TestTopRisks(t *testing.T) {
	history, assets := fleetFixture()

	risks := TopRisks(history, assets, 0)
	require.Len(t, risks, 2) // 数据不足的对象被排除

	assert.Equal(t, uint(1), risks[0].ObjectID)
	assert.Equal(t, 0.85, risks[0].RiskProbability)
	assert.Equal(t, "管段 0-50km", risks[0].ObjectName)
	assert.Equal(t, "MG-1", risks[0].PipelineID)

	assert.Equal(t, uint(2), risks[1].ObjectID)
	assert.Equal(t, 0.05, risks[1].RiskProbability)

	// limit 截断
	risks = TopRisks(history, assets, 1)
	require.Len(t, risks, 1)
	assert.Equal(t, uint(1), risks[0].ObjectID)
}

func TestForecastPipelineErrors(t *testing.T) {
	history, assets := fleetFixture()

	f := ForecastPipeline(history, assets, "MG-99", time.Now())
	assert.Equal(t, StatusError, f.Status)
	assert.Equal(t, "该管道下没有监测对象", f.Message)

	// 有对象但没有任何诊断记录
	f = ForecastPipeline(nil, assets, "MG-1", time.Now())
	assert.Equal(t, StatusError, f.Status)
	assert.Equal(t, "该管道没有诊断数据", f.Message)
}

func TestForecastPipelineSummary(t *testing.T) {
	history, assets := fleetFixture()
	now := day(300)

	f := ForecastPipeline(history, assets, "MG-1", now)
	require.Equal(t, StatusSuccess, f.Status)
	assert.Equal(t, "MG-1", f.PipelineID)
	assert.Equal(t, 2, f.TotalObjects)
	// 两个对象中一个有缺陷
	assert.Equal(t, 0.5, f.DefectRate)
	// 对象 1 风险 0.85 超过 0.6
	assert.Equal(t, 1, f.CriticalObjectsCount)
	require.Len(t, f.CriticalObjects, 1)
	assert.Equal(t, uint(1), f.CriticalObjects[0].ObjectID)

	// 最近一年两条缺陷记录，按 +10% 外推仍为 2
	assert.Equal(t, 2, f.DefectsLastYear)
	assert.Equal(t, 2, f.PredictedDefectsNextYear)

	// 缺陷率恰为 0.5 落在第二档
	assert.Equal(t, "需要重点关注并安排计划外检测", f.Recommendation)
}

func TestForecastPipelineDefectWindow(t *testing.T) {
	// 缺陷记录落在一年窗口之外时不计数
	history, assets := fleetFixture()
	now := day(120 + 400)

	f := ForecastPipeline(history, assets, "MG-1", now)
	require.Equal(t, StatusSuccess, f.Status)
	assert.Equal(t, 0, f.DefectsLastYear)
	assert.Equal(t, 0, f.PredictedDefectsNextYear)
}

func TestForecastPipelineRecommendationUnroundedBoundary(t *testing.T) {
	// 真实缺陷率 101/201 ≈ 0.5025：展示值舍入到 0.5，
	// 但档位必须按原始值判定为最高档
	var assets []models.Asset
	var history []models.Inspection
	for i := uint(1); i <= 201; i++ {
		assets = append(assets, models.Asset{ID: i, PipelineID: "MG-9"})
		if i <= 101 {
			history = append(history, rec(i, i, 0, true, 10))
		}
	}

	f := ForecastPipeline(history, assets, "MG-9", day(400))
	require.Equal(t, StatusSuccess, f.Status)
	assert.Equal(t, 0.5, f.DefectRate)
	assert.Equal(t, "需要大规模检修与更换计划", f.Recommendation)
}

func TestPipelineRecommendationTiers(t *testing.T) {
	assert.Equal(t, "需要大规模检修与更换计划", pipelineRecommendation(0.51, 0))
	assert.Equal(t, "需要大规模检修与更换计划", pipelineRecommendation(0.1, 11))
	assert.Equal(t, "需要重点关注并安排计划外检测", pipelineRecommendation(0.5, 0))
	assert.Equal(t, "需要重点关注并安排计划外检测", pipelineRecommendation(0.1, 6))
	assert.Equal(t, "常规运行，保持例行监测", pipelineRecommendation(0.16, 0))
	assert.Equal(t, "管道状态良好", pipelineRecommendation(0.15, 0))
	assert.Equal(t, "管道状态良好", pipelineRecommendation(0, 0))
}
