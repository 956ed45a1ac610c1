package analytics

import (
	"testing"

	"integrity/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesDimensionAndDeterminism(t *testing.T) {
	o := Observation{
		Depth: 12, Length: 40, Width: 20,
		QualityGrade: models.GradeAcceptable,
		DefectFound:  true,
		Method:       models.MethodUZK,
		Temperature:  25, Humidity: 60, Illumination: 500,
	}

	f1 := Features(o)
	f2 := Features(o)
	require.Len(t, f1, FeatureDim)
	// 相同输入两次计算得到完全一致的向量
	assert.Equal(t, f1, f2)
}

func TestFeaturesValues(t *testing.T) {
	o := Observation{
		Depth: 12, Length: 40, Width: 20,
		QualityGrade: models.GradeAcceptable,
		DefectFound:  true,
		Method:       models.MethodUZK,
		Temperature:  25, Humidity: 60, Illumination: 500,
	}
	f := Features(o)

	assert.Equal(t, 12.0, f[0])
	assert.Equal(t, 40.0, f[1])
	assert.Equal(t, 20.0, f[2])
	assert.Equal(t, 2.0, f[3])              // acceptable -> 2
	assert.Equal(t, 1.0, f[4])              // defect_found
	assert.Equal(t, 800.0, f[5])            // 面积 40*20
	assert.Equal(t, 9600.0, f[6])           // 体积 12*40*20
	assert.Equal(t, 1.0, f[7])              // UZK 属于关键方法
	assert.InDelta(t, 0.75, f[8], 1e-9)     // (25+50)/100
	assert.InDelta(t, 0.6, f[9], 1e-9)      // 60/100
	assert.InDelta(t, 0.5, f[10], 1e-9)     // 500/1000
	assert.InDelta(t, 12.0/801, f[11], 1e-9) // 深度/(面积+1)
	assert.InDelta(t, 2.0, f[12], 1e-9)     // 40/20
	assert.Equal(t, 0.0, f[13])             // 深度 12 未超 30
	assert.Equal(t, 0.0, f[14])             // 面积 800 未超 10000
}

func TestFeaturesNoDefectZeroesMeasurements(t *testing.T) {
	// 无缺陷记录即使残留尺寸测量值，派生特征也必须归零
	o := Observation{
		Depth: 55, Length: 200, Width: 100,
		QualityGrade: models.GradeUnacceptable,
		DefectFound:  false,
		Method:       models.MethodVIK,
	}
	f := Features(o)

	assert.Equal(t, 0.0, f[0])
	assert.Equal(t, 0.0, f[1])
	assert.Equal(t, 0.0, f[2])
	assert.Equal(t, 0.0, f[4])  // defect_found
	assert.Equal(t, 0.0, f[5])  // 面积
	assert.Equal(t, 0.0, f[6])  // 体积
	assert.Equal(t, 0.0, f[11]) // 深度/面积
	assert.Equal(t, 1.0, f[12]) // 宽度为 0 时形状指数取 1
	assert.Equal(t, 0.0, f[13])
	assert.Equal(t, 0.0, f[14])
}

func TestFeaturesEdgeCases(t *testing.T) {
	// 宽度为 0：面积、体积为 0，形状指数取 1
	f := Features(Observation{Depth: 10, Length: 50, Width: 0, DefectFound: true})
	assert.Equal(t, 0.0, f[5])
	assert.Equal(t, 0.0, f[6])
	assert.Equal(t, 1.0, f[12])

	// 未知质量评级按 1 处理
	f = Features(Observation{QualityGrade: "что-то", DefectFound: true})
	assert.Equal(t, 1.0, f[3])

	// 深缺陷与大面积缺陷标志
	f = Features(Observation{Depth: 31, Length: 101, Width: 100, DefectFound: true})
	assert.Equal(t, 1.0, f[13])
	assert.Equal(t, 1.0, f[14])

	// 非关键方法
	f = Features(Observation{Method: models.MethodVIK, DefectFound: true})
	assert.Equal(t, 0.0, f[7])
}

func TestFromInspectionDefaults(t *testing.T) {
	o := FromInspection(models.Inspection{
		Method:      models.MethodTVK,
		DefectFound: true,
	})
	assert.Equal(t, 0.0, o.Depth)
	assert.Equal(t, 0.0, o.Temperature)
	assert.True(t, o.DefectFound)

	d := 33.0
	o = FromInspection(models.Inspection{Depth: &d, DefectFound: true})
	assert.Equal(t, 33.0, o.Depth)
}
