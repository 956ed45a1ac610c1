package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTableCSV(t *testing.T) {
	// 带 BOM 的表头
	content := []byte("\xef\xbb\xbfobject_id,object_name ,lat\n1,对象一,55.7\n2,对象二,\n")
	header, rows, err := ReadTable(content, "objects.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"object_id", "object_name", "lat"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0]["object_id"])
	assert.Equal(t, "对象一", rows[0]["object_name"])
	assert.Equal(t, "", rows[1]["lat"])
}

func TestReadTableUnsupportedFormat(t *testing.T) {
	_, _, err := ReadTable([]byte("x"), "data.txt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "不支持的文件格式")
}

func TestReadTableEmptyCSV(t *testing.T) {
	_, _, err := ReadTable([]byte(""), "empty.csv")
	assert.Error(t, err)
}

func objectHeader() []string {
	return []string{"object_id", "object_name", "object_type", "pipeline_id", "lat", "lon"}
}

func objectRow(id, name, typ, pipeline, lat, lon string) map[string]string {
	return map[string]string{
		"object_id": id, "object_name": name, "object_type": typ,
		"pipeline_id": pipeline, "lat": lat, "lon": lon,
	}
}

func TestValidateObjects(t *testing.T) {
	// 合法数据
	errs, warns := ValidateObjects(objectHeader(), []map[string]string{
		objectRow("1", "管段", "pipeline_section", "MG-1", "55.7", "37.6"),
		objectRow("2", "阀室", "crane", "MG-1", "60.1", "30.2"),
	})
	assert.Empty(t, errs)
	assert.Empty(t, warns)

	// 缺列直接失败
	errs, _ = ValidateObjects([]string{"object_id", "object_name"}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "缺少必填列")
	assert.Contains(t, errs[0], "object_type")

	// 重复 ID 与越界坐标
	errs, warns = ValidateObjects(objectHeader(), []map[string]string{
		objectRow("1", "a", "crane", "MG-1", "95", "37.6"),
		objectRow("1", "b", "crane", "MG-1", "55.7", "-200"),
	})
	assert.Len(t, errs, 3)
	assert.Contains(t, errs[0], "重复的 object_id")
	assert.Empty(t, warns)

	// 未知类型与空值只警告
	errs, warns = ValidateObjects(objectHeader(), []map[string]string{
		objectRow("1", "a", "unknown_type", "MG-1", "55.7", "37.6"),
		objectRow("2", "", "crane", "MG-1", "55.7", "37.6"),
	})
	assert.Empty(t, errs)
	require.Len(t, warns, 2)
	assert.Contains(t, warns[0], "未知的对象类型")
	assert.Contains(t, warns[1], "object_name")
}

func diagHeader() []string {
	return []string{"diag_id", "object_id", "method", "date", "defect_found", "param1", "quality_grade", "ml_label"}
}

func diagRow(id, oid, method, date, defect, depth string) map[string]string {
	return map[string]string{
		"diag_id": id, "object_id": oid, "method": method,
		"date": date, "defect_found": defect, "param1": depth,
	}
}

func TestValidateDiagnostics(t *testing.T) {
	known := map[uint]bool{1: true, 2: true}

	// 合法数据
	errs, warns := ValidateDiagnostics(diagHeader(), []map[string]string{
		diagRow("1", "1", "UZK", "2024-01-15", "true", "12.5"),
		diagRow("2", "2", "VIK", "2024-02-01", "false", ""),
	}, known)
	assert.Empty(t, errs)
	assert.Empty(t, warns)

	// 缺列
	errs, _ = ValidateDiagnostics([]string{"diag_id"}, nil, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "缺少必填列")

	// 重复 diag_id 与悬空引用
	errs, _ = ValidateDiagnostics(diagHeader(), []map[string]string{
		diagRow("1", "1", "UZK", "2024-01-15", "true", "5"),
		diagRow("1", "99", "UZK", "2024-01-16", "false", ""),
	}, known)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "重复的 diag_id")
	assert.Contains(t, errs[1], "不存在的 object_id")

	// 未知枚举、坏日期、缺陷缺深度只警告
	errs, warns = ValidateDiagnostics(diagHeader(), []map[string]string{
		{
			"diag_id": "1", "object_id": "1", "method": "XXX",
			"date": "not-a-date", "defect_found": "true", "param1": "",
			"quality_grade": "bad", "ml_label": "severe",
		},
	}, known)
	assert.Empty(t, errs)
	assert.Len(t, warns, 5)
}

func TestBuildAssets(t *testing.T) {
	assets, pipelines, errs := buildAssets([]map[string]string{
		objectRow("1", "管段", "pipeline_section", "MG-1", "55.7", "37.6"),
		objectRow("2", "阀室", "crane", "MG-2", "", ""),
	})
	require.Empty(t, errs)
	require.Len(t, assets, 2)
	assert.Equal(t, uint(1), assets[0].ID)
	assert.Equal(t, 55.7, assets[0].Lat)
	assert.Equal(t, "MG-1", assets[0].PipelineID)
	assert.Len(t, pipelines, 2)

	// 非整数 ID 报错并跳过
	assets, _, errs = buildAssets([]map[string]string{
		objectRow("abc", "x", "crane", "MG-1", "0", "0"),
	})
	assert.Empty(t, assets)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "object_id 不是整数")
}

func TestBuildInspections(t *testing.T) {
	rows := []map[string]string{
		{
			"diag_id": "10", "object_id": "1", "method": "UZK",
			"date": "2024-03-01", "defect_found": "true",
			"param1": "12.5", "param2": "40", "param3": "20",
			"quality_grade": "needs_action", "ml_label": "medium",
			"temperature": "15.5",
		},
		// 日期无法解析的行被跳过
		{
			"diag_id": "11", "object_id": "1", "method": "VIK",
			"date": "bad", "defect_found": "false",
		},
	}
	records, errs := buildInspections(rows)
	require.Empty(t, errs)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, uint(10), r.ID)
	assert.Equal(t, uint(1), r.AssetID)
	assert.True(t, r.DefectFound)
	require.NotNil(t, r.Depth)
	assert.Equal(t, 12.5, *r.Depth)
	require.NotNil(t, r.Temperature)
	assert.Equal(t, 15.5, *r.Temperature)
	assert.Equal(t, "medium", r.Label)

	// 布尔值非法报错
	_, errs = buildInspections([]map[string]string{
		{"diag_id": "1", "object_id": "1", "method": "VIK", "date": "2024-01-01", "defect_found": "maybe"},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "defect_found 不是布尔值")
}

func TestParseHelpers(t *testing.T) {
	// 逗号小数
	v := parseOptionalFloat("12,5")
	require.NotNil(t, v)
	assert.Equal(t, 12.5, *v)
	assert.Nil(t, parseOptionalFloat(""))
	assert.Nil(t, parseOptionalFloat("abc"))

	// 多种日期格式
	for _, s := range []string{"2024-01-15", "2024-01-15 10:30:00", "15.01.2024", "2024/01/15"} {
		_, ok := parseDate(s)
		assert.True(t, ok, s)
	}
	_, ok := parseDate("январь")
	assert.False(t, ok)
}
