package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"integrity/database"
	"integrity/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// 两张导入表的必填列
var (
	requiredObjectColumns     = []string{"object_id", "object_name", "object_type", "pipeline_id", "lat", "lon"}
	requiredDiagnosticColumns = []string{"diag_id", "object_id", "method", "date", "defect_found"}
)

// ImportResult 单次导入的结果汇总
type ImportResult struct {
	Success      bool                `json:"success"`
	RowsImported int                 `json:"rows_imported"`
	Errors       []string            `json:"errors"`
	Warnings     []string            `json:"warnings"`
	Preview      []map[string]string `json:"preview"`
}

// ReadTable 读取 CSV 或 XLSX 文件为按列名索引的行。
// 列名去除首尾空白与 BOM/零宽字符，短行按空值补齐。
func ReadTable(content []byte, filename string) ([]string, []map[string]string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return readCSV(content)
	case strings.HasSuffix(lower, ".xlsx"):
		return readXLSX(content)
	default:
		return nil, nil, fmt.Errorf("不支持的文件格式: %s（仅支持 .csv 与 .xlsx）", filename)
	}
}

func cleanHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\ufeff", "")
	s = strings.ReplaceAll(s, "\u200b", "")
	return s
}

func rowsToMaps(header []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = strings.TrimSpace(row[i])
			} else {
				m[col] = ""
			}
		}
		out = append(out, m)
	}
	return out
}

func readCSV(content []byte) ([]string, []map[string]string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("读取 CSV 文件失败: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("文件为空")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = cleanHeader(h)
	}
	return header, rowsToMaps(header, records[1:]), nil
}

func readXLSX(content []byte) ([]string, []map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("读取 XLSX 文件失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("文件中没有工作表")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("文件为空")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = cleanHeader(h)
	}
	return header, rowsToMaps(header, rows[1:]), nil
}

func missingColumns(header []string, required []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, col := range required {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// limitList 拼接列表前 n 项用于错误提示
func limitList(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "02.01.2006", "2006/01/02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no", "":
		return false, true
	}
	return false, false
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ValidateObjects 校验监测对象表。
// 必填列缺失、object_id 重复、经纬度越界为错误；
// 未知对象类型与空值为警告。
func ValidateObjects(header []string, rows []map[string]string) (errors []string, warnings []string) {
	if missing := missingColumns(header, requiredObjectColumns); len(missing) > 0 {
		errors = append(errors, fmt.Sprintf(
			"缺少必填列: %s（文件中的列: %s，请下载模板核对列名，区分大小写）",
			strings.Join(missing, ", "), strings.Join(header, ", ")))
		return errors, warnings
	}

	seen := make(map[string]bool)
	var duplicates []string
	var badLat, badLon bool
	unknownTypes := make(map[string]bool)
	emptyCounts := make(map[string]int)

	for _, row := range rows {
		id := row["object_id"]
		if seen[id] {
			duplicates = append(duplicates, id)
		}
		seen[id] = true

		if t := row["object_type"]; t != "" && !contains(models.GetAssetTypes(), t) {
			unknownTypes[t] = true
		}
		if lat := parseOptionalFloat(row["lat"]); lat != nil && (*lat < -90 || *lat > 90) {
			badLat = true
		}
		if lon := parseOptionalFloat(row["lon"]); lon != nil && (*lon < -180 || *lon > 180) {
			badLon = true
		}
		for _, col := range requiredObjectColumns {
			if row[col] == "" {
				emptyCounts[col]++
			}
		}
	}

	if len(duplicates) > 0 {
		errors = append(errors, fmt.Sprintf("重复的 object_id: %s", limitList(duplicates, 5)))
	}
	if badLat {
		errors = append(errors, "纬度取值不合法（应在 -90 到 90 之间）")
	}
	if badLon {
		errors = append(errors, "经度取值不合法（应在 -180 到 180 之间）")
	}
	if len(unknownTypes) > 0 {
		var list []string
		for t := range unknownTypes {
			list = append(list, t)
		}
		warnings = append(warnings, fmt.Sprintf("未知的对象类型: %s", limitList(list, 10)))
	}
	for _, col := range requiredObjectColumns {
		if n := emptyCounts[col]; n > 0 {
			warnings = append(warnings, fmt.Sprintf("列 '%s' 存在 %d 个空值", col, n))
		}
	}
	return errors, warnings
}

// ValidateDiagnostics 校验诊断记录表。
// knownObjects 为合法的 object_id 集合（nil 表示跳过引用检查）。
// 必填列缺失、diag_id 重复、引用不存在的对象为错误；
// 未知枚举值、非法日期、缺陷缺少 param1 为警告。
func ValidateDiagnostics(header []string, rows []map[string]string, knownObjects map[uint]bool) (errors []string, warnings []string) {
	if missing := missingColumns(header, requiredDiagnosticColumns); len(missing) > 0 {
		errors = append(errors, fmt.Sprintf(
			"缺少必填列: %s（文件中的列: %s，请下载模板核对列名，区分大小写）",
			strings.Join(missing, ", "), strings.Join(header, ", ")))
		return errors, warnings
	}

	seen := make(map[string]bool)
	var duplicates, badRefs []string
	unknownMethods := make(map[string]bool)
	unknownGrades := make(map[string]bool)
	unknownLabels := make(map[string]bool)
	badDates := 0
	defectMissingDepth := 0

	hasGrade := hasColumn(header, "quality_grade")
	hasLabel := hasColumn(header, "ml_label")
	hasDepth := hasColumn(header, "param1")

	for _, row := range rows {
		id := row["diag_id"]
		if seen[id] {
			duplicates = append(duplicates, id)
		}
		seen[id] = true

		if m := row["method"]; m != "" && !contains(models.GetMethods(), m) {
			unknownMethods[m] = true
		}
		if _, ok := parseDate(row["date"]); !ok {
			badDates++
		}
		if hasGrade {
			if g := row["quality_grade"]; g != "" && !contains(models.GetQualityGrades(), g) {
				unknownGrades[g] = true
			}
		}
		if hasLabel {
			if l := row["ml_label"]; l != "" && !contains(models.GetLabels(), l) {
				unknownLabels[l] = true
			}
		}
		if knownObjects != nil {
			oid, err := strconv.ParseUint(row["object_id"], 10, 64)
			if err != nil || !knownObjects[uint(oid)] {
				badRefs = append(badRefs, row["object_id"])
			}
		}
		if defect, ok := parseBool(row["defect_found"]); ok && defect && hasDepth && row["param1"] == "" {
			defectMissingDepth++
		}
	}

	if len(duplicates) > 0 {
		errors = append(errors, fmt.Sprintf("重复的 diag_id: %s", limitList(duplicates, 5)))
	}
	if len(badRefs) > 0 {
		errors = append(errors, fmt.Sprintf("引用了不存在的 object_id: %s", limitList(badRefs, 10)))
	}
	if len(unknownMethods) > 0 {
		var list []string
		for m := range unknownMethods {
			list = append(list, m)
		}
		warnings = append(warnings, fmt.Sprintf("未知的检测方法: %s", limitList(list, 10)))
	}
	if badDates > 0 {
		warnings = append(warnings, fmt.Sprintf("无法解析的日期: %d 条", badDates))
	}
	if len(unknownGrades) > 0 {
		var list []string
		for g := range unknownGrades {
			list = append(list, g)
		}
		warnings = append(warnings, fmt.Sprintf("未知的质量评级: %s", limitList(list, 10)))
	}
	if len(unknownLabels) > 0 {
		var list []string
		for l := range unknownLabels {
			list = append(list, l)
		}
		warnings = append(warnings, fmt.Sprintf("未知的危险等级标注: %s", limitList(list, 10)))
	}
	if defectMissingDepth > 0 {
		warnings = append(warnings, fmt.Sprintf("缺陷记录缺少 param1（深度）: %d 条", defectMissingDepth))
	}
	return errors, warnings
}

func preview(rows []map[string]string) []map[string]string {
	if len(rows) > 10 {
		rows = rows[:10]
	}
	return rows
}

func writeImportLog(batchID, filename, table, status string, rows int, errs []string) {
	errJSON := ""
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}
	entry := models.ImportLog{
		BatchID:  batchID,
		Filename: filename,
		Table:    table,
		Status:   status,
		Rows:     rows,
		Errors:   errJSON,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("写入导入日志失败: %v", err)
	}
}

// ImportObjects 导入监测对象表，校验通过后整表替换。
// 结果总是结构化返回，解析与入库失败进入 Errors 而不是 error。
func ImportObjects(content []byte, filename string) *ImportResult {
	batchID := uuid.NewString()
	result := &ImportResult{Errors: []string{}, Warnings: []string{}, Preview: []map[string]string{}}

	header, rows, err := ReadTable(content, filename)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		writeImportLog(batchID, filename, "objects", models.ImportStatusError, 0, result.Errors)
		return result
	}
	result.Preview = preview(rows)

	errs, warns := ValidateObjects(header, rows)
	result.Errors = append(result.Errors, errs...)
	result.Warnings = append(result.Warnings, warns...)
	if len(errs) > 0 {
		writeImportLog(batchID, filename, "objects", models.ImportStatusFailed, 0, result.Errors)
		return result
	}

	assets, pipelines, parseErrs := buildAssets(rows)
	if len(parseErrs) > 0 {
		result.Errors = append(result.Errors, parseErrs...)
		writeImportLog(batchID, filename, "objects", models.ImportStatusFailed, 0, result.Errors)
		return result
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, p := range pipelines {
			if err := tx.Where(models.Pipeline{ID: p.ID}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("1 = 1").Delete(&models.Asset{}).Error; err != nil {
			return err
		}
		if len(assets) == 0 {
			return nil
		}
		return tx.CreateInBatches(assets, 200).Error
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("写入数据库失败: %v", err))
		writeImportLog(batchID, filename, "objects", models.ImportStatusError, 0, result.Errors)
		return result
	}

	result.Success = true
	result.RowsImported = len(assets)
	writeImportLog(batchID, filename, "objects", models.ImportStatusSuccess, len(assets), nil)
	NotifyImportDone("objects", filename, len(assets), len(result.Warnings))
	return result
}

// buildAssets 将行数据转换为对象模型，并收集涉及的管道
func buildAssets(rows []map[string]string) ([]models.Asset, []models.Pipeline, []string) {
	var assets []models.Asset
	var errs []string
	pipelineSet := make(map[string]bool)

	for i, row := range rows {
		id, err := strconv.ParseUint(row["object_id"], 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("第 %d 行 object_id 不是整数: %q", i+2, row["object_id"]))
			continue
		}
		lat := parseOptionalFloat(row["lat"])
		lon := parseOptionalFloat(row["lon"])
		a := models.Asset{
			ID:         uint(id),
			Name:       row["object_name"],
			Type:       row["object_type"],
			PipelineID: row["pipeline_id"],
		}
		if lat != nil {
			a.Lat = *lat
		}
		if lon != nil {
			a.Lon = *lon
		}
		assets = append(assets, a)
		if a.PipelineID != "" {
			pipelineSet[a.PipelineID] = true
		}
	}

	pipelines := make([]models.Pipeline, 0, len(pipelineSet))
	for id := range pipelineSet {
		pipelines = append(pipelines, models.Pipeline{ID: id, Name: id})
	}
	return assets, pipelines, errs
}

// ImportDiagnostics 导入诊断记录表，校验通过后整表替换。
// 引用检查针对数据库中现存的监测对象。
func ImportDiagnostics(content []byte, filename string) *ImportResult {
	batchID := uuid.NewString()
	result := &ImportResult{Errors: []string{}, Warnings: []string{}, Preview: []map[string]string{}}

	header, rows, err := ReadTable(content, filename)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		writeImportLog(batchID, filename, "diagnostics", models.ImportStatusError, 0, result.Errors)
		return result
	}
	result.Preview = preview(rows)

	var assetIDs []uint
	if err := database.DB.Model(&models.Asset{}).Pluck("id", &assetIDs).Error; err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("读取监测对象失败: %v", err))
		writeImportLog(batchID, filename, "diagnostics", models.ImportStatusError, 0, result.Errors)
		return result
	}
	known := make(map[uint]bool, len(assetIDs))
	for _, id := range assetIDs {
		known[id] = true
	}

	errs, warns := ValidateDiagnostics(header, rows, known)
	result.Errors = append(result.Errors, errs...)
	result.Warnings = append(result.Warnings, warns...)
	if len(errs) > 0 {
		writeImportLog(batchID, filename, "diagnostics", models.ImportStatusFailed, 0, result.Errors)
		return result
	}

	records, parseErrs := buildInspections(rows)
	if len(parseErrs) > 0 {
		result.Errors = append(result.Errors, parseErrs...)
		writeImportLog(batchID, filename, "diagnostics", models.ImportStatusFailed, 0, result.Errors)
		return result
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Inspection{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 200).Error
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("写入数据库失败: %v", err))
		writeImportLog(batchID, filename, "diagnostics", models.ImportStatusError, 0, result.Errors)
		return result
	}

	result.Success = true
	result.RowsImported = len(records)
	writeImportLog(batchID, filename, "diagnostics", models.ImportStatusSuccess, len(records), nil)
	NotifyImportDone("diagnostics", filename, len(records), len(result.Warnings))
	return result
}

// buildInspections 将行数据转换为诊断记录模型，日期无法解析的行被跳过
func buildInspections(rows []map[string]string) ([]models.Inspection, []string) {
	var records []models.Inspection
	var errs []string

	for i, row := range rows {
		id, err := strconv.ParseUint(row["diag_id"], 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("第 %d 行 diag_id 不是整数: %q", i+2, row["diag_id"]))
			continue
		}
		oid, err := strconv.ParseUint(row["object_id"], 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("第 %d 行 object_id 不是整数: %q", i+2, row["object_id"]))
			continue
		}
		date, ok := parseDate(row["date"])
		if !ok {
			continue
		}
		defect, ok := parseBool(row["defect_found"])
		if !ok {
			errs = append(errs, fmt.Sprintf("第 %d 行 defect_found 不是布尔值: %q", i+2, row["defect_found"]))
			continue
		}

		records = append(records, models.Inspection{
			ID:                uint(id),
			AssetID:           uint(oid),
			Method:            row["method"],
			Date:              date,
			Temperature:       parseOptionalFloat(row["temperature"]),
			Humidity:          parseOptionalFloat(row["humidity"]),
			Illumination:      parseOptionalFloat(row["illumination"]),
			DefectFound:       defect,
			DefectDescription: row["defect_description"],
			QualityGrade:      row["quality_grade"],
			Depth:             parseOptionalFloat(row["param1"]),
			Length:            parseOptionalFloat(row["param2"]),
			Width:             parseOptionalFloat(row["param3"]),
			Label:             row["ml_label"],
		})
	}
	return records, errs
}

// GetImportLogs 读取最近的导入日志
func GetImportLogs(limit int) ([]models.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.ImportLog
	err := database.DB.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
