package api

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"integrity/config"
	"integrity/database"
	"integrity/models"
	"integrity/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ReportHandler 报表处理器
type ReportHandler struct{}

// NewReportHandler 创建报表处理器
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

type methodCount struct {
	Method string
	Count  int
}

type highRiskRow struct {
	Diag       models.Inspection
	ObjectName string
	PipelineID string
}

type defectCountRow struct {
	ObjectID    uint
	ObjectName  string
	ObjectType  string
	PipelineID  string
	DefectCount int
}

// reportData 报表数据集合，HTML 与 XLSX 两个出口共用
type reportData struct {
	Title            string
	GeneratedAt      time.Time
	TotalInspections int
	TotalDefects     int
	DefectRate       float64
	RiskNormal       int
	RiskMedium       int
	RiskHigh         int
	HighRiskDefects  []highRiskRow
	TopDefectObjects []defectCountRow
	Methods          []methodCount
}

// collectReportData 汇总报表数据，pipelineID 为空时覆盖全系统
func collectReportData(pipelineID string) (*reportData, error) {
	data := &reportData{
		Title:       "管道完整性系统总报表",
		GeneratedAt: time.Now(),
	}

	query := database.DB.Model(&models.Inspection{}).Preload("Asset")
	if pipelineID != "" {
		var pipeline models.Pipeline
		if err := database.DB.First(&pipeline, "id = ?", pipelineID).Error; err != nil {
			return nil, fmt.Errorf("管道不存在: %s", pipelineID)
		}
		data.Title = fmt.Sprintf("管道 %s（%s）报表", pipeline.Name, pipeline.ID)
		query = query.Where("asset_id IN (?)",
			database.DB.Model(&models.Asset{}).Select("id").Where("pipeline_id = ?", pipelineID))
	}

	var diags []models.Inspection
	if err := query.Order("date DESC, id DESC").Find(&diags).Error; err != nil {
		return nil, err
	}

	data.TotalInspections = len(diags)
	methods := map[string]int{}
	defectsByObject := map[uint]*defectCountRow{}

	for _, d := range diags {
		methods[d.Method]++
		switch d.Label {
		case models.LabelNormal:
			data.RiskNormal++
		case models.LabelMedium:
			data.RiskMedium++
		case models.LabelHigh:
			data.RiskHigh++
		}
		if d.Label == models.LabelHigh && len(data.HighRiskDefects) < 20 {
			data.HighRiskDefects = append(data.HighRiskDefects, highRiskRow{
				Diag:       d,
				ObjectName: d.Asset.Name,
				PipelineID: d.Asset.PipelineID,
			})
		}
		if d.DefectFound {
			data.TotalDefects++
			row, ok := defectsByObject[d.AssetID]
			if !ok {
				row = &defectCountRow{
					ObjectID:   d.AssetID,
					ObjectName: d.Asset.Name,
					ObjectType: d.Asset.Type,
					PipelineID: d.Asset.PipelineID,
				}
				defectsByObject[d.AssetID] = row
			}
			row.DefectCount++
		}
	}

	if data.TotalInspections > 0 {
		rate := float64(data.TotalDefects) / float64(data.TotalInspections) * 100
		data.DefectRate = math.Round(rate*100) / 100
	}

	for _, row := range defectsByObject {
		data.TopDefectObjects = append(data.TopDefectObjects, *row)
	}
	sort.Slice(data.TopDefectObjects, func(i, j int) bool {
		if data.TopDefectObjects[i].DefectCount == data.TopDefectObjects[j].DefectCount {
			return data.TopDefectObjects[i].ObjectID < data.TopDefectObjects[j].ObjectID
		}
		return data.TopDefectObjects[i].DefectCount > data.TopDefectObjects[j].DefectCount
	})
	if len(data.TopDefectObjects) > 10 {
		data.TopDefectObjects = data.TopDefectObjects[:10]
	}

	for m, n := range methods {
		data.Methods = append(data.Methods, methodCount{Method: m, Count: n})
	}
	sort.Slice(data.Methods, func(i, j int) bool {
		if data.Methods[i].Count == data.Methods[j].Count {
			return data.Methods[i].Method < data.Methods[j].Method
		}
		return data.Methods[i].Count > data.Methods[j].Count
	})

	return data, nil
}

// HTMLReport 生成 HTML 报表
// @Summary HTML 报表
// @Description 总量、缺陷率、危险等级分布、最近高危缺陷、缺陷对象排行与方法分布，可直接打印
// @Tags 报表
// @Produce html
// @Param pipeline_id query string false "管道 ID（为空时输出全系统报表）"
// @Success 200 {string} string "HTML 报表"
// @Router /api/v1/report [get]
func (h *ReportHandler) HTMLReport(c *gin.Context) {
	data, err := collectReportData(c.Query("pipeline_id"))
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "生成报表失败"))
		return
	}

	service.NotifyReportGenerated("HTML", c.Query("pipeline_id"))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(renderHTMLReport(data)))
}

func renderHTMLReport(data *reportData) string {
	var highRiskRows strings.Builder
	for _, r := range data.HighRiskDefects {
		depth := "-"
		if r.Diag.Depth != nil {
			depth = fmt.Sprintf("%.1f", *r.Diag.Depth)
		}
		highRiskRows.WriteString(fmt.Sprintf(
			"<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			r.Diag.ID, r.ObjectName, r.PipelineID, r.Diag.Method,
			r.Diag.Date.Format("2006-01-02"), depth, r.Diag.QualityGrade))
	}
	if highRiskRows.Len() == 0 {
		highRiskRows.WriteString(`<tr><td colspan="7" class="empty">没有高危缺陷记录</td></tr>`)
	}

	var topDefectRows strings.Builder
	for _, r := range data.TopDefectObjects {
		topDefectRows.WriteString(fmt.Sprintf(
			"<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>\n",
			r.ObjectID, r.ObjectName, r.ObjectType, r.PipelineID, r.DefectCount))
	}
	if topDefectRows.Len() == 0 {
		topDefectRows.WriteString(`<tr><td colspan="5" class="empty">没有缺陷记录</td></tr>`)
	}

	var methodRows strings.Builder
	for _, m := range data.Methods {
		methodRows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td></tr>\n", m.Method, m.Count))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="zh">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Microsoft YaHei', 'Segoe UI', sans-serif; line-height: 1.6; color: #333; background: #f5f5f5; padding: 20px; }
        .container { max-width: 1200px; margin: 0 auto; background: white; padding: 40px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .header { text-align: center; margin-bottom: 40px; border-bottom: 3px solid #2c3e50; padding-bottom: 20px; }
        .header h1 { color: #2c3e50; font-size: 2em; margin-bottom: 10px; }
        .header .date { color: #7f8c8d; font-size: 0.9em; }
        .stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin: 30px 0; }
        .stat-card { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 20px; border-radius: 8px; text-align: center; }
        .stat-card.green { background: linear-gradient(135deg, #11998e 0%%, #38ef7d 100%%); }
        .stat-card.yellow { background: linear-gradient(135deg, #f093fb 0%%, #f5576c 100%%); }
        .stat-card.red { background: linear-gradient(135deg, #fa709a 0%%, #fee140 100%%); }
        .stat-card h3 { font-size: 2.5em; margin-bottom: 5px; }
        .stat-card p { font-size: 0.9em; opacity: 0.9; }
        .section { margin: 40px 0; }
        .section h2 { color: #2c3e50; border-left: 4px solid #2563eb; padding-left: 12px; margin-bottom: 16px; }
        table { width: 100%%; border-collapse: collapse; margin-top: 10px; }
        th, td { border: 1px solid #e5e7eb; padding: 10px 12px; text-align: left; font-size: 14px; }
        th { background: #f9fafb; color: #374151; }
        tr:nth-child(even) { background: #fafafa; }
        .empty { text-align: center; color: #9ca3af; }
        @media print { body { background: white; padding: 0; } .container { box-shadow: none; } }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
            <p class="date">生成时间: %s</p>
        </div>
        <div class="stats-grid">
            <div class="stat-card"><h3>%d</h3><p>检测总数</p></div>
            <div class="stat-card yellow"><h3>%d</h3><p>缺陷总数</p></div>
            <div class="stat-card green"><h3>%.2f%%</h3><p>缺陷率</p></div>
            <div class="stat-card red"><h3>%d</h3><p>高危记录</p></div>
        </div>
        <div class="section">
            <h2>危险等级分布</h2>
            <table>
                <tr><th>normal</th><th>medium</th><th>high</th></tr>
                <tr><td>%d</td><td>%d</td><td>%d</td></tr>
            </table>
        </div>
        <div class="section">
            <h2>最近高危缺陷（前 20 条）</h2>
            <table>
                <tr><th>记录 ID</th><th>监测对象</th><th>管道</th><th>方法</th><th>日期</th><th>深度 (%% 壁厚)</th><th>质量评级</th></tr>
                %s
            </table>
        </div>
        <div class="section">
            <h2>缺陷数排行（前 10 个对象）</h2>
            <table>
                <tr><th>对象 ID</th><th>名称</th><th>类型</th><th>管道</th><th>缺陷数</th></tr>
                %s
            </table>
        </div>
        <div class="section">
            <h2>检测方法分布</h2>
            <table>
                <tr><th>方法</th><th>次数</th></tr>
                %s
            </table>
        </div>
    </div>
</body>
</html>
`, data.Title, data.Title, data.GeneratedAt.Format("2006-01-02 15:04:05"),
		data.TotalInspections, data.TotalDefects, data.DefectRate, data.RiskHigh,
		data.RiskNormal, data.RiskMedium, data.RiskHigh,
		highRiskRows.String(), topDefectRows.String(), methodRows.String())
}

// ExcelReport 导出 XLSX 报表
// @Summary XLSX 报表导出
// @Tags 报表
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param pipeline_id query string false "管道 ID（为空时导出全系统报表）"
// @Success 200 {file} binary "XLSX 文件"
// @Router /api/v1/report/excel [get]
func (h *ReportHandler) ExcelReport(c *gin.Context) {
	data, err := collectReportData(c.Query("pipeline_id"))
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "生成报表失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "完整性报表"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 16)
	f.SetColWidth(sheetName, "G", "G", 16)

	// 标题与汇总
	f.SetCellValue(sheetName, "A1", data.Title)
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "G1", titleStyle)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("生成时间: %s", data.GeneratedAt.Format("2006-01-02 15:04:05")))
	f.MergeCell(sheetName, "A2", "G2")

	f.SetCellValue(sheetName, "A4", "检测总数")
	f.SetCellValue(sheetName, "B4", data.TotalInspections)
	f.SetCellValue(sheetName, "C4", "缺陷总数")
	f.SetCellValue(sheetName, "D4", data.TotalDefects)
	f.SetCellValue(sheetName, "E4", "缺陷率 (%)")
	f.SetCellValue(sheetName, "F4", data.DefectRate)
	f.SetCellValue(sheetName, "A5", "normal")
	f.SetCellValue(sheetName, "B5", data.RiskNormal)
	f.SetCellValue(sheetName, "C5", "medium")
	f.SetCellValue(sheetName, "D5", data.RiskMedium)
	f.SetCellValue(sheetName, "E5", "high")
	f.SetCellValue(sheetName, "F5", data.RiskHigh)

	// 高危缺陷明细
	headers := []string{"记录 ID", "监测对象", "管道", "方法", "日期", "深度 (% 壁厚)", "质量评级"}
	headerRow := 7
	for i, header := range headers {
		cell := fmt.Sprintf("%c%d", 'A'+i, headerRow)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for i, r := range data.HighRiskDefects {
		row := headerRow + 1 + i
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Diag.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.ObjectName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.PipelineID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Diag.Method)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Diag.Date.Format("2006-01-02"))
		if r.Diag.Depth != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), *r.Diag.Depth)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Diag.QualityGrade)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), dataStyle)
	}

	service.NotifyReportGenerated("XLSX", c.Query("pipeline_id"))

	filename := fmt.Sprintf("完整性报表_%s.xlsx", data.GeneratedAt.Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
}
