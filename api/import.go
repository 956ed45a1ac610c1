package api

import (
	"io"
	"log"
	"strconv"

	"integrity/analytics"
	"integrity/config"
	"integrity/database"
	"integrity/models"
	"integrity/service"

	"github.com/gin-gonic/gin"
)

// 上传文件大小上限 20MB
const maxImportSize = 20 << 20

// ImportHandler 数据导入处理器
type ImportHandler struct{}

// NewImportHandler 创建数据导入处理器
func NewImportHandler() *ImportHandler {
	return &ImportHandler{}
}

// readUpload 读取 multipart 表单中的 file 字段
func readUpload(c *gin.Context) ([]byte, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件（file 字段）")
		return nil, "", false
	}
	if fh.Size > maxImportSize {
		BadRequest(c, "文件过大（上限 20MB）")
		return nil, "", false
	}

	f, err := fh.Open()
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "读取上传文件失败"))
		return nil, "", false
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "读取上传文件失败"))
		return nil, "", false
	}
	return content, fh.Filename, true
}

// ImportObjects 导入监测对象表
// @Summary 导入监测对象
// @Description 上传 CSV/XLSX，校验通过后整表替换监测对象
// @Tags 数据导入
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV 或 XLSX 文件"
// @Success 200 {object} Response{data=service.ImportResult}
// @Failure 400 {object} Response "文件缺失或格式错误"
// @Router /admin/import/objects [post]
func (h *ImportHandler) ImportObjects(c *gin.Context) {
	content, filename, ok := readUpload(c)
	if !ok {
		return
	}

	result := service.ImportObjects(content, filename)
	if !result.Success {
		SuccessWithMessage(c, "导入未完成，请检查错误信息", result)
		return
	}
	SuccessWithMessage(c, "导入成功", result)
}

// ImportDiagnostics 导入诊断记录表
// @Summary 导入诊断记录
// @Description 上传 CSV/XLSX，校验通过后整表替换诊断记录，成功后自动重训分类模型
// @Tags 数据导入
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV 或 XLSX 文件"
// @Success 200 {object} Response{data=service.ImportResult}
// @Failure 400 {object} Response "文件缺失或格式错误"
// @Router /admin/import/diagnostics [post]
func (h *ImportHandler) ImportDiagnostics(c *gin.Context) {
	content, filename, ok := readUpload(c)
	if !ok {
		return
	}

	result := service.ImportDiagnostics(content, filename)
	if !result.Success {
		SuccessWithMessage(c, "导入未完成，请检查错误信息", result)
		return
	}

	// 数据已变化，在新数据上重训模型
	var history []models.Inspection
	if err := database.DB.Find(&history).Error; err != nil {
		log.Printf("导入后加载诊断记录失败，跳过重训: %v", err)
	} else {
		classifier, trainResult := analytics.TrainClassifier(history)
		if trainResult.Trained {
			analytics.Replace(classifier)
			log.Printf("导入后模型重训完成: 样本 %d 条, 保留集准确率 %.3f",
				trainResult.SampleCount, trainResult.TestAccuracy)
		} else {
			log.Printf("导入后模型重训跳过: 样本不足 (%d 条)", trainResult.SampleCount)
		}
		service.NotifyTrainingDone(trainResult)
	}

	SuccessWithMessage(c, "导入成功", result)
}

// GetImportLogs 查询导入日志
// @Summary 导入日志
// @Tags 数据导入
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数（默认 50）"
// @Success 200 {object} Response{data=[]models.ImportLog}
// @Router /admin/import/logs [get]
func (h *ImportHandler) GetImportLogs(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			BadRequest(c, "limit 不合法")
			return
		}
		limit = n
	}

	logs, err := service.GetImportLogs(limit)
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询导入日志失败"))
		return
	}
	Success(c, logs)
}
