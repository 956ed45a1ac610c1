package api

import (
	"log"

	"integrity/analytics"
	"integrity/config"
	"integrity/database"
	"integrity/models"
	"integrity/service"

	"github.com/gin-gonic/gin"
)

// PredictHandler 危险等级预测与模型训练处理器
type PredictHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewPredictHandler 创建预测处理器
func NewPredictHandler(cfg *config.Config) *PredictHandler {
	return &PredictHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// PredictRequest 预测请求，字段与诊断记录的观测值一致
type PredictRequest struct {
	ObjectID     uint    `json:"object_id"` // 可选，仅用于高危告警关联
	DefectFound  bool    `json:"defect_found"`
	Depth        float64 `json:"param1"`
	Length       float64 `json:"param2"`
	Width        float64 `json:"param3"`
	QualityGrade string  `json:"quality_grade"`
	Method       string  `json:"method"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Illumination float64 `json:"illumination"`
}

// Predict 预测缺陷危险等级
// @Summary 危险等级预测
// @Description 模型已训练时走随机森林，否则走规则回退；结果含各类别概率与模型来源
// @Tags 预测
// @Accept json
// @Produce json
// @Param request body PredictRequest true "观测值"
// @Success 200 {object} Response{data=analytics.Prediction}
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/ml/predict [post]
func (h *PredictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	o := analytics.Observation{
		Depth:        req.Depth,
		Length:       req.Length,
		Width:        req.Width,
		QualityGrade: req.QualityGrade,
		DefectFound:  req.DefectFound,
		Method:       req.Method,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		Illumination: req.Illumination,
	}
	pred := analytics.Current().Predict(o)

	if pred.Label == models.LabelHigh && req.ObjectID != 0 {
		h.alertHighRisk(req, &pred)
	}

	Success(c, pred)
}

// alertHighRisk 高危结果写通知并按配置发告警邮件
func (h *PredictHandler) alertHighRisk(req PredictRequest, pred *analytics.Prediction) {
	var asset models.Asset
	if err := database.DB.First(&asset, req.ObjectID).Error; err != nil {
		return
	}

	rec := models.Inspection{
		AssetID:      asset.ID,
		Method:       req.Method,
		DefectFound:  req.DefectFound,
		QualityGrade: req.QualityGrade,
		Depth:        &req.Depth,
	}
	service.NotifyHighRiskDefect(&asset, &rec, pred)

	if h.cfg.Email.Enabled {
		go func() {
			if err := h.emailService.SendHighRiskAlert(&asset, &rec, pred); err != nil {
				log.Printf("发送高危告警邮件失败: %v", err)
			}
		}()
	}
}

// Train 在全部历史数据上重训模型
// @Summary 模型重训
// @Description 加载全部诊断记录重训分类器，完成后原子替换线上模型并写通知
// @Tags 预测
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=analytics.TrainResult}
// @Failure 500 {object} Response "服务器错误"
// @Router /admin/ml/train [post]
func (h *PredictHandler) Train(c *gin.Context) {
	var history []models.Inspection
	if err := database.DB.Find(&history).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "加载诊断记录失败"))
		return
	}

	classifier, result := analytics.TrainClassifier(history)
	if result.Trained {
		analytics.Replace(classifier)
		log.Printf("模型重训完成: 样本 %d 条, 训练集准确率 %.3f, 保留集准确率 %.3f",
			result.SampleCount, result.TrainAccuracy, result.TestAccuracy)
	} else {
		log.Printf("模型重训跳过: 样本不足 (%d 条)", result.SampleCount)
	}

	service.NotifyTrainingDone(result)
	if result.Trained && h.cfg.Email.Enabled {
		go func() {
			if err := h.emailService.SendTrainingReport(result); err != nil {
				log.Printf("发送训练报告邮件失败: %v", err)
			}
		}()
	}

	Success(c, result)
}
