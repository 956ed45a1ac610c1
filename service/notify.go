package service

import (
	"encoding/json"
	"fmt"
	"log"

	"integrity/analytics"
	"integrity/database"
	"integrity/models"
)

// CreateNotification 写入一条站内通知，metadata 序列化为 JSON 存储。
// 通知失败只记日志不向上传播，不能因为通知问题阻断主流程。
func CreateNotification(message, ntype string, metadata map[string]interface{}) {
	meta := ""
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("通知元数据序列化失败: %v", err)
		} else {
			meta = string(b)
		}
	}

	n := models.Notification{
		Message:  message,
		Type:     ntype,
		Metadata: meta,
	}
	if err := database.DB.Create(&n).Error; err != nil {
		log.Printf("写入通知失败: %v", err)
	}
}

// NotifyHighRiskDefect 高危缺陷检出通知
func NotifyHighRiskDefect(asset *models.Asset, rec *models.Inspection, pred *analytics.Prediction) {
	depth := 0.0
	if rec.Depth != nil {
		depth = *rec.Depth
	}
	msg := fmt.Sprintf("对象「%s」检出高危缺陷（深度 %.1f%% 壁厚，置信度 %.1f%%）",
		asset.Name, depth, pred.Confidence)
	CreateNotification(msg, models.NotifyError, map[string]interface{}{
		"object_id":   asset.ID,
		"diag_id":     rec.ID,
		"pipeline_id": asset.PipelineID,
		"ml_label":    pred.Label,
		"confidence":  pred.Confidence,
	})
}

// NotifyTrainingDone 模型训练完成通知
func NotifyTrainingDone(res *analytics.TrainResult) {
	if !res.Trained {
		CreateNotification(
			fmt.Sprintf("模型训练跳过：带标注缺陷样本不足（%d 条，至少需要 %d 条）",
				res.SampleCount, analytics.MinTrainSamples),
			models.NotifyWarning, map[string]interface{}{
				"n_samples": res.SampleCount,
			})
		return
	}
	CreateNotification(
		fmt.Sprintf("缺陷分类模型重训完成：样本 %d 条，保留集准确率 %.1f%%",
			res.SampleCount, res.TestAccuracy*100),
		models.NotifySuccess, map[string]interface{}{
			"n_samples":      res.SampleCount,
			"train_accuracy": res.TrainAccuracy,
			"test_accuracy":  res.TestAccuracy,
		})
}

// NotifyImportDone 数据导入完成通知
func NotifyImportDone(table, filename string, rows int, warnings int) {
	ntype := models.NotifySuccess
	if warnings > 0 {
		ntype = models.NotifyWarning
	}
	CreateNotification(
		fmt.Sprintf("数据导入完成：%s 导入 %d 行（警告 %d 条）", filename, rows, warnings),
		ntype, map[string]interface{}{
			"table":    table,
			"filename": filename,
			"rows":     rows,
			"warnings": warnings,
		})
}

// NotifyReportGenerated 报表生成通知
func NotifyReportGenerated(kind string, pipelineID string) {
	msg := fmt.Sprintf("已生成%s报表", kind)
	if pipelineID != "" {
		msg = fmt.Sprintf("已生成管道 %s 的%s报表", pipelineID, kind)
	}
	CreateNotification(msg, models.NotifyInfo, map[string]interface{}{
		"kind":        kind,
		"pipeline_id": pipelineID,
	})
}
