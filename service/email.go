package service

import (
	"fmt"

	"integrity/analytics"
	"integrity/config"
	"integrity/models"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务（高危缺陷告警与训练报告通知）
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendHighRiskAlert 发送高危缺陷告警邮件，收件人取配置中的告警列表
func (s *EmailService) SendHighRiskAlert(asset *models.Asset, rec *models.Inspection, pred *analytics.Prediction) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 INTEGRITY_EMAIL_ENABLED=true")
	}
	if len(s.cfg.AlertTo) == 0 {
		return fmt.Errorf("未配置告警收件人")
	}

	subject := fmt.Sprintf("【管道完整性】高危缺陷告警: %s", asset.Name)
	body := s.generateAlertBody(asset, rec, pred)

	return s.sendEmail(s.cfg.AlertTo, subject, body)
}

// generateAlertBody 生成告警邮件内容
func (s *EmailService) generateAlertBody(asset *models.Asset, rec *models.Inspection, pred *analytics.Prediction) string {
	depth := 0.0
	if rec.Depth != nil {
		depth = *rec.Depth
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #dc2626, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        th, td { border: 1px solid #e5e7eb; padding: 10px 12px; text-align: left; font-size: 14px; }
        th { background: #f9fafb; color: #374151; width: 35%%; }
        .warning { background: #fef2f2; border-left: 4px solid #dc2626; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .warning p { margin: 0; color: #991b1b; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚠️ 高危缺陷告警</h1>
        </div>
        <div class="content">
            <p>系统在以下监测对象上检出 <strong>high</strong> 级危险缺陷：</p>
            <table>
                <tr><th>监测对象</th><td>%s (ID: %d)</td></tr>
                <tr><th>所属管道</th><td>%s</td></tr>
                <tr><th>检测方法</th><td>%s</td></tr>
                <tr><th>检测日期</th><td>%s</td></tr>
                <tr><th>缺陷深度</th><td>%.1f%% 壁厚</td></tr>
                <tr><th>质量评级</th><td>%s</td></tr>
                <tr><th>模型置信度</th><td>%.1f%% (%s)</td></tr>
            </table>
            <div class="warning">
                <p>⚠️ 请尽快安排计划外检测并评估修复方案。</p>
            </div>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 管道完整性监测系统</p>
        </div>
    </div>
</body>
</html>
`, asset.Name, asset.ID, asset.PipelineID, rec.Method,
		rec.Date.Format("2006-01-02"), depth, rec.QualityGrade,
		pred.Confidence, pred.ModelType)
}

// SendTrainingReport 发送模型训练完成通知
func (s *EmailService) SendTrainingReport(res *analytics.TrainResult) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}
	if len(s.cfg.AlertTo) == 0 {
		return fmt.Errorf("未配置告警收件人")
	}

	subject := "【管道完整性】缺陷分类模型重训完成"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 模型重训完成</h2>
    <p>训练样本数: <strong>%d</strong></p>
    <p>训练集准确率: <strong>%.2f%%</strong></p>
    <p>保留集准确率: <strong>%.2f%%</strong></p>
    <p style="color: #666;">—— 管道完整性监测系统</p>
</body>
</html>
`, res.SampleCount, res.TrainAccuracy*100, res.TestAccuracy*100)

	return s.sendEmail(s.cfg.AlertTo, subject, body)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to []string, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
