package database

import (
	"fmt"
	"log"

	"integrity/config"
	"integrity/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Pipeline{},
		&models.Asset{},
		&models.Inspection{},
		&models.Notification{},
		&models.ImportLog{},
	); err != nil {
		return err
	}

	// 初始化默认管理员（仅当用户表为空时）
	var userCount int64
	DB.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err == nil {
			_ = DB.Create(&models.User{
				Username: "admin",
				Password: string(hashed),
				IsAdmin:  true,
				Status:   models.UserStatusActive,
			}).Error
			log.Println("已创建默认管理员账号 admin（请尽快修改密码）")
		}
	}

	// 初始化默认管道（仅当表为空时，正式数据通过导入替换）
	var pipelineCount int64
	DB.Model(&models.Pipeline{}).Count(&pipelineCount)
	if pipelineCount == 0 {
		defaults := []models.Pipeline{
			{ID: "MG-1", Name: "一号干线"},
			{ID: "MG-2", Name: "二号干线"},
			{ID: "MG-3", Name: "三号干线"},
		}
		_ = DB.Create(&defaults).Error
	}

	log.Println("数据库初始化成功")
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
