package main

import (
	"time"

	"github.com/shudian-next/internal/config"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 图书
	books := []models.Book{
		{Title: "深入理解计算机系统", SalePrice: models.NewMoneyFromInt(15000), Stock: 50},
		{Title: "Go 程序设计语言", SalePrice: models.NewMoneyFromInt(20000), Stock: 80},
		{Title: "代码整洁之道", SalePrice: models.NewMoneyFromInt(10000), Stock: 120},
		{Title: "设计数据密集型应用", SalePrice: models.NewMoneyFromInt(25000), Stock: 40},
	}
	for i := range books {
		if err := models.DB.Where("title = ?", books[i].Title).FirstOrCreate(&books[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed book: %v", err)
		}
	}

	// 包装
	wraps := []models.Wrap{
		{Name: "礼品包装", Cost: models.NewMoneyFromInt(500)},
		{Name: "防压纸盒", Cost: models.NewMoneyFromInt(300)},
	}
	for i := range wraps {
		if err := models.DB.Where("name = ?", wraps[i].Name).FirstOrCreate(&wraps[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed wrap: %v", err)
		}
	}

	// 用户与会员等级
	user := models.User{Email: "reader@example.com", Name: "测试读者", Phone: "13800000000"}
	if err := models.DB.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
		stdLog.Fatalf("Failed to seed user: %v", err)
	}
	rank := models.UserRank{
		UserID:        user.ID,
		RankName:      "普通会员",
		PointRate:     decimal.NewFromFloat(0.01),
		EffectiveFrom: time.Now().AddDate(0, -1, 0),
	}
	if err := models.DB.Where("user_id = ? AND rank_name = ?", rank.UserID, rank.RankName).
		FirstOrCreate(&rank).Error; err != nil {
		stdLog.Fatalf("Failed to seed user rank: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Fatalf("Failed to seed admin: %v", err)
	}

	stdLog.Println("Seed data loaded")
}
