package database

import (
	"fmt"
	"log"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 建表并播种默认徽章，测试环境对 sqlite 复用同一套逻辑
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Learner{},
		&model.Lesson{},
		&model.MasteryState{},
		&model.WeakArea{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAttempt{},
		&model.LessonProgress{},
		&model.LedgerEvent{},
		&model.Badge{},
		&model.BadgeAward{},
	)
	if err != nil {
		return err
	}

	// 默认徽章：带阈值的判定谓词，规则数据驱动
	var count int64
	db.Model(&model.Badge{}).Count(&count)
	if count == 0 {
		defaultBadges := []model.Badge{
			{Code: "first_quiz", Name: "初试锋芒", Description: "完成第一次测验", Criterion: model.CriterionQuizAttempts, Threshold: 1, XPReward: 10},
			{Code: "quiz_10", Name: "勤学不辍", Description: "完成10次测验", Criterion: model.CriterionQuizAttempts, Threshold: 10, XPReward: 30},
			{Code: "perfect_1", Name: "完美一击", Description: "第一次满分测验", Criterion: model.CriterionPerfectQuizzes, Threshold: 1, XPReward: 20},
			{Code: "perfect_10", Name: "十全十美", Description: "10次满分测验", Criterion: model.CriterionPerfectQuizzes, Threshold: 10, XPReward: 100},
			{Code: "streak_3", Name: "小试身手", Description: "连续学习3天", Criterion: model.CriterionStreakDays, Threshold: 3, XPReward: 15},
			{Code: "streak_7", Name: "七日之约", Description: "连续学习7天", Criterion: model.CriterionStreakDays, Threshold: 7, XPReward: 40},
			{Code: "streak_30", Name: "月度常客", Description: "连续学习30天", Criterion: model.CriterionStreakDays, Threshold: 30, XPReward: 150},
			{Code: "xp_1000", Name: "崭露头角", Description: "累计获得1000经验", Criterion: model.CriterionXPTotal, Threshold: 1000, XPReward: 50},
			{Code: "xp_10000", Name: "学海泛舟", Description: "累计获得10000经验", Criterion: model.CriterionXPTotal, Threshold: 10000, XPReward: 200},
			{Code: "mastery_80", Name: "渐入佳境", Description: "任一学科掌握度达到80", Criterion: model.CriterionMasteryLevel, Threshold: 80, XPReward: 60},
			{Code: "mastery_95", Name: "炉火纯青", Description: "任一学科掌握度达到95", Criterion: model.CriterionMasteryLevel, Threshold: 95, XPReward: 120},
		}
		for _, b := range defaultBadges {
			badge := b
			badge.Enabled = true
			db.Create(&badge)
		}
	}

	return nil
}
