package database

import (
	"encoding/json"
	"fmt"
	"log"
	"safa_quest_backend/internal/config"
	"safa_quest_backend/internal/model"

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

	err = db.AutoMigrate(
		&model.User{},
		&model.Student{},
		&model.Quest{},
		&model.QuestAttempt{},
		&model.Guild{},
		&model.Badge{},
		&model.UserBadge{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// seedDefaults 空表时写入演示内容，保证新环境开箱即有任务链可玩
func seedDefaults(db *gorm.DB) {
	var questCount int64
	db.Model(&model.Quest{}).Count(&questCount)
	if questCount == 0 {
		defaultQuests := []model.Quest{
			{
				Title:      "Algebra Fundamentals",
				Subject:    "Mathematics",
				Duration:   "15 min",
				Difficulty: model.QuestDifficultyEasy,
				GradeLevel: 7,
				XPReward:   50,
				SkillTags:  json.RawMessage(`["algebra","equations"]`),
				Steps: json.RawMessage(`[
					{"kind":"multiple_choice","question":"What is the capital of France?","options":["London","Berlin","Paris","Madrid"],"correct":2,"hint":"Think about the city known for the Eiffel Tower!"},
					{"kind":"multiple_choice","question":"Which planet is known as the Red Planet?","options":["Venus","Mars","Jupiter","Saturn"],"correct":1,"hint":"This planet is named after the Roman god of war."},
					{"kind":"text","question":"Name one renewable energy source.","hint":"Think about energy from the sun, wind, or water."}
				]`),
			},
			{
				Title:      "Poetry Analysis",
				Subject:    "Arabic Literature",
				Duration:   "20 min",
				Difficulty: model.QuestDifficultyMedium,
				GradeLevel: 7,
				XPReward:   75,
				SkillTags:  json.RawMessage(`["reading","analysis"]`),
				Steps: json.RawMessage(`[
					{"kind":"multiple_choice","question":"Which device compares two things using like or as?","options":["Metaphor","Simile","Alliteration","Hyperbole"],"correct":1,"hint":"It makes the comparison explicit."},
					{"kind":"text","question":"Describe the mood of the poem in one sentence.","hint":"Think about how the imagery makes you feel."}
				]`),
			},
			{
				Title:      "Chemical Reactions",
				Subject:    "Science",
				Duration:   "25 min",
				Difficulty: model.QuestDifficultyHard,
				GradeLevel: 7,
				XPReward:   100,
				SkillTags:  json.RawMessage(`["chemistry","reactions"]`),
				Steps: json.RawMessage(`[
					{"kind":"multiple_choice","question":"What gas is produced when an acid reacts with a metal?","options":["Oxygen","Carbon dioxide","Hydrogen","Nitrogen"],"correct":2,"hint":"It is the lightest element."},
					{"kind":"multiple_choice","question":"Which of these indicates a chemical change?","options":["Melting ice","Color change with gas release","Dissolving sugar","Boiling water"],"correct":1,"hint":"Look for a new substance being formed."},
					{"kind":"text","question":"Give one everyday example of a chemical reaction.","hint":"Think about cooking or rust."}
				]`),
			},
		}
		for i := range defaultQuests {
			db.Create(&defaultQuests[i])
		}
	}

	var guildCount int64
	db.Model(&model.Guild{}).Count(&guildCount)
	if guildCount == 0 {
		defaultGuilds := []model.Guild{
			{Name: "Knowledge Seekers", MemberCount: 12, SharedXP: 15800, RankInClass: 3},
			{Name: "Quest Masters", MemberCount: 10, SharedXP: 17200, RankInClass: 1},
			{Name: "Star Scholars", MemberCount: 11, SharedXP: 16400, RankInClass: 2},
		}
		for i := range defaultGuilds {
			db.Create(&defaultGuilds[i])
		}
	}

	var badgeCount int64
	db.Model(&model.Badge{}).Count(&badgeCount)
	if badgeCount == 0 {
		defaultBadges := []model.Badge{
			{Name: "First Steps", Description: "完成第一个任务", Icon: "footprints", Criteria: json.RawMessage(`{"completedQuests":1}`)},
			{Name: "Rising Star", Description: "达到5级", Icon: "star", Criteria: json.RawMessage(`{"level":5}`)},
			{Name: "Week Warrior", Description: "连续学习7天", Icon: "flame", Criteria: json.RawMessage(`{"streakDays":7}`)},
		}
		for i := range defaultBadges {
			db.Create(&defaultBadges[i])
		}
	}
}
