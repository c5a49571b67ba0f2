package storage

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resume-match-go/internal/storage/models"
)

// testSchema 内存库的建表语句，列名与GORM模型对应
// sqlite不支持MySQL的datetime(6)默认值，表结构在这里手工声明
var testSchema = []string{
	`CREATE TABLE resume_analyses (
		analysis_id TEXT PRIMARY KEY,
		application_id TEXT NOT NULL UNIQUE,
		raw_text_excerpt TEXT,
		confidence_score REAL NOT NULL DEFAULT 0,
		processed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE extracted_skills (
		skill_db_id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		skill_name TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		source TEXT,
		context TEXT,
		UNIQUE (analysis_id, skill_name)
	)`,
	`CREATE TABLE extracted_experiences (
		experience_db_id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		position TEXT,
		company TEXT,
		duration TEXT,
		description TEXT,
		confidence REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE extracted_educations (
		education_db_id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		degree TEXT,
		institution TEXT,
		field_of_study TEXT,
		graduation_year TEXT,
		confidence REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE resume_match_scores (
		match_db_id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		overall_score REAL NOT NULL DEFAULT 0,
		skills_score REAL NOT NULL DEFAULT 0,
		experience_score REAL NOT NULL DEFAULT 0,
		education_score REAL NOT NULL DEFAULT 0,
		text_similarity_score REAL NOT NULL DEFAULT 0,
		details_json TEXT,
		matched_at DATETIME,
		UNIQUE (analysis_id, job_id)
	)`,
	`CREATE TABLE jobs (
		job_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		requirements TEXT,
		skills_required_json TEXT,
		status TEXT DEFAULT 'ACTIVE',
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

func newTestMySQL(t *testing.T) *MySQL {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，限制为单连接
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range testSchema {
		require.NoError(t, db.Exec(ddl).Error)
	}

	return &MySQL{db: db}
}

func TestStoreAnalysisIdempotent(t *testing.T) {
	m := newTestMySQL(t)
	ctx := context.Background()

	first := &models.ResumeAnalysis{
		AnalysisID:      "analysis-1",
		ApplicationID:   "app-1",
		RawTextExcerpt:  "first pass",
		ConfidenceScore: 0.5,
		ProcessedAt:     time.Now(),
	}
	require.NoError(t, m.StoreAnalysis(ctx, first,
		[]models.ExtractedSkill{
			{SkillName: "Python", Confidence: 0.8, Source: "pattern_match"},
			{SkillName: "Go", Confidence: 0.8, Source: "pattern_match"},
		},
		[]models.ExtractedExperience{
			{Position: "Engineer", Company: "Acme", Duration: "2018-2023", Confidence: 0.7},
		},
		[]models.ExtractedEducation{
			{Degree: "Bachelor of Science", Institution: "UW", Confidence: 0.7},
		},
	))

	// 再处理同一投递：新批次实体整体替换旧批次
	second := &models.ResumeAnalysis{
		AnalysisID:      "analysis-2",
		ApplicationID:   "app-1",
		RawTextExcerpt:  "second pass",
		ConfidenceScore: 0.6,
		ProcessedAt:     time.Now(),
	}
	require.NoError(t, m.StoreAnalysis(ctx, second,
		[]models.ExtractedSkill{
			{SkillName: "Rust", Confidence: 0.8, Source: "pattern_match"},
		},
		[]models.ExtractedExperience{
			{Position: "Senior Engineer", Company: "Acme", Duration: "2018-2023", Confidence: 0.7},
		},
		nil,
	))

	var analysisCount int64
	require.NoError(t, m.db.Model(&models.ResumeAnalysis{}).Count(&analysisCount).Error)
	assert.EqualValues(t, 1, analysisCount, "同一投递重复入库不应产生第二条主记录")
	assert.Equal(t, "analysis-1", second.AnalysisID, "冲突时应沿用已存在记录的主键")

	persisted, err := m.GetAnalysisByApplicationID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "analysis-1", persisted.AnalysisID)
	assert.Equal(t, "second pass", persisted.RawTextExcerpt, "覆盖写入应更新正文摘录")
	assert.InDelta(t, 0.6, persisted.ConfidenceScore, 0.001)

	skills, experience, education, err := m.GetExtractedEntities(ctx, "analysis-1")
	require.NoError(t, err)
	require.Len(t, skills, 1, "旧技能明细应被整体替换，不产生重复")
	assert.Equal(t, "Rust", skills[0].SkillName)
	require.Len(t, experience, 1)
	assert.Equal(t, "Senior Engineer", experience[0].Position)
	assert.Empty(t, education, "新批次没有学历条目时旧条目也应清空")
}

func TestStoreMatchScoreUpsert(t *testing.T) {
	m := newTestMySQL(t)
	ctx := context.Background()

	analysis := &models.ResumeAnalysis{
		AnalysisID:    "analysis-1",
		ApplicationID: "app-1",
		ProcessedAt:   time.Now(),
	}
	require.NoError(t, m.StoreAnalysis(ctx, analysis, nil, nil, nil))

	require.NoError(t, m.StoreMatchScore(ctx, &models.ResumeMatchScore{
		AnalysisID:   "analysis-1",
		JobID:        "job-1",
		OverallScore: 55,
		MatchedAt:    time.Now(),
	}))
	require.NoError(t, m.StoreMatchScore(ctx, &models.ResumeMatchScore{
		AnalysisID:   "analysis-1",
		JobID:        "job-1",
		OverallScore: 72.5,
		MatchedAt:    time.Now(),
	}))

	var scores []models.ResumeMatchScore
	require.NoError(t, m.db.Where("analysis_id = ?", "analysis-1").Find(&scores).Error)
	require.Len(t, scores, 1, "同一(分析,岗位)重复打分应覆盖而非追加")
	assert.InDelta(t, 72.5, scores[0].OverallScore, 0.001)
}

func TestAnalysisSummaryCounts(t *testing.T) {
	m := newTestMySQL(t)
	ctx := context.Background()

	analysis := &models.ResumeAnalysis{
		AnalysisID:      "analysis-1",
		ApplicationID:   "app-1",
		ConfidenceScore: 0.45,
		ProcessedAt:     time.Now(),
	}
	require.NoError(t, m.StoreAnalysis(ctx, analysis,
		[]models.ExtractedSkill{
			{SkillName: "Python", Confidence: 0.8},
			{SkillName: "Go", Confidence: 0.8},
		},
		[]models.ExtractedExperience{
			{Position: "Engineer", Confidence: 0.7},
		},
		nil,
	))
	require.NoError(t, m.StoreMatchScore(ctx, &models.ResumeMatchScore{
		AnalysisID: "analysis-1",
		JobID:      "job-1",
		MatchedAt:  time.Now(),
	}))

	summary, err := m.GetAnalysisSummary(ctx, "analysis-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", summary.ApplicationID)
	assert.EqualValues(t, 2, summary.SkillsCount)
	assert.EqualValues(t, 1, summary.ExperienceCount)
	assert.EqualValues(t, 0, summary.EducationCount)
	assert.EqualValues(t, 1, summary.MatchScoresCount)

	byApp, err := m.GetAnalysisSummaryByApplicationID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, summary.AnalysisID, byApp.AnalysisID)

	_, err = m.GetAnalysisSummary(ctx, "missing")
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}
