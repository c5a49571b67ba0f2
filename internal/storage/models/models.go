package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResumeAnalysis 简历分析主表，与投递记录一一对应
type ResumeAnalysis struct {
	AnalysisID      string    `gorm:"type:char(36);primaryKey"`
	ApplicationID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_ra_application_unique"`
	RawTextExcerpt  string    `gorm:"type:text"` // 原文截断存储，最长1万字符
	ConfidenceScore float64   `gorm:"type:double;not null;default:0"`
	ProcessedAt     time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	CreatedAt       time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeAnalysis) TableName() string {
	return "resume_analyses"
}

// ExtractedSkill 提取出的技能明细表
// (analysis_id, skill_name) 唯一，重复技能在写入前已去重
type ExtractedSkill struct {
	SkillDBID  uint64  `gorm:"primaryKey;autoIncrement"`
	AnalysisID string  `gorm:"type:char(36);not null;index:idx_es_analysis_id;uniqueIndex:idx_es_analysis_skill_unique,priority:1"`
	SkillName  string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_es_analysis_skill_unique,priority:2"`
	Confidence float64 `gorm:"type:double;not null;default:0"`
	Source     string  `gorm:"type:varchar(50)"`
	Context    string  `gorm:"type:text"`

	ResumeAnalysis *ResumeAnalysis `gorm:"foreignKey:AnalysisID;references:AnalysisID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ExtractedSkill) TableName() string {
	return "extracted_skills"
}

// ExtractedExperience 提取出的工作经历明细表
type ExtractedExperience struct {
	ExperienceDBID uint64  `gorm:"primaryKey;autoIncrement"`
	AnalysisID     string  `gorm:"type:char(36);not null;index:idx_ee_analysis_id"`
	Position       string  `gorm:"type:varchar(255)"`
	Company        string  `gorm:"type:varchar(255)"`
	Duration       string  `gorm:"type:varchar(100)"`
	Description    string  `gorm:"type:text"`
	Confidence     float64 `gorm:"type:double;not null;default:0"`

	ResumeAnalysis *ResumeAnalysis `gorm:"foreignKey:AnalysisID;references:AnalysisID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ExtractedExperience) TableName() string {
	return "extracted_experiences"
}

// ExtractedEducation 提取出的教育背景明细表
type ExtractedEducation struct {
	EducationDBID  uint64  `gorm:"primaryKey;autoIncrement"`
	AnalysisID     string  `gorm:"type:char(36);not null;index:idx_ed_analysis_id"`
	Degree         string  `gorm:"type:varchar(255)"`
	Institution    string  `gorm:"type:varchar(255)"`
	FieldOfStudy   string  `gorm:"type:varchar(255)"`
	GraduationYear string  `gorm:"type:varchar(10)"`
	Confidence     float64 `gorm:"type:double;not null;default:0"`

	ResumeAnalysis *ResumeAnalysis `gorm:"foreignKey:AnalysisID;references:AnalysisID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ExtractedEducation) TableName() string {
	return "extracted_educations"
}

// ResumeMatchScore 分析-岗位匹配分数表
// (analysis_id, job_id) 唯一，重复打分覆盖旧记录；各维度分数为百分制
type ResumeMatchScore struct {
	MatchDBID           uint64         `gorm:"primaryKey;autoIncrement"`
	AnalysisID          string         `gorm:"type:char(36);not null;index:idx_ms_analysis_id;uniqueIndex:idx_ms_analysis_job_unique,priority:1"`
	JobID               string         `gorm:"type:char(36);not null;index:idx_ms_job_id;uniqueIndex:idx_ms_analysis_job_unique,priority:2"`
	OverallScore        float64        `gorm:"type:double;not null;default:0"`
	SkillsScore         float64        `gorm:"type:double;not null;default:0"`
	ExperienceScore     float64        `gorm:"type:double;not null;default:0"`
	EducationScore      float64        `gorm:"type:double;not null;default:0"`
	TextSimilarityScore float64        `gorm:"type:double;not null;default:0"`
	DetailsJSON         datatypes.JSON `gorm:"type:json"` // 匹配明细（缺失项/亮点/建议）
	MatchedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	ResumeAnalysis *ResumeAnalysis `gorm:"foreignKey:AnalysisID;references:AnalysisID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ResumeMatchScore) TableName() string {
	return "resume_match_scores"
}

// Job 岗位表
type Job struct {
	JobID              string         `gorm:"type:char(36);primaryKey"`
	Title              string         `gorm:"type:varchar(255);not null"`
	Description        string         `gorm:"type:text"`
	Requirements       string         `gorm:"type:text"`
	SkillsRequiredJSON datatypes.JSON `gorm:"type:json"`
	Status             string         `gorm:"type:varchar(50);default:'ACTIVE';index:idx_jobs_status"`
	CreatedAt          time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt          time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}
