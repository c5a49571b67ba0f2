package types // 简历处理流水线共享的数据类型

import "time"

// EntitySource 实体的来源标记，标明由哪类启发式产生
type EntitySource string

const (
	// SourcePatternMatch 固定词表正则匹配产生的实体
	SourcePatternMatch EntitySource = "pattern_match"
	// SourceHeuristic 名词短语启发式产生的实体
	SourceHeuristic EntitySource = "heuristic"
)

// PageContent 单页提取结果
type PageContent struct {
	PageNumber int    `json:"page_number"` // 页码，从1开始
	Text       string `json:"text"`        // 该页提取出的文本
	WordCount  int    `json:"word_count"`  // 该页词数
	Error      string `json:"error,omitempty"` // 单页提取失败时的错误，不影响其他页
}

// DocumentMeta PDF文档级元数据
type DocumentMeta struct {
	PageCount int    `json:"page_count"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Producer  string `json:"producer,omitempty"`
}

// ExtractionResult 文档提取结果，创建后不可变
type ExtractionResult struct {
	RawText    string        `json:"raw_text"`    // 所有非空页文本按换行符拼接
	Pages      []PageContent `json:"pages"`       // 按页序排列的单页结果
	Metadata   DocumentMeta  `json:"metadata"`    // 文档元数据
	Success    bool          `json:"success"`     // 提取是否成功
	Error      string        `json:"error,omitempty"`
	TotalWords int           `json:"total_words"` // RawText按空白切分后的词数
}

// ValidationVerdict 提取质量校验结论
// QualityScore >= 0.5 时 IsValid 为 true，IsValid=false 时 Issues 说明原因
type ValidationVerdict struct {
	IsValid      bool     `json:"is_valid"`
	Issues       []string `json:"issues"`
	QualityScore float64  `json:"quality_score"`
}

// Skill 提取出的技能实体
type Skill struct {
	Name       string       `json:"name"`
	Confidence float64      `json:"confidence"` // [0,1]
	Source     EntitySource `json:"source"`
	Context    string       `json:"context"` // 匹配位置前后的原文片段
}

// Experience 提取出的工作经历实体
type Experience struct {
	Position   string       `json:"position"`
	Company    string       `json:"company"`  // 未识别时为空串
	Duration   string       `json:"duration"` // 未识别时为空串
	Confidence float64      `json:"confidence"`
	Source     EntitySource `json:"source"`
	Context    string       `json:"context"`
}

// Education 提取出的教育经历实体
type Education struct {
	Degree       string       `json:"degree"`
	Institution  string       `json:"institution"`             // 未识别时为空串
	FieldOfStudy string       `json:"field_of_study,omitempty"`
	Year         string       `json:"year,omitempty"` // 毕业年份，未识别时为空
	Confidence   float64      `json:"confidence"`
	Source       EntitySource `json:"source"`
	Context      string       `json:"context"`
}

// ContactInfo 联系方式，字段只在匹配到时出现
type ContactInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// ExtractedEntitySet 一次实体提取的完整输出
// 技能名在集合内大小写不敏感地唯一，重复在插入时被抑制
type ExtractedEntitySet struct {
	Skills            []Skill            `json:"skills"`
	Experience        []Experience       `json:"experience"`
	Education         []Education        `json:"education"`
	ContactInfo       ContactInfo        `json:"contact_info"`
	ConfidenceScores  map[string]float64 `json:"confidence_scores"`  // 按类别的置信度
	OverallConfidence float64            `json:"overall_confidence"` // 四个固定类别的算术平均
	Error             string             `json:"error,omitempty"`    // 顶层提取失败时记录，不作为异常抛出
}

// RequiredSkill 岗位要求的单项技能
type RequiredSkill struct {
	Name string `json:"name"`
}

// JobRequirements 岗位要求记录，匹配打分的只读输入
type JobRequirements struct {
	JobID          string          `json:"job_id,omitempty"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Requirements   string          `json:"requirements"`
	SkillsRequired []RequiredSkill `json:"skills_required"`
}

// ResumeData 参与匹配的简历侧数据
type ResumeData struct {
	RawText     string       `json:"raw_text"`
	Skills      []Skill      `json:"skills"`
	Experience  []Experience `json:"experience"`
	Education   []Education  `json:"education"`
	ContactInfo ContactInfo  `json:"contact_info"`
}

// SkillMatch 单项技能的匹配明细
type SkillMatch struct {
	Required   string  `json:"required"`
	Found      string  `json:"found"`
	Similarity float64 `json:"similarity"`
}

// SkillsAnalysis 技能维度的匹配明细
type SkillsAnalysis struct {
	Score         float64      `json:"score"` // [0,1]
	MatchedSkills []SkillMatch `json:"matched_skills"`
	MissingSkills []string     `json:"missing_skills"`
	ExtraSkills   []string     `json:"extra_skills"`
	TotalRequired int          `json:"total_required"`
	TotalMatched  int          `json:"total_matched"`
}

// ExperienceAnalysis 经验维度的匹配明细
type ExperienceAnalysis struct {
	Score           float64 `json:"score"` // [0,1]
	ExperienceLevel string  `json:"experience_level"`
	YearsExperience int     `json:"years_experience"`
	Positions       int     `json:"positions"`
	RequiredYears   int     `json:"required_years"`
}

// EducationAnalysis 教育维度的匹配明细
type EducationAnalysis struct {
	Score         float64 `json:"score"` // [0,1]
	HighestDegree string  `json:"highest_degree"`
	FieldMatch    bool    `json:"field_match"`
	TotalDegrees  int     `json:"total_degrees"`
}

// DetailedAnalysis 各维度匹配明细的聚合
type DetailedAnalysis struct {
	Skills     SkillsAnalysis     `json:"skills"`
	Experience ExperienceAnalysis `json:"experience"`
	Education  EducationAnalysis  `json:"education"`
}

// MatchResult 简历与岗位的匹配结果
// OverallScore = 100 * (0.4*skills + 0.3*experience + 0.2*education + 0.1*text)
type MatchResult struct {
	OverallScore        float64          `json:"overall_score"` // [0,100]
	SkillsMatch         float64          `json:"skills_match"`  // [0,1]
	ExperienceMatch     float64          `json:"experience_match"`
	EducationMatch      float64          `json:"education_match"`
	TextSimilarity      float64          `json:"text_similarity"`
	DetailedAnalysis    DetailedAnalysis `json:"detailed_analysis"`
	MissingRequirements []string         `json:"missing_requirements"`
	Strengths           []string         `json:"strengths"`
	Recommendations     []string         `json:"recommendations"`
}

// FileInfo 上传文件的基础信息
type FileInfo struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// FileValidation 上传文件的预校验结果，不触发任何提取
type FileValidation struct {
	IsValid  bool     `json:"is_valid"`
	Issues   []string `json:"issues"`
	FileInfo FileInfo `json:"file_info"`
}

// AnalysisSummary 已持久化分析记录的概要
type AnalysisSummary struct {
	AnalysisID       string    `json:"analysis_id"`
	ApplicationID    string    `json:"application_id"`
	ProcessedAt      time.Time `json:"processed_at"`
	ConfidenceScore  float64   `json:"confidence_score"`
	SkillsCount      int64     `json:"skills_count"`
	ExperienceCount  int64     `json:"experience_count"`
	EducationCount   int64     `json:"education_count"`
	MatchScoresCount int64     `json:"match_scores_count"`
}
