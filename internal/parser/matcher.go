package parser

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// skillSimilarityThreshold 技能名称相似度阈值，严格大于才算匹配
const skillSimilarityThreshold = 0.8

// ResumeMatcher 简历与岗位的加权匹配打分器
// 四个维度：技能0.4 + 经验0.3 + 学历0.2 + 文本相似度0.1，总分[0,100]
type ResumeMatcher struct {
	patterns   *EntityPatterns
	vectorizer *TFIDFVectorizer
}

// ResumeMatcherOption 打分器配置选项
type ResumeMatcherOption func(*ResumeMatcher)

// WithMatcherPatterns 覆盖需求挖掘使用的模式表
func WithMatcherPatterns(p *EntityPatterns) ResumeMatcherOption {
	return func(m *ResumeMatcher) {
		m.patterns = p
	}
}

// NewResumeMatcher 创建打分器
func NewResumeMatcher(options ...ResumeMatcherOption) *ResumeMatcher {
	m := &ResumeMatcher{
		patterns:   DefaultEntityPatterns(),
		vectorizer: NewTFIDFVectorizer(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// CalculateMatchScore 计算匹配结果
// 纯函数：不访问存储，不修改输入
func (m *ResumeMatcher) CalculateMatchScore(ctx context.Context, resume types.ResumeData, job types.JobRequirements) types.MatchResult {
	log := logger.Ctx(ctx)

	skillsAnalysis := m.scoreSkills(resume, job)
	experienceAnalysis := m.scoreExperience(resume, job)
	educationAnalysis := m.scoreEducation(resume, job)
	textScore := m.scoreTextSimilarity(resume, job)

	overall := 100 * (constants.WeightSkills*skillsAnalysis.Score +
		constants.WeightExperience*experienceAnalysis.Score +
		constants.WeightEducation*educationAnalysis.Score +
		constants.WeightText*textScore)
	overall = math.Min(100, overall)

	missing := m.missingRequirements(skillsAnalysis, experienceAnalysis, educationAnalysis, job)
	strengths := m.identifyStrengths(resume, educationAnalysis)

	result := types.MatchResult{
		OverallScore:    overall,
		SkillsMatch:     skillsAnalysis.Score,
		ExperienceMatch: experienceAnalysis.Score,
		EducationMatch:  educationAnalysis.Score,
		TextSimilarity:  textScore,
		DetailedAnalysis: types.DetailedAnalysis{
			Skills:     skillsAnalysis,
			Experience: experienceAnalysis,
			Education:  educationAnalysis,
		},
		MissingRequirements: missing,
		Strengths:           strengths,
	}
	result.Recommendations = m.buildRecommendations(overall, missing)

	log.Debug().Float64("overall", overall).Str("job", job.Title).Msg("匹配打分完成")
	return result
}

// scoreSkills 技能维度
// 要求技能取岗位结构化技能列表，列表为空时从描述/要求文本挖掘
// 没有任何要求技能时给中性分0.5
func (m *ResumeMatcher) scoreSkills(resume types.ResumeData, job types.JobRequirements) types.SkillsAnalysis {
	analysis := types.SkillsAnalysis{
		MatchedSkills: []types.SkillMatch{},
		MissingSkills: []string{},
		ExtraSkills:   []string{},
	}

	required := m.requiredSkillSet(job)
	analysis.TotalRequired = len(required)
	if len(required) == 0 {
		analysis.Score = 0.5
		return analysis
	}

	resumeSkills := make([]string, 0, len(resume.Skills))
	for _, skill := range resume.Skills {
		resumeSkills = append(resumeSkills, skill.Name)
	}

	matchedNames := make(map[string]struct{})
	for _, req := range required {
		bestSim := 0.0
		bestFound := ""
		for _, have := range resumeSkills {
			sim := similarityRatio(req, have)
			if sim > bestSim {
				bestSim = sim
				bestFound = have
			}
		}
		if bestSim > skillSimilarityThreshold {
			analysis.MatchedSkills = append(analysis.MatchedSkills, types.SkillMatch{
				Required:   req,
				Found:      bestFound,
				Similarity: bestSim,
			})
			matchedNames[strings.ToLower(bestFound)] = struct{}{}
		} else {
			analysis.MissingSkills = append(analysis.MissingSkills, req)
		}
	}

	for _, have := range resumeSkills {
		if _, used := matchedNames[strings.ToLower(have)]; !used {
			analysis.ExtraSkills = append(analysis.ExtraSkills, have)
		}
	}

	analysis.TotalMatched = len(analysis.MatchedSkills)
	analysis.Score = float64(analysis.TotalMatched) / float64(analysis.TotalRequired)
	return analysis
}

// requiredSkillSet 岗位的要求技能，小写去重
// 结构化列表优先；列表为空时才从描述/要求文本挖掘
func (m *ResumeMatcher) requiredSkillSet(job types.JobRequirements) []string {
	seen := make(map[string]struct{})
	required := make([]string, 0, len(job.SkillsRequired))

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		required = append(required, name)
	}

	for _, skill := range job.SkillsRequired {
		add(skill.Name)
	}
	if len(required) > 0 {
		return required
	}

	jobText := job.Description + "\n" + job.Requirements
	for _, pattern := range m.patterns.Skills {
		for _, match := range pattern.FindAllString(jobText, -1) {
			add(match)
		}
	}

	return required
}

// scoreExperience 经验维度
// 年限满足度与级别满足度取均值；简历没有任何经历时得0分，级别记为none
func (m *ResumeMatcher) scoreExperience(resume types.ResumeData, job types.JobRequirements) types.ExperienceAnalysis {
	analysis := types.ExperienceAnalysis{
		ExperienceLevel: "none",
		Positions:       len(resume.Experience),
	}

	jobText := job.Description + "\n" + job.Requirements
	requiredYears := m.requiredExperienceYears(jobText)
	requiredLevel := m.requiredExperienceLevel(jobText)
	analysis.RequiredYears = requiredYears

	if len(resume.Experience) == 0 {
		return analysis
	}

	totalYears := totalExperienceYears(resume.Experience)
	analysis.YearsExperience = totalYears
	analysis.ExperienceLevel = experienceLevelForYears(totalYears)

	if requiredYears == 0 && requiredLevel == "" {
		return analysis
	}

	denominator := requiredYears
	if denominator < 1 {
		denominator = 1
	}
	score := math.Min(1.0, float64(totalYears)/float64(denominator))
	if requiredLevel != "" {
		score = (score + levelMatchScore(analysis.ExperienceLevel, requiredLevel)) / 2
	}

	analysis.Score = score
	return analysis
}

// scoreEducation 教育维度
// 学历满足度与专业匹配度取均值；岗位无学历要求时给默认分0.7
func (m *ResumeMatcher) scoreEducation(resume types.ResumeData, job types.JobRequirements) types.EducationAnalysis {
	analysis := types.EducationAnalysis{
		HighestDegree: "none",
		TotalDegrees:  len(resume.Education),
	}

	if len(resume.Education) == 0 {
		return analysis
	}

	highest := highestDegree(resume.Education)
	analysis.HighestDegree = highest

	jobText := job.Description + "\n" + job.Requirements
	requiredDegree := m.requiredDegree(jobText)
	if requiredDegree == "" {
		analysis.Score = 0.7
		analysis.FieldMatch = true
		return analysis
	}

	degreeScore := 0.0
	if haveRank, ok := degreeHierarchy[highest]; ok {
		needRank := degreeHierarchy[requiredDegree]
		if haveRank >= needRank {
			degreeScore = 1.0
		} else {
			degreeScore = float64(haveRank) / float64(needRank)
		}
	}

	// 专业匹配：岗位文本里出现的领域词与简历学历条目比对
	fieldScore := 0.5
	requiredField := m.patterns.Field.FindString(jobText)
	if requiredField == "" {
		analysis.FieldMatch = true
		fieldScore = 1.0
	} else {
		for _, edu := range resume.Education {
			haystack := strings.ToLower(edu.FieldOfStudy + " " + edu.Degree + " " + edu.Context)
			if strings.Contains(haystack, strings.ToLower(requiredField)) {
				analysis.FieldMatch = true
				fieldScore = 1.0
				break
			}
		}
	}

	analysis.Score = (degreeScore + fieldScore) / 2
	return analysis
}

// scoreTextSimilarity 简历全文与岗位文本的相似度
// 岗位文本 = 标题 + 描述 + 要求 + 结构化技能列表；TF-IDF余弦退化时回落到词集合重叠
func (m *ResumeMatcher) scoreTextSimilarity(resume types.ResumeData, job types.JobRequirements) float64 {
	parts := []string{job.Title, job.Description, job.Requirements}
	if len(job.SkillsRequired) > 0 {
		names := make([]string, 0, len(job.SkillsRequired))
		for _, skill := range job.SkillsRequired {
			names = append(names, skill.Name)
		}
		parts = append(parts, strings.Join(names, " "))
	}
	jobText := strings.Join(parts, "\n")
	sim, err := m.vectorizer.CosineSimilarity(resume.RawText, jobText)
	if err != nil {
		logger.Logger.Debug().Err(err).Msg("TF-IDF退化，使用词重叠兜底")
		return WordOverlapSimilarity(resume.RawText, jobText)
	}
	return sim
}

// requiredExperienceYears 从岗位文本挖掘要求年限，如 "3 years of experience"
func (m *ResumeMatcher) requiredExperienceYears(jobText string) int {
	if groups := requiredYearsPattern.FindStringSubmatch(jobText); groups != nil {
		if years, err := strconv.Atoi(groups[1]); err == nil {
			return years
		}
	}
	return 0
}

// requiredExperienceLevel 按固定顺序找级别关键词，先命中者生效
func (m *ResumeMatcher) requiredExperienceLevel(jobText string) string {
	for _, level := range levelPatternOrder {
		if levelPatterns[level].MatchString(jobText) {
			return level
		}
	}
	return ""
}

// requiredDegree 按固定顺序找学历关键词
func (m *ResumeMatcher) requiredDegree(jobText string) string {
	for _, degree := range degreePatternOrder {
		if degreePatterns[degree].MatchString(jobText) {
			return degree
		}
	}
	return ""
}

// totalExperienceYears 汇总经历条目的年限
// duration里有显式"N years"则直接累加，否则用起止年份区间推算
func totalExperienceYears(experience []types.Experience) int {
	total := 0
	for _, entry := range experience {
		if entry.Duration == "" {
			continue
		}
		matched := false
		for _, groups := range yearsInDurationPattern.FindAllStringSubmatch(entry.Duration, -1) {
			if years, err := strconv.Atoi(groups[1]); err == nil {
				total += years
				matched = true
			}
		}
		if matched {
			continue
		}
		if groups := yearRangePattern.FindStringSubmatch(entry.Duration); groups != nil {
			start, err := strconv.Atoi(groups[1])
			if err != nil {
				continue
			}
			end := time.Now().Year()
			if y, err := strconv.Atoi(groups[2]); err == nil {
				end = y
			}
			if end > start {
				total += end - start
			}
		}
	}
	return total
}

// experienceLevelForYears 年限到级别的映射
func experienceLevelForYears(years int) string {
	switch {
	case years < 2:
		return "entry"
	case years < 5:
		return "mid"
	case years < 10:
		return "senior"
	default:
		return "executive"
	}
}

// levelMatchScore 级别满足度：达到或超过要求得满分，否则按层级比例
func levelMatchScore(have, need string) float64 {
	haveRank, okHave := levelHierarchy[have]
	needRank, okNeed := levelHierarchy[need]
	if !okHave || !okNeed {
		return 0
	}
	if haveRank >= needRank {
		return 1.0
	}
	return float64(haveRank) / float64(needRank)
}

// highestDegree 从学历条目里找最高学历名
func highestDegree(education []types.Education) string {
	best := ""
	bestRank := 0
	for _, edu := range education {
		lower := strings.ToLower(edu.Degree)
		for _, name := range degreeRankOrder {
			if strings.Contains(lower, name) && degreeHierarchy[name] > bestRank {
				best = name
				bestRank = degreeHierarchy[name]
			}
		}
		// 缩写学位单独识别
		if bestRank < degreeHierarchy["phd"] && degreePatterns["phd"].MatchString(edu.Degree) {
			best, bestRank = "phd", degreeHierarchy["phd"]
		} else if bestRank < degreeHierarchy["master"] && degreePatterns["master"].MatchString(edu.Degree) {
			best, bestRank = "master", degreeHierarchy["master"]
		} else if bestRank < degreeHierarchy["bachelor"] && degreePatterns["bachelor"].MatchString(edu.Degree) {
			best, bestRank = "bachelor", degreeHierarchy["bachelor"]
		}
	}
	if best == "" {
		return "none"
	}
	return best
}

// missingRequirements 汇总缺失项，格式固定
func (m *ResumeMatcher) missingRequirements(skills types.SkillsAnalysis, experience types.ExperienceAnalysis, education types.EducationAnalysis, job types.JobRequirements) []string {
	missing := []string{}

	for _, skill := range skills.MissingSkills {
		missing = append(missing, fmt.Sprintf("Skill: %s", skill))
	}

	if experience.RequiredYears > 0 && experience.YearsExperience < experience.RequiredYears {
		missing = append(missing, fmt.Sprintf("Experience: %d years required, %d years found",
			experience.RequiredYears, experience.YearsExperience))
	}

	jobText := job.Description + "\n" + job.Requirements
	if requiredDegree := m.requiredDegree(jobText); requiredDegree != "" {
		haveRank := degreeHierarchy[education.HighestDegree]
		if haveRank < degreeHierarchy[requiredDegree] {
			missing = append(missing, fmt.Sprintf("Education: %s degree required", requiredDegree))
		}
	}

	return missing
}

// identifyStrengths 亮点识别
func (m *ResumeMatcher) identifyStrengths(resume types.ResumeData, education types.EducationAnalysis) []string {
	strengths := []string{}

	if len(resume.Skills) > 5 {
		strengths = append(strengths, fmt.Sprintf("Strong skill set with %d skills", len(resume.Skills)))
	}
	if len(resume.Experience) > 2 {
		strengths = append(strengths, fmt.Sprintf("Extensive experience with %d positions", len(resume.Experience)))
	}
	if education.HighestDegree == "master" || education.HighestDegree == "phd" {
		strengths = append(strengths, fmt.Sprintf("Advanced education with %s degree", education.HighestDegree))
	}

	return strengths
}

// buildRecommendations 按总分档位生成建议
func (m *ResumeMatcher) buildRecommendations(overall float64, missing []string) []string {
	recommendations := []string{}

	switch {
	case overall >= 80:
		recommendations = append(recommendations, "Strong match - Consider for interview")
	case overall >= 60:
		recommendations = append(recommendations, "Good match - Worth considering")
	case overall >= 40:
		recommendations = append(recommendations, "Moderate match - Review carefully")
	default:
		recommendations = append(recommendations, "Weak match - Consider other candidates")
	}

	if len(missing) > 0 {
		top := missing
		if len(top) > 3 {
			top = top[:3]
		}
		recommendations = append(recommendations, fmt.Sprintf("Address missing requirements: %s", strings.Join(top, ", ")))
	}

	return recommendations
}

// similarityRatio 基于编辑距离的名称相似度，大小写不敏感
func similarityRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}
