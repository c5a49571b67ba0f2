package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// skillContextRadius 技能上下文截取半径（字符）
const skillContextRadius = 50

// educationWindowRadius 学历条目的院校/年份/专业搜索半径（字符）
const educationWindowRadius = 100

// educationSectionLines 教育段落窗口行数
const educationSectionLines = 10

// sectionSplitPattern 按空行切分段落
var sectionSplitPattern = regexp.MustCompile(`\n\s*\n`)

// EntityExtractor 从简历纯文本中提取结构化实体
// 四个类别（技能/经历/学历/联系方式）相互隔离：
// 任一类别提取失败只降级该类别，不影响其余结果
type EntityExtractor struct {
	patterns *EntityPatterns
	tagger   NounPhraseTagger
}

// EntityExtractorOption 提取器配置选项
type EntityExtractorOption func(*EntityExtractor)

// WithNounPhraseTagger 注入名词短语标注器，开启技能启发式通道
func WithNounPhraseTagger(tagger NounPhraseTagger) EntityExtractorOption {
	return func(e *EntityExtractor) {
		e.tagger = tagger
	}
}

// WithEntityPatterns 覆盖默认模式表
func WithEntityPatterns(p *EntityPatterns) EntityExtractorOption {
	return func(e *EntityExtractor) {
		e.patterns = p
	}
}

// NewEntityExtractor 创建实体提取器
func NewEntityExtractor(options ...EntityExtractorOption) *EntityExtractor {
	e := &EntityExtractor{
		patterns: DefaultEntityPatterns(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractEntities 提取全部实体类别并计算置信度
// 空白输入返回全空结果，总置信度为0
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) types.ExtractedEntitySet {
	set := emptyEntitySet()
	if strings.TrimSpace(text) == "" {
		return set
	}

	log := logger.Ctx(ctx)
	var degraded []string

	if skills, err := e.safeExtractSkills(text); err != nil {
		log.Error().Err(err).Msg("技能提取失败，降级为空结果")
		degraded = append(degraded, "skills")
	} else {
		set.Skills = skills
		set.ConfidenceScores["skills"] = cappedConfidence(0.9, 0.1, len(skills))
	}

	if experience, err := e.safeExtractExperience(text); err != nil {
		log.Error().Err(err).Msg("工作经历提取失败，降级为空结果")
		degraded = append(degraded, "experience")
	} else {
		set.Experience = experience
		set.ConfidenceScores["experience"] = cappedConfidence(0.8, 0.2, len(experience))
	}

	if education, err := e.safeExtractEducation(text); err != nil {
		log.Error().Err(err).Msg("教育背景提取失败，降级为空结果")
		degraded = append(degraded, "education")
	} else {
		set.Education = education
		set.ConfidenceScores["education"] = cappedConfidence(0.8, 0.2, len(education))
	}

	if contact, err := e.safeExtractContact(text); err != nil {
		log.Error().Err(err).Msg("联系方式提取失败，降级为空结果")
		degraded = append(degraded, "contact_info")
	} else {
		set.ContactInfo = contact
		if contact.Email != "" || contact.Phone != "" || contact.LinkedIn != "" {
			set.ConfidenceScores["contact_info"] = 1.0
		} else {
			set.ConfidenceScores["contact_info"] = 0.0
		}
	}

	if len(degraded) > 0 {
		set.Error = fmt.Sprintf("degraded categories: %s", strings.Join(degraded, ", "))
	}

	// 总置信度：四个固定类别的均值，降级类别按0计
	total := 0.0
	for _, category := range []string{"skills", "experience", "education", "contact_info"} {
		total += set.ConfidenceScores[category]
	}
	set.OverallConfidence = total / 4.0

	return set
}

// extractSkills 技能提取：固定词表通道 + 名词短语启发式通道
// 同名技能（忽略大小写）只保留先提取到的一条
func (e *EntityExtractor) extractSkills(text string) []types.Skill {
	skills := make([]types.Skill, 0)
	seen := make(map[string]struct{})

	for _, pattern := range e.patterns.Skills {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			name := text[loc[0]:loc[1]]
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			skills = append(skills, types.Skill{
				Name:       name,
				Confidence: 0.8,
				Source:     types.SourcePatternMatch,
				Context:    contextAround(text, loc[0], loc[1], skillContextRadius),
			})
		}
	}

	// 启发式通道：名词短语 + 邻近熟练度指示词，置信度更低
	if e.tagger != nil && e.tagger.HasAdvancedHeuristics() {
		phrases, err := e.tagger.NounPhrases(text)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("名词短语标注失败，跳过启发式通道")
			return skills
		}
		lowerText := strings.ToLower(text)
		for _, phrase := range phrases {
			if phrase.TokenCount > 3 {
				continue
			}
			key := strings.ToLower(phrase.Text)
			if _, dup := seen[key]; dup {
				continue
			}
			idx := strings.Index(lowerText, key)
			if idx < 0 {
				continue
			}
			window := contextAround(lowerText, idx, idx+len(key), skillContextRadius)
			if !containsAny(window, e.patterns.ProficiencyIndicators) {
				continue
			}
			seen[key] = struct{}{}
			skills = append(skills, types.Skill{
				Name:       phrase.Text,
				Confidence: 0.6,
				Source:     types.SourceHeuristic,
				Context:    contextAround(text, idx, idx+len(key), skillContextRadius),
			})
		}
	}

	return skills
}

// extractExperience 工作经历提取
// 先按空行切段，只扫描含经历指示词的段落，逐行匹配职位模式
func (e *EntityExtractor) extractExperience(text string) []types.Experience {
	experience := make([]types.Experience, 0)

	for _, section := range sectionSplitPattern.Split(text, -1) {
		if !containsAny(strings.ToLower(section), e.patterns.ExperienceIndicators) {
			continue
		}

		lines := strings.Split(section, "\n")
		for i, line := range lines {
			for _, pattern := range e.patterns.Experience {
				match := pattern.FindString(line)
				if match == "" {
					continue
				}
				entry := types.Experience{
					Position:   strings.TrimSpace(match),
					Confidence: 0.7,
					Source:     types.SourcePatternMatch,
					Context:    strings.TrimSpace(line),
				}
				window := surroundingLines(lines, i, 2)
				entry.Company = e.findCompany(window)
				entry.Duration = e.patterns.Duration.FindString(window)
				experience = append(experience, entry)
			}
		}
	}

	return experience
}

// extractEducation 教育背景提取
// 从首个含教育关键词的行开始取10行窗口，找不到则扫描全文
func (e *EntityExtractor) extractEducation(text string) []types.Education {
	education := make([]types.Education, 0)

	window := text
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if containsAny(strings.ToLower(line), e.patterns.EducationKeywords) {
			end := i + educationSectionLines
			if end > len(lines) {
				end = len(lines)
			}
			window = strings.Join(lines[i:end], "\n")
			break
		}
	}

	for _, pattern := range e.patterns.Education {
		for _, loc := range pattern.FindAllStringIndex(window, -1) {
			degree := window[loc[0]:loc[1]]
			nearby := contextAround(window, loc[0], loc[1], educationWindowRadius)
			entry := types.Education{
				Degree:      strings.TrimSpace(degree),
				Institution: e.patterns.Institution.FindString(nearby),
				Year:        e.patterns.Year.FindString(nearby),
				Confidence:  0.7,
				Source:      types.SourcePatternMatch,
				Context:     contextAround(window, loc[0], loc[1], skillContextRadius),
			}
			if field := e.patterns.Field.FindString(nearby); field != "" {
				entry.FieldOfStudy = field
			}
			education = append(education, entry)
		}
	}

	return education
}

// extractContact 联系方式提取
func (e *EntityExtractor) extractContact(text string) types.ContactInfo {
	contact := types.ContactInfo{}

	contact.Email = e.patterns.Email.FindString(text)

	// 电话只保留数字分组，忽略分隔符写法差异
	if groups := e.patterns.Phone.FindStringSubmatch(text); groups != nil {
		contact.Phone = strings.Join(groups[1:], "")
	}

	contact.LinkedIn = e.patterns.LinkedIn.FindString(text)

	return contact
}

// findCompany 在邻近行中找带公司后缀的词组
func (e *EntityExtractor) findCompany(window string) string {
	for _, line := range strings.Split(window, "\n") {
		lower := strings.ToLower(line)
		for _, suffix := range e.patterns.CompanySuffixes {
			if strings.Contains(lower, suffix) {
				return strings.TrimSpace(line)
			}
		}
	}
	return ""
}

// 四个类别的recover包装，把提取过程中的panic收敛为降级

func (e *EntityExtractor) safeExtractSkills(text string) (skills []types.Skill, err error) {
	defer recoverAsError(&err, "skills")
	return e.extractSkills(text), nil
}

func (e *EntityExtractor) safeExtractExperience(text string) (experience []types.Experience, err error) {
	defer recoverAsError(&err, "experience")
	return e.extractExperience(text), nil
}

func (e *EntityExtractor) safeExtractEducation(text string) (education []types.Education, err error) {
	defer recoverAsError(&err, "education")
	return e.extractEducation(text), nil
}

func (e *EntityExtractor) safeExtractContact(text string) (contact types.ContactInfo, err error) {
	defer recoverAsError(&err, "contact")
	return e.extractContact(text), nil
}

func recoverAsError(err *error, category string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s extraction panic: %v", category, r)
	}
}

// emptyEntitySet 全空结果，切片和map都已初始化
func emptyEntitySet() types.ExtractedEntitySet {
	return types.ExtractedEntitySet{
		Skills:           []types.Skill{},
		Experience:       []types.Experience{},
		Education:        []types.Education{},
		ConfidenceScores: map[string]float64{},
	}
}

// cappedConfidence 类别置信度：每条实体加step，封顶ceiling
func cappedConfidence(ceiling, step float64, count int) float64 {
	score := step * float64(count)
	if score > ceiling {
		return ceiling
	}
	return score
}

// contextAround 截取匹配位置前后radius个字符
func contextAround(text string, start, end, radius int) string {
	from := start - radius
	if from < 0 {
		from = 0
	}
	to := end + radius
	if to > len(text) {
		to = len(text)
	}
	return strings.TrimSpace(text[from:to])
}

// surroundingLines 取第i行前后radius行拼成窗口
func surroundingLines(lines []string, i, radius int) string {
	from := i - radius
	if from < 0 {
		from = 0
	}
	to := i + radius + 1
	if to > len(lines) {
		to = len(lines)
	}
	return strings.Join(lines[from:to], "\n")
}

// containsAny 报告s是否包含任一关键词
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
