package parser

import "regexp"

// 实体提取与需求挖掘共用的模式表
// 词表是数据而非控制流，扩展词汇只需改这里

// EntityPatterns 实体提取使用的全部模式与词表
type EntityPatterns struct {
	// Skills 固定技能词表，逐词整词匹配
	Skills []*regexp.Regexp
	// Education 学位/专业模式
	Education []*regexp.Regexp
	// Experience 职位/年限模式
	Experience []*regexp.Regexp
	// Institution 院校名模式
	Institution *regexp.Regexp
	// Year 裸四位年份
	Year *regexp.Regexp
	// Field 常见专业领域
	Field *regexp.Regexp
	// Duration 起止年份区间
	Duration *regexp.Regexp
	// Email/Phone/LinkedIn 联系方式
	Email    *regexp.Regexp
	Phone    *regexp.Regexp
	LinkedIn *regexp.Regexp

	// ProficiencyIndicators 名词短语通道的熟练度指示词
	ProficiencyIndicators []string
	// ExperienceIndicators 经历段落的指示词
	ExperienceIndicators []string
	// EducationKeywords 教育段落定位关键词
	EducationKeywords []string
	// CompanySuffixes 公司名后缀标记
	CompanySuffixes []string
}

// DefaultEntityPatterns 返回内置的默认模式表
func DefaultEntityPatterns() *EntityPatterns {
	return &EntityPatterns{
		Skills: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:Python|Java|JavaScript|C\+\+|C#|PHP|Ruby|Go|Rust|Swift|Kotlin|Scala)\b`),
			regexp.MustCompile(`(?i)\b(?:HTML|CSS|SQL|NoSQL|MongoDB|PostgreSQL|MySQL|Redis|Elasticsearch)\b`),
			regexp.MustCompile(`(?i)\b(?:React|Angular|Vue|Node\.js|Django|Flask|Spring|Laravel|Express)\b`),
			regexp.MustCompile(`(?i)\b(?:AWS|Azure|GCP|Docker|Kubernetes|Jenkins|Git|GitHub|GitLab)\b`),
			regexp.MustCompile(`(?i)\b(?:Machine Learning|AI|Data Science|Analytics|Statistics|R|TensorFlow|PyTorch)\b`),
			regexp.MustCompile(`(?i)\b(?:Project Management|Agile|Scrum|Kanban|JIRA|Confluence|Slack|Microsoft Office)\b`),
			regexp.MustCompile(`(?i)\b(?:Photoshop|Illustrator|InDesign|Figma|Sketch|Adobe Creative Suite)\b`),
			regexp.MustCompile(`(?i)\b(?:Sales|Marketing|Customer Service|Leadership|Communication|Team Management)\b`),
		},
		Education: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:Bachelor|Master|PhD|Doctorate|Associate|Diploma|Certificate)\s+(?:of|in|degree)\s+\w+`),
			regexp.MustCompile(`\b(?:B\.?A\.?|B\.?S\.?|M\.?A\.?|M\.?S\.?|Ph\.?D\.?|MBA|MFA)\b`),
			regexp.MustCompile(`(?i)\b(?:University|College|Institute|School)\s+of\s+\w+`),
			regexp.MustCompile(`(?i)\b(?:Computer Science|Engineering|Business|Marketing|Finance|Economics|Psychology)\b`),
		},
		Experience: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:Software Engineer|Developer|Programmer|Designer|Manager|Director|Analyst|Consultant)\b`),
			regexp.MustCompile(`(?i)\b(?:Senior|Junior|Lead|Principal|Staff|Associate|Assistant)\s+\w+`),
			regexp.MustCompile(`(?i)\b(?:20\d{2}|19\d{2})\s*[-–]\s*(?:20\d{2}|19\d{2}|Present|Current)\b`),
			regexp.MustCompile(`(?i)\b\d+\s*(?:years?|months?)\s+(?:of\s+)?experience\b`),
		},
		Institution: regexp.MustCompile(`(?i)\b(?:University|College|Institute|School)\s+of\s+\w+`),
		Year:        regexp.MustCompile(`\b(20\d{2}|19\d{2})\b`),
		Field:       regexp.MustCompile(`(?i)\b(?:Computer Science|Engineering|Business|Marketing|Finance|Economics|Psychology)\b`),
		Duration:    regexp.MustCompile(`(?i)\b(?:20\d{2}|19\d{2})\s*[-–]\s*(?:20\d{2}|19\d{2}|Present|Current)\b`),
		Email:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Phone:       regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})\b`),
		LinkedIn:    regexp.MustCompile(`linkedin\.com/in/[A-Za-z0-9-]+`),

		ProficiencyIndicators: []string{"proficient", "experienced", "skilled", "knowledge", "expertise", "familiar"},
		ExperienceIndicators:  []string{"experience", "work", "employment", "career"},
		EducationKeywords:     []string{"education", "academic", "degree", "university", "college"},
		CompanySuffixes:       []string{"inc", "corp", "ltd", "company", "llc"},
	}
}

// 需求挖掘（从岗位自由文本推导结构化要求）使用的模式

var (
	// requiredYearsPattern 岗位要求年限，如 "3 years of experience"
	requiredYearsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)\s+of\s+experience`)

	// levelPatternOrder 级别判定顺序，先命中者生效
	levelPatternOrder = []string{"entry", "mid", "senior", "executive"}

	levelPatterns = map[string]*regexp.Regexp{
		"entry":     regexp.MustCompile(`(?i)\b(?:entry|junior|beginner|graduate|fresh)\b`),
		"mid":       regexp.MustCompile(`(?i)\b(?:mid|intermediate)\b`),
		"senior":    regexp.MustCompile(`(?i)\b(?:senior|lead|principal|staff)\b`),
		"executive": regexp.MustCompile(`(?i)\b(?:executive|director|manager|head)\b`),
	}

	// degreePatternOrder 学历判定顺序
	degreePatternOrder = []string{"bachelor", "master", "phd"}

	degreePatterns = map[string]*regexp.Regexp{
		"bachelor": regexp.MustCompile(`(?i)\b(?:bachelor|bachelor's|b\.?a\.?|b\.?s\.?)\b`),
		"master":   regexp.MustCompile(`(?i)\b(?:master|master's|m\.?a\.?|m\.?s\.?|mba)\b`),
		"phd":      regexp.MustCompile(`(?i)\b(?:ph\.?d\.?|doctorate|doctoral)\b`),
	}

	// yearsInDurationPattern 经历条目duration字段里的年限，如 "5 years"
	yearsInDurationPattern = regexp.MustCompile(`(?i)(\d+)\s*years?`)

	// yearRangePattern duration字段里的起止年份，用于在没有显式年限时推算
	yearRangePattern = regexp.MustCompile(`(?i)\b(20\d{2}|19\d{2})\s*[-–]\s*(20\d{2}|19\d{2}|Present|Current)\b`)
)

// levelHierarchy 经验级别层级
var levelHierarchy = map[string]int{
	"entry":     1,
	"mid":       2,
	"senior":    3,
	"executive": 4,
}

// degreeHierarchy 学历层级
var degreeHierarchy = map[string]int{
	"certificate": 1,
	"diploma":     2,
	"associate":   3,
	"bachelor":    4,
	"master":      5,
	"phd":         6,
}

// degreeRankOrder 按层级从低到高排列的学历名，用于从学位文本中识别最高学历
var degreeRankOrder = []string{"certificate", "diploma", "associate", "bachelor", "master", "phd"}
