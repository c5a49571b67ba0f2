package constants

import "time"

const (
	// MaxUploadSizeBytes 上传文件大小上限（10MB）
	MaxUploadSizeBytes = 10 * 1024 * 1024

	// MaxStoredRawTextLen 持久化raw_text的截断长度
	MaxStoredRawTextLen = 10000

	// MinValidQualityScore 质量门限，低于该分数的提取结果不进入实体提取
	MinValidQualityScore = 0.5

	// Redis键常量
	JobTextCachePrefix = "jd_text:"       // 岗位要求文本缓存前缀
	JobTextCacheTTL    = 24 * time.Hour   // 岗位要求文本缓存时长
)

// 匹配打分的维度权重，总和为1
const (
	WeightSkills     = 0.4
	WeightExperience = 0.3
	WeightEducation  = 0.2
	WeightText       = 0.1
)
