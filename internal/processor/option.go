package processor

import (
	"resume-match-go/internal/storage"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithcompPdfextractor 设置PDF提取器组件
func WithcompPdfextractor(extractor PDFExtractor) ComponentOpt {
	return func(c *Components) {
		c.PDFExtractor = extractor
	}
}

// WithcompQualityvalidator 设置质量校验器组件
func WithcompQualityvalidator(validator QualityValidator) ComponentOpt {
	return func(c *Components) {
		c.QualityValidator = validator
	}
}

// WithcompEntityextractor 设置实体提取器组件
func WithcompEntityextractor(extractor EntityExtractor) ComponentOpt {
	return func(c *Components) {
		c.EntityExtractor = extractor
	}
}

// WithcompMatchevaluator 设置匹配打分器组件
func WithcompMatchevaluator(evaluator MatchEvaluator) ComponentOpt {
	return func(c *Components) {
		c.MatchEvaluator = evaluator
	}
}

// WithcompStorage 设置存储服务
func WithcompStorage(s *storage.Storage) ComponentOpt {
	return func(c *Components) {
		c.Storage = s
	}
}

// ----- 设置选项 -----

// WithsetMaxuploadsize 设置上传文件大小上限（字节）
func WithsetMaxuploadsize(size int64) SettingOpt {
	return func(s *Settings) {
		s.MaxUploadSize = size
	}
}

// WithsetDebug 设置调试模式
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}
