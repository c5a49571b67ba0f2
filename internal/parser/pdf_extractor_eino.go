package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// EinoPDFExtractor 使用 Eino PDF Parser 的备选提取引擎
// 通过配置 parser.engine=eino 启用，按页切分以保留页级信息
type EinoPDFExtractor struct {
	parser  *pdf.PDFParser
	timeout time.Duration
}

// EinoPDFOption 提取器配置选项
type EinoPDFOption func(*EinoPDFExtractor)

// WithEinoTimeout 配置单次解析超时
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFExtractor) {
		e.timeout = d
	}
}

// NewEinoPDFExtractor 初始化 Eino PDF 提取器
func NewEinoPDFExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true, // 按页返回，和本地引擎保持一致的页级结果
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFExtractor{
		parser:  p,
		timeout: 30 * time.Second,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile 从文件路径提取PDF文本
func (e *EinoPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) *types.ExtractionResult {
	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".pdf" {
		return failedExtraction(fmt.Sprintf("unsupported file format: %s", ext))
	}

	file, err := os.Open(filePath)
	if err != nil {
		return failedExtraction(fmt.Sprintf("file not found: %s", filePath))
	}
	defer file.Close()

	return e.ExtractFromReader(ctx, file, filePath)
}

// ExtractFromReader 从流提取PDF文本
func (e *EinoPDFExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, filename string) *types.ExtractionResult {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && ext != ".pdf" {
		return failedExtraction(fmt.Sprintf("unsupported file format: %s", ext))
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader, einoParser.WithURI(filename))
	duration := time.Since(startTime)
	if err != nil {
		logger.Logger.Warn().Err(err).Str("file", filename).
			Dur("duration", duration).Msg("Eino PDF解析失败")
		return failedExtraction(fmt.Sprintf("eino PDF parser failed: %v", err))
	}
	if len(docs) == 0 {
		return failedExtraction("eino PDF parser returned no documents")
	}

	pages := make([]types.PageContent, 0, len(docs))
	var builder strings.Builder
	totalWords := 0
	for i, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			logger.Logger.Warn().Int("page", i+1).Msg("页面无可提取文本")
			continue
		}
		wordCount := len(strings.Fields(doc.Content))
		totalWords += wordCount
		pages = append(pages, types.PageContent{
			PageNumber: i + 1,
			Text:       doc.Content,
			WordCount:  wordCount,
		})
		builder.WriteString(doc.Content)
		builder.WriteString("\n")
	}

	logger.Logger.Debug().Int("pages", len(docs)).Int("words", totalWords).
		Dur("duration", duration).Msg("Eino PDF提取完成")

	return &types.ExtractionResult{
		RawText:    builder.String(),
		Pages:      pages,
		Metadata:   types.DocumentMeta{PageCount: len(docs)},
		Success:    true,
		TotalWords: totalWords,
	}
}
