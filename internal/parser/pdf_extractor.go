package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// NativePDFExtractor 纯Go实现的PDF文本提取器
// 逐页提取，单页失败不影响其他页，失败页在结果中保留错误信息
type NativePDFExtractor struct{}

// NewNativePDFExtractor 创建本地PDF提取器
func NewNativePDFExtractor() *NativePDFExtractor {
	return &NativePDFExtractor{}
}

// ExtractFromFile 从文件路径提取PDF文本
// 预期内的失败（文件不存在、非PDF、损坏文档）不返回error，
// 而是返回 Success=false 的结果，错误原因写入 Error 字段
func (e *NativePDFExtractor) ExtractFromFile(ctx context.Context, filePath string) *types.ExtractionResult {
	log := logger.Logger

	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".pdf" {
		return failedExtraction(fmt.Sprintf("unsupported file format: %s", ext))
	}

	if _, err := os.Stat(filePath); err != nil {
		return failedExtraction(fmt.Sprintf("file not found: %s", filePath))
	}

	result, err := e.extractAllPages(ctx, filePath)
	if err != nil {
		log.Warn().Err(err).Str("file", filePath).Msg("PDF解析失败")
		return failedExtraction(err.Error())
	}
	return result
}

// ExtractFromReader 从流提取PDF文本
// 内容先落到临时文件，函数返回前保证清理
func (e *NativePDFExtractor) ExtractFromReader(ctx context.Context, r io.Reader, filename string) *types.ExtractionResult {
	tmp, err := os.CreateTemp("", "resume-*.pdf")
	if err != nil {
		return failedExtraction(fmt.Sprintf("create temp file: %v", err))
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return failedExtraction(fmt.Sprintf("buffer upload: %v", err))
	}
	if err := tmp.Close(); err != nil {
		return failedExtraction(fmt.Sprintf("flush temp file: %v", err))
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && ext != ".pdf" {
		return failedExtraction(fmt.Sprintf("unsupported file format: %s", ext))
	}

	return e.ExtractFromFile(ctx, tmpPath)
}

// extractAllPages 打开文档并逐页提取
// ledongthuc/pdf 对畸形文档可能panic，这里统一recover成错误返回
func (e *NativePDFExtractor) extractAllPages(ctx context.Context, filePath string) (result *types.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("malformed PDF document: %v", r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	meta := readDocumentMeta(reader, totalPages)

	pages := make([]types.PageContent, 0, totalPages)
	var builder strings.Builder
	totalWords := 0

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, pageErr := extractPageText(reader, pageIndex)
		if pageErr != nil {
			logger.Logger.Warn().Int("page", pageIndex).Err(pageErr).Msg("单页提取失败，跳过该页")
			pages = append(pages, types.PageContent{
				PageNumber: pageIndex,
				Error:      pageErr.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			logger.Logger.Warn().Int("page", pageIndex).Msg("页面无可提取文本")
			continue
		}

		wordCount := len(strings.Fields(text))
		totalWords += wordCount
		pages = append(pages, types.PageContent{
			PageNumber: pageIndex,
			Text:       text,
			WordCount:  wordCount,
		})
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return &types.ExtractionResult{
		RawText:    builder.String(),
		Pages:      pages,
		Metadata:   meta,
		Success:    true,
		TotalWords: totalWords,
	}, nil
}

// extractPageText 提取单页文本，页级panic同样收敛为错误
func extractPageText(reader *pdf.Reader, pageIndex int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page content panic: %v", r)
		}
	}()

	page := reader.Page(pageIndex)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", pageIndex)
	}
	return page.GetPlainText(nil)
}

// readDocumentMeta 读取文档Info字典，字段缺失时留空
func readDocumentMeta(reader *pdf.Reader, pageCount int) types.DocumentMeta {
	meta := types.DocumentMeta{PageCount: pageCount}

	defer func() {
		// 个别文档的Info字典损坏，元数据缺失不影响提取
		recover() //nolint:errcheck
	}()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	meta.Title = info.Key("Title").Text()
	meta.Author = info.Key("Author").Text()
	meta.Subject = info.Key("Subject").Text()
	meta.Creator = info.Key("Creator").Text()
	meta.Producer = info.Key("Producer").Text()
	return meta
}

// failedExtraction 构造失败结果
func failedExtraction(reason string) *types.ExtractionResult {
	return &types.ExtractionResult{
		Success: false,
		Error:   reason,
		Pages:   []types.PageContent{},
	}
}
