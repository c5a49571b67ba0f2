package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-match-go/internal/api/handler"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler) {
	api := h.Group("/api/v1")

	// 文件预校验，不触发提取
	api.POST("/resumes/validate", func(c context.Context, ctx *app.RequestContext) {
		var req handler.FileValidationRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		ctx.JSON(consts.StatusOK, resumeHandler.HandleValidateFile(req))
	})

	// 完整处理流水线
	api.POST("/resumes/process", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}
		// application_id可选：缺省时只做匿名分析，不落库
		applicationID := ctx.PostForm("application_id")

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		result, err := resumeHandler.HandleResumeProcess(c, file, fileHeader.Size, fileHeader.Filename, applicationID)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	// 对已有分析结果做岗位匹配
	api.POST("/resumes/match", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			ApplicationID string `json:"application_id"`
			JobID         string `json:"job_id"`
		}
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		if req.ApplicationID == "" || req.JobID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "application_id和job_id不能为空"})
			return
		}

		result, err := resumeHandler.HandleResumeMatch(c, req.ApplicationID, req.JobID)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	// 处理并直接匹配目标岗位
	api.POST("/resumes/process-and-match", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}
		// application_id可选，job_id必填
		applicationID := ctx.PostForm("application_id")
		jobID := ctx.PostForm("job_id")
		if jobID == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "job_id不能为空"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		result, err := resumeHandler.HandleProcessAndMatch(c, file, fileHeader.Size, fileHeader.Filename, applicationID, jobID)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	// 分析概要查询
	api.GET("/resumes/:application_id/summary", func(c context.Context, ctx *app.RequestContext) {
		applicationID := ctx.Param("application_id")
		summary, err := resumeHandler.HandleAnalysisSummary(c, applicationID)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, summary)
	})

	// 创建岗位
	api.POST("/jobs", func(c context.Context, ctx *app.RequestContext) {
		var req handler.JobCreateRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		resp, err := resumeHandler.HandleCreateJob(c, req)
		if err != nil {
			ctx.JSON(handler.StatusForError(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
