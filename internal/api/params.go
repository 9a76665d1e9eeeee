// Package api 存放各处理器共用的请求解析与响应辅助函数
package api

import (
	stderrors "errors"
	"lake-backend/internal/errors"
	"lake-backend/internal/model"
	"lake-backend/internal/service"
	"lake-backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// IDParam 解析路径中的正整数ID，失败时直接写入错误响应
func IDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的ID"))
		return 0, false
	}
	return id, true
}

// Page 读取 page 和 page_size 查询参数
func Page(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(service.DefaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	}
	if pageSize > service.MaxPageSize {
		pageSize = service.MaxPageSize
	}
	return page, pageSize
}

// Paginated 列表响应
type Paginated struct {
	Results    interface{}      `json:"results"`
	Pagination model.Pagination `json:"pagination"`
}

func NewPaginated(results interface{}, total, page, pageSize int) Paginated {
	return Paginated{Results: results, Pagination: model.NewPagination(total, page, pageSize)}
}

const (
	// MaxUploadSize 单个上传请求体的上限，视频帖子需要较大空间
	MaxUploadSize int64 = 100 << 20
	// 表单中超过该大小的部分写入临时文件而不是留在内存
	maxUploadMemory int64 = 32 << 20
)

// LimitBody 限制请求体最多读取 limit 字节
func LimitBody(c *gin.Context, limit int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
}

// ParseMultipart 限制请求体大小后解析多部分表单，失败时直接写入错误响应
func ParseMultipart(c *gin.Context, limit int64) bool {
	LimitBody(c, limit)
	err := c.Request.ParseMultipartForm(maxUploadMemory)
	if err == nil {
		return true
	}

	util.Logger.Warn("解析多部分表单失败", zap.Error(err))
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "上传内容过大", err))
		return false
	}
	errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法解析表单数据", err))
	return false
}

// RenderFailed 序列化失败统一按内部错误处理
func RenderFailed(c *gin.Context, err error) {
	errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成响应失败", err))
}

var validationMessages = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
}

// BindJSON 绑定请求体，验证失败时按字段返回错误
func BindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		appErr := errors.New(errors.ErrValidation, "数据验证失败")
		for _, fe := range fieldErrs {
			msg, ok := validationMessages[fe.Tag()]
			if !ok {
				msg = "Invalid value."
			}
			appErr.AddField(fe.Field(), msg)
		}
		util.Logger.Warn("请求数据验证失败", zap.String("path", c.FullPath()), zap.Error(err))
		errors.HandleError(c, appErr)
		return false
	}

	util.Logger.Warn("无效的请求数据", zap.Error(err))
	errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无效的请求数据", err))
	return false
}
