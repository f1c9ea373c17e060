package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"engage/internal/api/dto"
	"engage/internal/middleware"
	"engage/internal/service"
)

// ==================== 统一响应 ====================

// success 成功响应 {"code":0,"data":...}
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": data})
}

// created 创建成功
func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"code": 0, "data": data})
}

// successList 分页列表
func successList(c *gin.Context, list interface{}, total int64) {
	success(c, dto.ListResp{Total: total, List: list})
}

// fail 失败响应 {"code":<status>,"error":<message>}，附带错误详情
// 内部错误只返回通用文案，原因写日志
func fail(c *gin.Context, err error) {
	appErr := service.AsAppError(err)
	status := appErr.HTTPStatus()

	if appErr.Kind == service.KindInternal {
		middleware.GetLogger(c).Error("请求处理失败",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}

	body := gin.H{"code": status, "error": appErr.Message}
	for k, v := range appErr.Details {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}

// badRequest 参数绑定失败
// 只返回本地化文案与字段名，解码器原始信息写 debug 日志
func badRequest(c *gin.Context, err error) {
	body := gin.H{"code": http.StatusBadRequest, "error": "入力内容が正しくありません"}

	var (
		verrs     validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		body["fields"] = fields
	case errors.Is(err, io.EOF):
		body["error"] = "リクエスト本文がありません"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		body["error"] = "JSON の形式が正しくありません"
	case errors.As(err, &typeErr):
		body["error"] = "値の型が正しくありません"
		body["fields"] = map[string]string{typeErr.Field: "type"}
	}

	middleware.GetLogger(c).Debug("参数绑定失败", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// ==================== 参数辅助 ====================

// parseID 解析路径参数中的 ID
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"code":  http.StatusBadRequest,
			"error": "不正なIDです",
		})
		return 0, false
	}
	return id, true
}

// tenantOf 当前租户；路由未挂 TenantContext 时视为未登录
func tenantOf(c *gin.Context) (*service.Tenant, bool) {
	tenant := middleware.GetTenant(c)
	if tenant == nil {
		fail(c, service.ErrUnauthenticated)
		return nil, false
	}
	return tenant, true
}
