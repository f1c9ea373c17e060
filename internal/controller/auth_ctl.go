package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/middleware"
	"engage/internal/service"
)

// AuthController Google 登录
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController 创建登录控制器
func NewAuthController(s *service.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// Login
// @Summary 跳转 Google 授权页
// @Description 生成 PKCE + state 并重定向到 Google，state 10 分钟内有效
// @Tags Auth
// @Success 302 {string} string "Location: Google 授权页"
// @Router /api/auth/google/login [get]
func (ctrl *AuthController) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, ctrl.authService.GenerateLoginURL())
}

// Callback
// @Summary Google 授权回调
// @Description 校验 state，换取 token，按已验证邮箱查找或创建用户并签发会话
// @Tags Auth
// @Produce json
// @Param code query string true "授权码"
// @Param state query string true "安全校验码"
// @Success 200 {object} dto.LoginResp
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/google/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		fail(c, &service.AppError{Kind: service.KindUnauthenticated, Message: "ログインがキャンセルされました"})
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"code":  http.StatusBadRequest,
			"error": "code または state がありません",
		})
		return
	}

	resp, err := ctrl.authService.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, resp)
}

// Me
// @Summary 当前用户
// @Description 返回用户和所属组织（未加入组织时 organization 为 null）
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MeResp
// @Router /api/auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		fail(c, service.ErrUnauthenticated)
		return
	}
	success(c, dto.MeResp{User: user, Organization: user.Organization})
}
