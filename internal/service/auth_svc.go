package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
	"engage/pkg/utils"
)

// GoogleUserInfoURL Google OIDC userinfo 端点
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// TokenIssuer 会话令牌签发
type TokenIssuer interface {
	Issue(userID int64, email string) (string, time.Time, error)
}

// AuthService Google 登录
// 只把 IdP 返回的已验证邮箱作为身份，令牌刷新不在此处处理
type AuthService struct {
	store       *repository.Store
	issuer      TokenIssuer
	oauth       *oauth2.Config
	client      *resty.Client
	userInfoURL string
	adminEmails map[string]struct{}
	logger      *zap.Logger
}

// NewAuthService 工厂方法
func NewAuthService(store *repository.Store, issuer TokenIssuer, oauth *oauth2.Config,
	userInfoURL string, adminEmails []string, logger *zap.Logger) *AuthService {

	if userInfoURL == "" {
		userInfoURL = GoogleUserInfoURL
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AuthService{
		store:       store,
		issuer:      issuer,
		oauth:       oauth,
		client:      utils.NewHTTPClient(utils.ClientOptions{Timeout: 10 * time.Second, RetryCount: 2}),
		userInfoURL: userInfoURL,
		adminEmails: admins,
		logger:      logger,
	}
}

// GenerateLoginURL 生成授权链接（PKCE S256 + state，state 缓存 10 分钟）
func (s *AuthService) GenerateLoginURL() string {
	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()
	utils.SetCache(state, verifier)

	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

// googleUserInfo userinfo 响应
type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// HandleCallback 校验 state -> 换取 token -> 获取邮箱 -> 查找或创建用户 -> 签发会话
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (*dto.LoginResp, error) {
	// 1. 校验 State（用完即焚）
	verifier, ok := utils.GetCache(state)
	if !ok {
		return nil, &AppError{Kind: KindUnauthenticated, Message: "認証の有効期限が切れました。もう一度ログインしてください"}
	}
	utils.DeleteCache(state)

	// 2. 换取 Token
	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, &AppError{Kind: KindUnauthenticated, Message: "認証に失敗しました", Err: fmt.Errorf("exchange code: %w", err)}
	}

	// 3. 获取用户信息
	info, err := s.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, &AppError{Kind: KindUnauthenticated, Message: "認証に失敗しました", Err: err}
	}
	if info.Email == "" || !info.EmailVerified {
		return nil, &AppError{Kind: KindUnauthenticated, Message: "確認済みのメールアドレスが必要です"}
	}

	// 4. 查找或创建用户
	user, err := s.upsertUser(ctx, info)
	if err != nil {
		return nil, err
	}

	// 5. 签发会话
	accessToken, expiresAt, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, Internal("issue token", err)
	}

	s.logger.Info("用户登录", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return &dto.LoginResp{AccessToken: accessToken, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	var info googleUserInfo
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&info).
		Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode(), resp.String())
	}
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))
	return &info, nil
}

func (s *AuthService) isAdminEmail(email string) bool {
	_, ok := s.adminEmails[email]
	return ok
}

// upsertUser 按邮箱查找用户，不存在则创建；同步姓名头像，管理员邮箱提升为 admin
func (s *AuthService) upsertUser(ctx context.Context, info *googleUserInfo) (*model.User, error) {
	user, err := s.store.Users.GetByEmail(ctx, info.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user = &model.User{
			Email:   info.Email,
			Name:    info.Name,
			Picture: info.Picture,
			Role:    model.RoleUser,
		}
		if s.isAdminEmail(info.Email) {
			user.Role = model.RoleAdmin
		}
		err = s.store.Users.Create(ctx, user)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发首次登录，另一请求已创建
			return s.store.Users.GetByEmail(ctx, info.Email)
		}
		if err != nil {
			return nil, Internal("create user", err)
		}
		return user, nil
	}
	if err != nil {
		return nil, Internal("get user", err)
	}

	if err := s.store.Users.UpdateProfile(ctx, user.ID, info.Name, info.Picture); err != nil {
		return nil, Internal("update profile", err)
	}
	user.Name, user.Picture = info.Name, info.Picture

	if s.isAdminEmail(user.Email) && user.Role != model.RoleAdmin {
		if err := s.store.Users.Assign(ctx, user.ID, user.OrganizationID, model.RoleAdmin); err != nil {
			return nil, Internal("promote admin", err)
		}
		user.Role = model.RoleAdmin
	}
	return user, nil
}
