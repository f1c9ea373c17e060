package service

import (
	"errors"
	"fmt"
	"net/http"

	"engage/internal/model"
)

// ==================== 错误分类 ====================

// ErrorKind 业务错误类型，决定 HTTP 状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthenticated
	KindTenantNotFound
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
	KindDomainRule
)

// AppError 业务错误
// Message 直接返回给调用方（日文），Err 只写日志
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
	// Details 附加到响应体的字段（如重复报名时的 participation_id）
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同类型同消息视为同一错误，便于 errors.Is 匹配预定义错误
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// HTTPStatus 对应的 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindTenantNotFound, KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindDomainRule:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind ErrorKind, msg string) *AppError {
	return &AppError{Kind: kind, Message: msg}
}

// NotFound 资源不存在（包括跨租户访问）
func NotFound(msg string) *AppError {
	return newError(KindNotFound, msg)
}

// Validation 参数错误
func Validation(msg string) *AppError {
	return newError(KindValidation, msg)
}

// Forbidden 同租户内角色不足
func Forbidden(msg string) *AppError {
	return newError(KindForbidden, msg)
}

// DomainRule 业务规则不允许
func DomainRule(msg string) *AppError {
	return newError(KindDomainRule, msg)
}

// Conflict 资源冲突
func Conflict(msg string, details map[string]interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: msg, Details: details}
}

// Internal 包装存储层等非预期错误
func Internal(op string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "サーバーエラーが発生しました", Err: fmt.Errorf("%s: %w", op, err)}
}

// AsAppError 提取 AppError；非业务错误统一视为内部错误
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("unexpected", err)
}

// ==================== 预定义错误 ====================

var (
	ErrUnauthenticated = newError(KindUnauthenticated, "ログインが必要です")
	ErrTenantNotFound  = newError(KindTenantNotFound, "組織が見つかりません")
	ErrRoleDenied      = Forbidden("この操作を行う権限がありません")

	ErrLeadNotFound          = NotFound("リードが見つかりません")
	ErrGroupNotFound         = NotFound("グループが見つかりません")
	ErrActivityTypeNotFound  = NotFound("活動種別が見つかりません")
	ErrLeadStatusNotFound    = NotFound("ステータスが見つかりません")
	ErrPaymentTypeNotFound   = NotFound("入金種別が見つかりません")
	ErrEventNotFound         = NotFound("イベントが見つかりません")
	ErrParticipationNotFound = NotFound("参加情報が見つかりません")
	ErrPaymentNotFound       = NotFound("入金が見つかりません")
	ErrActivityNotFound      = NotFound("活動が見つかりません")
	ErrUserNotFound          = NotFound("ユーザーが見つかりません")

	ErrPaymentActivityTypeMissing = DomainRule("活動種別「入金」が登録されていません")
	ErrReservedActivityType       = DomainRule("活動種別「入金」は変更・削除できません")
	ErrTypeInUse                  = Conflict("使用中のため削除できません", nil)
	ErrAlreadyInOrganization      = Conflict("既に組織に所属しています", nil)
	ErrUserInOtherOrganization    = Conflict("このユーザーは別の組織に所属しています", nil)
	ErrCannotDetachSelf           = DomainRule("自分自身を組織から外すことはできません")

	ErrEventNotPublic          = NotFound("イベントが見つかりません")
	ErrEventClosed             = DomainRule("このイベントは受付を終了しました")
	ErrRegistrationNotOpen     = DomainRule("申込受付期間外です")
	ErrCapacityReached         = DomainRule("定員に達しています")
	ErrInvalidTransition       = DomainRule("このステータスには変更できません")
	ErrCancelNotAllowed        = DomainRule("この参加はキャンセルできません")
	ErrParticipationEmailMatch = DomainRule("メールアドレスが一致しません")
)

// ErrAlreadyParticipating 重复报名，响应附带已有报名的 id 与状态
var ErrAlreadyParticipating = Conflict("既にお申し込み済みです", nil)

func alreadyParticipating(p *model.EventParticipation) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: ErrAlreadyParticipating.Message,
		Details: map[string]interface{}{
			"participation_id": p.ID,
			"status":           p.Status,
		},
	}
}
