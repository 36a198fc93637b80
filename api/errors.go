package api

import (
	"errors"
	"fmt"
)

// Kind はクライアントが返すエラーの種別です
// 取りうる値は下の4つのみで、エラー変換層はこれを網羅的に判定します
type Kind int

const (
	// KindUpstreamUnavailable は通信自体が完了しなかったことを表します (タイムアウト、DNS、接続拒否)
	KindUpstreamUnavailable Kind = iota + 1
	// KindUpstreamProtocol はレスポンスを正規化できなかったことを表します
	KindUpstreamProtocol
	// KindUpstreamNotFound はJIRAがボード/スプリントの不存在を報告したことを表します
	KindUpstreamNotFound
	// KindFixtureInvalid はモック用フィクスチャが欠落または不正であることを表します
	KindFixtureInvalid
)

func (k Kind) String() string {
	switch k {
	case KindUpstreamUnavailable:
		return "UpstreamUnavailable"
	case KindUpstreamProtocol:
		return "UpstreamProtocolError"
	case KindUpstreamNotFound:
		return "UpstreamNotFound"
	case KindFixtureInvalid:
		return "FixtureInvalid"
	default:
		return "Unknown"
	}
}

// errors.Is で種別を判定するための番兵です
var (
	ErrUnavailable    = &Error{Kind: KindUpstreamUnavailable}
	ErrProtocol       = &Error{Kind: KindUpstreamProtocol}
	ErrNotFound       = &Error{Kind: KindUpstreamNotFound}
	ErrFixtureInvalid = &Error{Kind: KindFixtureInvalid}
)

// Error はクライアント操作の失敗を表します
type Error struct {
	Kind   Kind
	Op     string // 例: "fetch boards"
	Status int    // HTTPステータス (レスポンスを受け取った場合のみ)
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is は種別が一致すれば true を返します
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf はエラーの種別を返します。*Error でなければ 0 を返します
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsNotFound はエラーが UpstreamNotFound かどうかを返します
func IsNotFound(err error) bool { return KindOf(err) == KindUpstreamNotFound }

// IsUnavailable はエラーが UpstreamUnavailable かどうかを返します
func IsUnavailable(err error) bool { return KindOf(err) == KindUpstreamUnavailable }

// IsProtocol はエラーが UpstreamProtocolError かどうかを返します
func IsProtocol(err error) bool { return KindOf(err) == KindUpstreamProtocol }

// IsFixtureInvalid はエラーが FixtureInvalid かどうかを返します
func IsFixtureInvalid(err error) bool { return KindOf(err) == KindFixtureInvalid }
