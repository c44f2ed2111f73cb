// 包 partition：多边形等面积切分引擎（几何原语、弦搜索、水平带搜索与四种驱动）
package partition

import (
	"errors"
	"fmt"
)

// Kind：失败类别，供上层映射为用户可见的错误码
type Kind int

const (
	KindInvalidShape Kind = iota + 1
	KindInvalidParameter
	KindUnknownMode
)

func (k Kind) String() string {
	switch k {
	case KindInvalidShape:
		return "invalid_shape"
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindUnknownMode:
		return "unknown_mode"
	}
	return "unknown"
}

// Error：结构化失败结果，Msg 描述被违反的具体约束
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Msg }

func errorf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// IsKind：判断 err 链中是否包含指定类别的 *Error
func IsKind(err error, k Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == k
}

// KindOf：返回 err 链中 *Error 的类别；非引擎错误返回 0
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
