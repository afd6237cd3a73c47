package errors

// FromError 将任意 error 归一化为 Errno。
// 已经是 Errno 的原样返回，其余包装为 ErrInternal。
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Errno); ok {
		return e
	}
	return ErrInternal.WithCause(err)
}

// IsCode 判断 err 是否携带指定错误码。
func IsCode(err error, code int) bool {
	if e, ok := err.(*Errno); ok {
		return e.Code == code
	}
	return false
}
