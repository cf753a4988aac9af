package apierror

// 属性目录与实体属性关联的预定义错误
// 这些错误属于可预期的输入校验失败，调用方可以通过 errors.Is 判断错误类型
var (
	// ErrDuplicateName 同一 category 下已存在同名属性
	ErrDuplicateName = &Error{
		Code:       "DuplicateName",
		Message:    "An attribute with the same name already exists in this category.",
		HTTPStatus: 409,
	}

	// ErrInvalidParent 父属性不存在或未启用
	ErrInvalidParent = &Error{
		Code:       "InvalidParent",
		Message:    "The specified parent attribute does not exist or is disabled.",
		HTTPStatus: 400,
	}

	// ErrCycleDetected 重新挂载父节点会导致层级出现环
	ErrCycleDetected = &Error{
		Code:       "CycleDetected",
		Message:    "Reparenting would make the attribute its own ancestor.",
		HTTPStatus: 409,
	}

	// ErrAttributeNotFound 属性不存在
	ErrAttributeNotFound = &Error{
		Code:       "AttributeNotFound",
		Message:    "The specified attribute does not exist.",
		HTTPStatus: 404,
	}

	// ErrLinkNotFound 实体属性关联不存在
	ErrLinkNotFound = &Error{
		Code:       "LinkNotFound",
		Message:    "The specified entity attribute link does not exist.",
		HTTPStatus: 404,
	}

	// ErrSystemAttributeProtected 系统内置属性不允许删除
	ErrSystemAttributeProtected = &Error{
		Code:       "SystemAttributeProtected",
		Message:    "System attributes are protected and cannot be deleted.",
		HTTPStatus: 403,
	}

	// ErrInvalidParameter 请求参数不合法
	ErrInvalidParameter = &Error{
		Code:       "InvalidParameter",
		Message:    "A parameter specified in the request is not valid.",
		HTTPStatus: 400,
	}

	// ErrInternalError 发生了内部错误
	// 通常是底层存储错误，调用方可以重试
	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "An internal error has occurred. Retry your request.",
		HTTPStatus: 500,
	}
)
