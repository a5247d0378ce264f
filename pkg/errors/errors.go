package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrTenantRequired 调用链中缺少租户标识
var ErrTenantRequired = errors.New("缺少租户标识")
