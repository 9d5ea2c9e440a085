package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrTenantMismatch 租户隔离违规：记录不属于当前租户
var ErrTenantMismatch = errors.New("记录不属于当前租户")
