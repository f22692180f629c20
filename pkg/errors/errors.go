package errors

import "errors"

// ErrStatusConflict 条件更新未命中：记录当前状态已不满足转移前置条件。
// 预约状态机的转移全部走 CAS 写入，并发的提交/取消/过期清理中
// 只有一方能赢得写入，输掉的一方收到本错误后应重新读取再决策。
var ErrStatusConflict = errors.New("记录状态已变更，操作未生效")
