package errors

import "errors"

// ErrInvalidDateRange 日期范围起点晚于终点（仓储层与服务层共用）
var ErrInvalidDateRange = errors.New("日期范围无效：开始日期晚于结束日期")
