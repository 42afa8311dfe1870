package utils

import "github.com/google/uuid"

// NewID 生成对外使用的时间段 ID（UUID v4）
func NewID() string { return uuid.NewString() }
