package xrun

import "errors"

// ErrNilFunc 传入的任务函数为 nil
var ErrNilFunc = errors.New("xrun: nil func")
