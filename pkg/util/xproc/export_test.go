package xproc

import "sync"

// resetProcessName 清空缓存，仅测试使用。
func resetProcessName() {
	processNameOnce = sync.Once{}
	processNameValue = ""
}
