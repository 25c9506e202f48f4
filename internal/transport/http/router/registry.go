package router

import "ai-image-studio/internal/transport/http/ez"

// Mount 一个 Mount 注册一组同前缀的路由
type Mount func(ez.EZ)

// MountAll 按顺序把路由挂到同一个分组
func MountAll(e ez.EZ, mounts ...Mount) {
	for _, m := range mounts {
		if m != nil {
			m(e)
		}
	}
}
