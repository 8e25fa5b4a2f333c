package utils

import "strings"

func BuildUserCacheKey(id string) string {
	return "users:get:v1:id=" + strings.TrimSpace(id)
}
