package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const ipHashLength = 16

// HashClientAddr 对客户端地址做单向哈希并截短，只用于限流与排查，不可逆推原始地址。
func HashClientAddr(addr string) string {
	digest := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(digest[:])[:ipHashLength]
}

// ContentFingerprint 计算归一化内容指纹：去首尾空白、转小写后取完整摘要。
// 归一化后相同的内容视为同一条提交。
func ContentFingerprint(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	digest := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(digest[:])
}
