package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// globalThrottle 实例级令牌桶，挡住瞬时洪峰，保护下游存储。
// 按 IP 的配额由闸门内部的限流层负责，这里不区分来源。
func globalThrottle(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Server is busy. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
