package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-pricer/internal/pkg/common"
)

// BodySizeLimit 限制請求體大小，maxSize <= 0 時不限制
//
// 宣告的 Content-Length 過大直接回 413；未宣告長度的請求由 MaxBytesReader
// 在讀取時截斷，後續 ShouldBindJSON 會得到錯誤。
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		if n := c.Request.ContentLength; n > maxSize {
			common.LogWarn("請求體過大",
				zap.Int64("content_length", n),
				zap.Int64("max_size", maxSize),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
			)
			err := common.ErrPayloadTooLarge.WithErr(fmt.Errorf("body of %d bytes exceeds %d", n, maxSize))
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, err.Response(false))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
