package ginx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/wardrobe/pkg/apierror"
)

// renderResponse 渲染响应
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// renderError 渲染错误响应
// 如果 err 是 *apierror.Error，使用其中定义的 HTTP 状态码并序列化错误对象
// 否则使用默认的错误格式
func renderError(ctx *gin.Context, statusCode int, err error) {
	if apiErr, ok := err.(*apierror.Error); ok {
		if apiErr.HTTPStatus > 0 {
			statusCode = apiErr.HTTPStatus
		}
		ctx.JSON(statusCode, gin.H{"error": apiErr})
		return
	}

	ctx.JSON(statusCode, gin.H{"error": gin.H{"message": err.Error()}})
}
