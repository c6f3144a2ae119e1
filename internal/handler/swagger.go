package handler

import (
	"github.com/gin-gonic/gin"
)

// AddSwaggerRoutes публикует статическую документацию API
func AddSwaggerRoutes(router *gin.Engine) {
	docs := router.Group("/docs")
	{
		docs.StaticFile("", "./docs/swagger-ui.html")
		docs.StaticFile("/swagger.json", "./docs/swagger.json")
	}
}
