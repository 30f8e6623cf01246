// Package controllers handles HTTP request handling
package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementportal/internal/app/models/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewSuccessResponse(data))
}

func respondMessage(ctx *gin.Context, message string) {
	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: message})
}

// sendWorkbook streams a rendered workbook as an attachment
func sendWorkbook(ctx *gin.Context, filename string, buf *bytes.Buffer) {
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
