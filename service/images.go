package service

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"hackdash/dao/model"
	"hackdash/logutils"
	"hackdash/response"
	"hackdash/storage"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerImages(g *gin.RouterGroup) {
	for _, kind := range []model.ImageKind{model.ImageLogo, model.ImageBanner} {
		group := g.Group("/" + string(kind))
		group.POST("/upload", s.UploadImage(kind))
		group.POST("/delete", s.DeleteImage(kind))
	}
	g.GET("/res/images/:id", s.GetImage)
}

// UploadImage stores the raw request body as the caller's project image.
// A declared Content-Length over the cap is refused before reading.
func (s *Server) UploadImage(kind model.ImageKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > s.opts.MaxUpload {
			respondError(c, storage.ErrTooLarge)
			return
		}
		url, err := s.m.Teams.UploadImage(c.Request.Context(), principal(c), kind, c.Request.Body)
		if err != nil {
			respondError(c, err)
			return
		}
		response.SuccessWith(c, gin.H{"url": url})
	}
}

func (s *Server) DeleteImage(kind model.ImageKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.m.Teams.DeleteImage(c.Request.Context(), principal(c), kind); err != nil {
			respondError(c, err)
			return
		}
		response.Success(c)
	}
}

// GetImage streams a stored image as image/jpeg.
func (s *Server) GetImage(c *gin.Context) {
	rc, size, err := s.m.Teams.OpenImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Length", strconv.FormatInt(size, 10))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		logutils.Log.WithField("image", c.Param("id")).Warn("stream image: ", err)
	}
}
