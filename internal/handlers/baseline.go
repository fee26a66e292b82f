package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sti-backend/internal/database"
	"sti-backend/internal/media"
	"sti-backend/internal/models"
)

type BaselineHandler struct {
	dbClient *database.Client
	store    *media.Store
	resolver *media.Resolver
	logger   *zap.Logger
}

func NewBaselineHandler(dbClient *database.Client, store *media.Store, resolver *media.Resolver, logger *zap.Logger) *BaselineHandler {
	return &BaselineHandler{dbClient: dbClient, store: store, resolver: resolver, logger: logger}
}

// Upload stores a transformer's baseline image under baseline/<no>.<ext> and
// records the path on the transformer row. Re-uploading overwrites.
func (h *BaselineHandler) Upload(c *gin.Context) {
	transformerNo := c.Param("no")

	t, err := h.dbClient.GetTransformerByNo(transformerNo)
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}

	uploaderName := c.PostForm("uploaderName")
	if uploaderName == "" {
		uploaderName = "admin"
	}

	ext := media.ExtForUpload(file.Filename, file.Header.Get("Content-Type"), "bin")

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read file"})
		return
	}
	defer src.Close()

	savedRel, err := h.store.SaveBaseline(transformerNo, ext, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	t.BaselineImagePath = sql.NullString{String: savedRel, Valid: true}
	t.BaselineUploadedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	t.UploaderName = sql.NullString{String: uploaderName, Valid: true}
	if err := h.dbClient.UpdateTransformer(t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	h.logger.Info("baseline image uploaded",
		zap.String("transformerNo", transformerNo),
		zap.String("path", savedRel))

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"transformerNo": transformerNo,
		"savedPath":     savedRel,
		"baselineUrl":   "/media/" + savedRel,
		"uploaderName":  uploaderName,
	})
}

// Serve streams the baseline image file itself. Falls back to an extension
// probe when the stored path is stale.
func (h *BaselineHandler) Serve(c *gin.Context) {
	transformerNo := c.Param("no")

	var stored string
	if t, err := h.dbClient.GetTransformerByNo(transformerNo); err == nil {
		stored = t.BaselineImagePath.String
	}

	abs, ok := h.resolver.ResolveBaseline(transformerNo, stored)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.File(abs)
}

// Info returns baseline metadata without the file body.
func (h *BaselineHandler) Info(c *gin.Context) {
	t, err := h.dbClient.GetTransformerByNo(c.Param("no"))
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}
	if !t.BaselineImagePath.Valid || t.BaselineImagePath.String == "" {
		c.Status(http.StatusNotFound)
		return
	}

	uploaderName := t.UploaderName.String
	if uploaderName == "" {
		uploaderName = "unknown"
	}
	var uploadedAt any
	if t.BaselineUploadedAt.Valid {
		uploadedAt = t.BaselineUploadedAt.Time.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"url":          publicMediaURL(t.BaselineImagePath.String),
		"uploadedAt":   uploadedAt,
		"uploaderName": uploaderName,
	})
}

// Delete removes the baseline image file and clears the transformer's
// baseline fields. A missing file is not an error.
func (h *BaselineHandler) Delete(c *gin.Context) {
	t, err := h.dbClient.GetTransformerByNo(c.Param("no"))
	if err != nil {
		respondDBError(c, err, "failed to get transformer")
		return
	}

	if abs, ok := h.resolver.ResolveBaseline(t.TransformerNo, t.BaselineImagePath.String); ok {
		for _, res := range media.RemoveFiles(h.resolver.Root(), []string{abs}) {
			if res.Err != nil {
				h.logger.Warn("failed to remove baseline file",
					zap.String("path", res.Path), zap.Error(res.Err))
			}
		}
	}

	t.BaselineImagePath = sql.NullString{}
	t.BaselineUploadedAt = sql.NullTime{}
	t.UploaderName = sql.NullString{}
	if err := h.dbClient.UpdateTransformer(t); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update transformer",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// publicMediaURL normalizes a stored path to its /media/** form regardless of
// how it was recorded.
func publicMediaURL(stored string) string {
	p := stored
	if len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	if len(p) >= 6 && p[:6] == "media/" {
		return "/" + p
	}
	return "/media/" + p
}
