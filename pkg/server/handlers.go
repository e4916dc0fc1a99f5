package server

import (
	_ "embed"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/shibing624/file-server/pkg/auth"
	"github.com/shibing624/file-server/pkg/config"
	"github.com/shibing624/file-server/pkg/history"
	"github.com/shibing624/file-server/pkg/logging"
	"github.com/shibing624/file-server/pkg/storage"
	"github.com/shibing624/file-server/pkg/version"
)

//go:embed static/index.html
var indexPage []byte

// maxMultipartOverhead leaves room for the multipart framing and the password
// field on top of the configured file size limit.
const maxMultipartOverhead = 1 << 20

// handlers carries the wired dependencies for the HTTP handlers.
type handlers struct {
	settings *config.Settings
	store    *storage.Store
	catalog  *storage.Catalog
	events   *history.Log
	logger   *logging.Logger
}

func (h *handlers) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   version.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    version.Name + " API",
		"version": version.Version,
		"endpoints": gin.H{
			"upload": gin.H{"method": "POST", "path": "/upload", "auth": "password"},
			"list":   gin.H{"method": "GET", "path": "/list", "auth": "password"},
			"delete": gin.H{"method": "DELETE", "path": "/delete/{filename}", "auth": "password"},
			"health": gin.H{"method": "GET", "path": "/health", "auth": "none"},
		},
		"limits": gin.H{
			"max_file_size":           h.settings.MaxFileSize,
			"max_file_size_formatted": humanize.IBytes(uint64(h.settings.MaxFileSize)),
		},
	})
}

// upload receives one multipart file plus a password field and stores the
// file under its generated name. The body is capped while streaming, so a
// runaway upload aborts the parse instead of filling the disk.
func (h *handlers) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.settings.MaxFileSize+maxMultipartOverhead)

	header, fileErr := c.FormFile("file")

	var tooLarge *http.MaxBytesError
	if errors.As(fileErr, &tooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.tooLargeMessage()})
		return
	}

	if !auth.Verify(c.PostForm("password"), h.settings.UploadPassword) {
		h.logger.Warn("Upload attempt with wrong password", "client", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	if fileErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	ext := storage.Ext(header.Filename)
	if h.settings.IsBlockedExtension(ext) {
		h.logger.Warn("Blocked file type upload", "filename", header.Filename, "extension", ext)
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed: " + ext})
		return
	}

	if header.Size > h.settings.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.tooLargeMessage()})
		return
	}

	src, err := header.Open()
	if err != nil {
		h.logger.Error("failed to read upload", "filename", header.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	defer src.Close()

	name, size, err := h.store.Save(header.Filename, src)
	if err != nil {
		h.logger.Error("failed to save file", "filename", header.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	h.events.Record(history.ActionUpload, name, size, c.ClientIP())
	h.logger.Info("File uploaded", "filename", name, "size", size, "client", c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"url":      h.settings.FileURL(name),
		"filename": name,
		"size":     size,
		"message":  "Upload successful",
	})
}

func (h *handlers) tooLargeMessage() string {
	return "File too large. Maximum size: " + humanize.IBytes(uint64(h.settings.MaxFileSize))
}

// listedFile is one entry in the /list response.
type listedFile struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Size          int64  `json:"size"`
	SizeFormatted string `json:"size_formatted"`
	Icon          string `json:"icon"`
	Created       string `json:"created"`
}

func (h *handlers) list(c *gin.Context) {
	if !auth.Verify(c.Query("password"), h.settings.UploadPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	stored, err := h.catalog.List()
	if err != nil {
		h.logger.Error("failed to read file list", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file list"})
		return
	}

	files := make([]listedFile, 0, len(stored))
	for _, f := range stored {
		files = append(files, listedFile{
			Name:          f.Name,
			URL:           h.settings.FileURL(f.Name),
			Size:          f.Size,
			SizeFormatted: f.SizeFormatted,
			Icon:          f.Icon,
			Created:       f.Created.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "total": len(files)})
}

func (h *handlers) remove(c *gin.Context) {
	if !auth.Verify(c.Query("password"), h.settings.UploadPassword) {
		h.logger.Warn("Delete attempt with wrong password", "client", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	name := c.Param("filename")
	if err := storage.ValidateFilename(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch err := h.store.Remove(name); {
	case err == nil:
	case errors.Is(err, storage.ErrUnsafePath):
		h.logger.Warn("Path traversal attempt", "filename", name, "client", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": storage.ErrUnsafePath.Error()})
		return
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	default:
		h.logger.Error("failed to delete file", "filename", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	h.events.Record(history.ActionDelete, name, 0, c.ClientIP())
	h.logger.Info("File deleted", "filename", name, "client", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Deleted: " + name})
}

// serveFile streams a stored file back. Names that fail validation map to
// 404 rather than 400: for a read, a name that cannot exist is
// indistinguishable from one that does not. The serve rule is looser than
// the delete rule: generated names can carry ".." inside the segment and
// must stay fetchable at their returned URL.
func (h *handlers) serveFile(c *gin.Context) {
	name := c.Param("filename")
	if storage.ValidateServeName(name) != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	f, info, err := h.store.Open(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	defer f.Close()

	c.Header("Content-Type", contentTypeFor(name, f))
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}

// contentTypeFor resolves the response type from the extension, falling back
// to sniffing the content for unknown ones.
func contentTypeFor(name string, f io.ReadSeeker) string {
	if byExt := mime.TypeByExtension(storage.Ext(name)); byExt != "" {
		return byExt
	}
	detected, err := mimetype.DetectReader(f)
	if _, seekErr := f.Seek(0, io.SeekStart); err != nil || seekErr != nil {
		return "application/octet-stream"
	}
	return detected.String()
}
