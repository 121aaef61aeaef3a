package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"sdhash/internal/database"
	"sdhash/internal/imageprocessing"
)

type Handler struct {
	DB             *database.ImageDatabase
	ImageDir       string
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// RecognizeResponse is returned by the recognize endpoint
type RecognizeResponse struct {
	Result           string                      `json:"result"`
	Fingerprint      imageprocessing.Fingerprint `json:"fingerprint"`
	Kind             imageprocessing.Kind        `json:"kind"`
	MatchedImage     string                      `json:"matched_image,omitempty"`
	ProcessingTimeMs int64                       `json:"processing_time_ms"`
}

// CompareResponse is returned by the compare endpoint
type CompareResponse struct {
	Duplicates   bool                        `json:"duplicates"`
	Fingerprint1 imageprocessing.Fingerprint `json:"fingerprint1"`
	Fingerprint2 imageprocessing.Fingerprint `json:"fingerprint2"`
}

// SettingsResponse describes the hasher configuration and its derived values
type SettingsResponse struct {
	StandardWidth    int     `json:"standard_width"`
	EdgeWidth        int     `json:"edge_width"`
	KeyFrames        []int   `json:"key_frames"`
	DCTCoreWidth     int     `json:"dct_core_width"`
	DCTCoeffBuckets  int     `json:"dct_coeff_buckets"`
	DCTCoeffSplit    float64 `json:"dct_coeff_split"`
	HeightBuckets    int     `json:"height_buckets"`
	HeightSplit      float64 `json:"height_split"`
	LowerBoundFPRate float64 `json:"lower_bound_fp_rate"`
	IndexedImages    int     `json:"indexed_images"`
}

// readUpload reads a multipart image field, enforcing the size limit
func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("No image file found in field %q", field)})
		return nil, nil, false
	}
	defer file.Close()

	if h.MaxUploadBytes > 0 && header.Size > h.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds %dMB limit", h.MaxUploadBytes>>20)})
		return nil, nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read file"})
		return nil, nil, false
	}
	return data, header, true
}

// fingerprint answers with 400 for inputs that cannot be decoded or hashed
func (h *Handler) fingerprint(c *gin.Context, data []byte) (database.Result, bool) {
	res, err := h.DB.Fingerprint(data)
	if err != nil {
		h.Logger.Info("could not fingerprint upload", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, imageprocessing.ErrUnsupportedFormat) || errors.Is(err, imageprocessing.ErrInputContract) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "Invalid image: " + err.Error()})
		return database.Result{}, false
	}
	return res, true
}

// @Summary Fingerprint image
// @Description Compute the perceptual fingerprint of an image or animation
// @Tags Fingerprint
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} database.Result
// @Failure 400 {object} map[string]string
// @Router /fingerprint [post]
func (h *Handler) FingerprintHandler(c *gin.Context) {
	data, _, ok := h.readUpload(c, "image")
	if !ok {
		return
	}
	res, ok := h.fingerprint(c, data)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Compare images
// @Description Report whether two uploads are duplicates
// @Tags Fingerprint
// @Accept multipart/form-data
// @Produce json
// @Param image1 formData file true "First image"
// @Param image2 formData file true "Second image"
// @Success 200 {object} CompareResponse
// @Failure 400 {object} map[string]string
// @Router /compare [post]
func (h *Handler) CompareHandler(c *gin.Context) {
	data1, _, ok := h.readUpload(c, "image1")
	if !ok {
		return
	}
	data2, _, ok := h.readUpload(c, "image2")
	if !ok {
		return
	}
	res1, ok := h.fingerprint(c, data1)
	if !ok {
		return
	}
	res2, ok := h.fingerprint(c, data2)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, CompareResponse{
		Duplicates:   res1.Fingerprint.Equal(res2.Fingerprint),
		Fingerprint1: res1.Fingerprint,
		Fingerprint2: res2.Fingerprint,
	})
}

// @Summary Recognize image
// @Description Look the uploaded image up among the reference images
// @Tags Image Recognition
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file to check"
// @Success 200 {object} RecognizeResponse
// @Failure 400 {object} map[string]string
// @Router /recognize [post]
func (h *Handler) RecognizeHandler(c *gin.Context) {
	startTime := time.Now()
	data, _, ok := h.readUpload(c, "image")
	if !ok {
		return
	}
	res, ok := h.fingerprint(c, data)
	if !ok {
		return
	}

	response := RecognizeResponse{
		Result:      "NOT OK",
		Fingerprint: res.Fingerprint,
		Kind:        res.Kind,
	}
	if match, found := h.DB.FindMatch(res.Fingerprint); found {
		response.Result = "OK"
		response.MatchedImage = match.Filename
	}
	response.ProcessingTimeMs = time.Since(startTime).Milliseconds()

	h.Logger.Info("recognize",
		zap.String("fingerprint", res.Fingerprint.String()),
		zap.String("result", response.Result),
		zap.String("matched_image", response.MatchedImage),
	)
	c.JSON(http.StatusOK, response)
}

// @Summary Add new image
// @Description Add reference image to database
// @Tags Image Database Management
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file to upload"
// @Param name formData string false "Custom image name"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/add [post]
func (h *Handler) AddImageHandler(c *gin.Context) {
	data, header, ok := h.readUpload(c, "image")
	if !ok {
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageprocessing.IsImageFile(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file format. Please upload a valid image."})
		return
	}

	filename := header.Filename
	if customName := c.PostForm("name"); customName != "" {
		filename = filepath.Base(customName) + ext
	}
	uniqueFilename := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(filename))

	info, err := h.DB.AddImage(data, uniqueFilename)
	switch {
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, imageprocessing.ErrUnsupportedFormat), errors.Is(err, imageprocessing.ErrInputContract):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image: " + err.Error()})
		return
	case err != nil:
		h.Logger.Error("could not index image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not index image"})
		return
	}

	savePath := filepath.Join(h.ImageDir, uniqueFilename)
	if err := os.WriteFile(savePath, data, 0o644); err != nil {
		h.Logger.Error("error saving image", zap.String("path", savePath), zap.Error(err))
		_, _ = h.DB.Remove(info.Fingerprint)
		if os.IsPermission(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission denied when saving image"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save image"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Image added successfully",
		"filename":    uniqueFilename,
		"fingerprint": info.Fingerprint,
	})
}

// @Summary List images
// @Description List the reference images in the database
// @Tags Image Database Management
// @Produce json
// @Success 200 {array} database.ImageInfo
// @Router /admin/images [get]
func (h *Handler) ListImagesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.DB.ListImages())
}

// @Summary Remove image
// @Description Remove a reference image by fingerprint
// @Tags Image Database Management
// @Produce json
// @Param fingerprint path string true "Fingerprint"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/images/{fingerprint} [delete]
func (h *Handler) RemoveImageHandler(c *gin.Context) {
	fp := imageprocessing.Fingerprint(c.Param("fingerprint"))
	info, err := h.DB.Remove(fp)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	path := filepath.Join(h.ImageDir, info.Filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.Logger.Warn("could not delete image file", zap.String("path", path), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image removed", "filename": info.Filename})
}

// @Summary Hasher settings
// @Description Show the hasher configuration and derived values
// @Tags Image Database Management
// @Produce json
// @Success 200 {object} SettingsResponse
// @Router /admin/settings [get]
func (h *Handler) SettingsHandler(c *gin.Context) {
	hasher := h.DB.Hasher()
	c.JSON(http.StatusOK, SettingsResponse{
		StandardWidth:    hasher.StandardWidth(),
		EdgeWidth:        hasher.EdgeWidth(),
		KeyFrames:        hasher.KeyFrames(),
		DCTCoreWidth:     hasher.DCTCoreWidth(),
		DCTCoeffBuckets:  hasher.DCTCoeffBuckets(),
		DCTCoeffSplit:    hasher.DCTCoeffSplit(),
		HeightBuckets:    hasher.HeightBuckets(),
		HeightSplit:      hasher.HeightSplit(),
		LowerBoundFPRate: hasher.LowerBoundFPRate(),
		IndexedImages:    h.DB.Len(),
	})
}

// @Summary Hello endpoint
// @Description Test connection endpoint
// @Tags Image Database Management
// @Produce json
// @Success 200 {object} map[string]string
// @Router /admin/hello [get]
func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello, world"})
}
