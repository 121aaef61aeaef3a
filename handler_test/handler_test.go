package handler_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sdhash/api"
	"sdhash/api/handler"
	"sdhash/internal/database"
	"sdhash/internal/imageprocessing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler(t *testing.T) {
	testDir := t.TempDir()

	newHandler := func() *handler.Handler {
		hasher, err := imageprocessing.NewHasher(imageprocessing.DefaultConfig())
		require.NoError(t, err)
		return &handler.Handler{
			DB:             database.NewImageDatabase(hasher, zap.NewNop(), time.Minute),
			ImageDir:       testDir,
			MaxUploadBytes: 10 << 20,
			Logger:         zap.NewNop(),
		}
	}

	t.Run("TestAddImageHandler", func(t *testing.T) {
		h := newHandler()

		resp := addImage(t, h, "test.png", createTestImage())
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Image added successfully")

		var body map[string]string
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.FileExists(t, filepath.Join(testDir, body["filename"]))
		assert.Len(t, body["fingerprint"], 64)
		assert.Equal(t, 1, h.DB.Len())
	})

	t.Run("TestDuplicateImage", func(t *testing.T) {
		h := newHandler()
		img := createTestImage()

		resp := addImage(t, h, "duplicate_test.png", img)
		require.Equal(t, http.StatusOK, resp.Code, "Initial image add failed")

		resp = addImage(t, h, "duplicate_test.png", img)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "already exists")
	})

	t.Run("TestUnsupportedExtension", func(t *testing.T) {
		h := newHandler()
		resp := addImage(t, h, "notes.txt", createTestImage())
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "Unsupported file format")
	})

	t.Run("TestMissingFile", func(t *testing.T) {
		h := newHandler()
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("name", "nothing")
		writer.Close()

		resp := serve(h.RecognizeHandler, "/recognize", body, writer.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "No image file found")
	})

	t.Run("TestUploadTooLarge", func(t *testing.T) {
		h := newHandler()
		h.MaxUploadBytes = 16

		body, contentType := multipartImages(t, map[string]image.Image{"image": createTestImage()})
		resp := serve(h.FingerprintHandler, "/fingerprint", body, contentType)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "File size exceeds")
	})

	t.Run("TestRecognizeHandler", func(t *testing.T) {
		h := newHandler()
		require.Equal(t, http.StatusOK, addImage(t, h, "reference.png", createTestImage()).Code)

		body, contentType := multipartImages(t, map[string]image.Image{"image": createTestImage()})
		resp := serve(h.RecognizeHandler, "/recognize", body, contentType)
		require.Equal(t, http.StatusOK, resp.Code)

		var got handler.RecognizeResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, "OK", got.Result)
		assert.Contains(t, got.MatchedImage, "reference.png")
		assert.Equal(t, imageprocessing.KindImage, got.Kind)

		body, contentType = multipartImages(t, map[string]image.Image{"image": imaging.FlipH(createTestImage())})
		resp = serve(h.RecognizeHandler, "/recognize", body, contentType)
		require.Equal(t, http.StatusOK, resp.Code)
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, "NOT OK", got.Result)
		assert.Empty(t, got.MatchedImage)
	})

	t.Run("TestRecognizeInvalidImage", func(t *testing.T) {
		h := newHandler()
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("image", "broken.png")
		part.Write([]byte("not an image at all"))
		writer.Close()

		resp := serve(h.RecognizeHandler, "/recognize", body, writer.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "Invalid image")
	})

	t.Run("TestCompareHandler", func(t *testing.T) {
		h := newHandler()
		img := createTestImage()

		body, contentType := multipartImages(t, map[string]image.Image{"image1": img, "image2": imaging.Grayscale(img)})
		resp := serve(h.CompareHandler, "/compare", body, contentType)
		require.Equal(t, http.StatusOK, resp.Code)

		var got handler.CompareResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.True(t, got.Duplicates)
		assert.Equal(t, got.Fingerprint1, got.Fingerprint2)

		body, contentType = multipartImages(t, map[string]image.Image{"image1": img, "image2": imaging.FlipV(img)})
		resp = serve(h.CompareHandler, "/compare", body, contentType)
		require.Equal(t, http.StatusOK, resp.Code)
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.False(t, got.Duplicates)
	})
}

func TestRouter(t *testing.T) {
	testDir := t.TempDir()

	hasher, err := imageprocessing.NewHasher(imageprocessing.DefaultConfig())
	require.NoError(t, err)
	db := database.NewImageDatabase(hasher, zap.NewNop(), time.Minute)
	router := api.Router(&handler.Handler{
		DB:             db,
		ImageDir:       testDir,
		MaxUploadBytes: 10 << 20,
		Logger:         zap.NewNop(),
	})

	do := func(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		if body == nil {
			body = &bytes.Buffer{}
		}
		req, _ := http.NewRequest(method, path, body)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	resp := do(http.MethodGet, "/admin/hello", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Hello, world")

	body, contentType := multipartImages(t, map[string]image.Image{"image": createTestImage()})
	resp = do(http.MethodPost, "/fingerprint", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)
	var res database.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, imageprocessing.KindImage, res.Kind)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, 100, res.Width)

	body, contentType = multipartImages(t, map[string]image.Image{"image": createTestImage()})
	resp = do(http.MethodPost, "/admin/add", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(http.MethodGet, "/admin/images", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var images []database.ImageInfo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &images))
	require.Len(t, images, 1)
	assert.Equal(t, res.Fingerprint, images[0].Fingerprint)
	savedPath := filepath.Join(testDir, images[0].Filename)
	assert.FileExists(t, savedPath)

	resp = do(http.MethodGet, "/admin/settings", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var settings handler.SettingsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &settings))
	assert.Equal(t, 128, settings.StandardWidth)
	assert.Equal(t, []int{0, 5, 10, 20, 40, 80}, settings.KeyFrames)
	assert.Equal(t, 1, settings.IndexedImages)

	resp = do(http.MethodDelete, "/admin/images/"+res.Fingerprint.String(), nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoFileExists(t, savedPath)
	assert.Zero(t, db.Len())

	resp = do(http.MethodDelete, "/admin/images/"+res.Fingerprint.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "sdhash_fingerprints_total")
}

// Yordamchi funksiyalar
func createTestImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(2 * x),
				G: uint8(x + y),
				B: uint8(y / 2),
				A: 255,
			})
		}
	}
	return img
}

func multipartImages(t *testing.T, files map[string]image.Image) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, img := range files {
		part, err := writer.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		require.NoError(t, imaging.Encode(part, img, imaging.PNG))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func serve(fn gin.HandlerFunc, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	ctx, _ := gin.CreateTestContext(resp)
	ctx.Request = req
	fn(ctx)
	return resp
}

func addImage(t *testing.T, h *handler.Handler, filename string, img image.Image) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", filename)
	require.NoError(t, imaging.Encode(part, img, imaging.PNG))
	writer.Close()

	return serve(h.AddImageHandler, "/admin/add", body, writer.FormDataContentType())
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
