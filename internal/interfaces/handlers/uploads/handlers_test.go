package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"incontridolci-backend/internal/application/identity"
	uploadsvc "incontridolci-backend/internal/application/uploads"
	"incontridolci-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	bucket, path string
	err          error
}

func (f *fakeStorage) CreateSignedUploadURL(_ context.Context, bucket, path string) (string, error) {
	f.bucket, f.path = bucket, path
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.test/sign/" + path, nil
}

func setupUploadsTest(t *testing.T, storage *fakeStorage, caller *identity.Caller) *fiber.App {
	h := &Handlers{Service: &uploadsvc.Service{Client: storage, SupabaseURL: "https://proj.supabase.co"}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if caller != nil {
			middleware.SetCaller(c, caller)
		}
		return c.Next()
	})
	app.Post("/listing-photo", h.UploadListingPhoto)
	return app
}

func postJSON(t *testing.T, app *fiber.App, payload interface{}) (int, map[string]interface{}) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/listing-photo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func TestUploadListingPhoto_Success(t *testing.T) {
	storage := &fakeStorage{}
	caller := &identity.Caller{UserID: uuid.New()}
	app := setupUploadsTest(t, storage, caller)

	status, result := postJSON(t, app, map[string]string{"file_name": "front.png"})
	assert.Equal(t, 200, status)
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, uploadsvc.ListingPhotosBucket, storage.bucket)
	assert.True(t, strings.HasPrefix(storage.path, caller.UserID.String()+"/"))
	assert.True(t, strings.HasSuffix(storage.path, "-front.png"))

	data := result["data"].(map[string]interface{})
	assert.Equal(t, "https://storage.test/sign/"+storage.path, data["uploadUrl"])
}

func TestUploadListingPhoto_Unauthorized(t *testing.T) {
	app := setupUploadsTest(t, &fakeStorage{}, nil)
	status, _ := postJSON(t, app, map[string]string{"file_name": "front.png"})
	assert.Equal(t, 401, status)
}

func TestUploadListingPhoto_BadInput(t *testing.T) {
	app := setupUploadsTest(t, &fakeStorage{}, &identity.Caller{UserID: uuid.New()})

	status, result := postJSON(t, app, map[string]string{})
	assert.Equal(t, 400, status)
	assert.Equal(t, "file_name is required", result["error"].(map[string]interface{})["message"])

	status, _ = postJSON(t, app, map[string]string{"file_name": "run.exe"})
	assert.Equal(t, 400, status)
}

func TestUploadListingPhoto_StorageFailure(t *testing.T) {
	app := setupUploadsTest(t, &fakeStorage{err: errors.New("boom")}, &identity.Caller{UserID: uuid.New()})
	status, _ := postJSON(t, app, map[string]string{"file_name": "front.png"})
	assert.Equal(t, 500, status)
}
