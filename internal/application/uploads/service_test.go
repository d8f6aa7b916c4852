package uploads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingPhotoURL(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "/object/upload/sign/listing-photos/x?token=abc"})
	}))
	defer srv.Close()

	userID := uuid.New()
	svc := &Service{
		Client:      &HTTPClient{BaseURL: srv.URL, ServiceRoleKey: "service-key"},
		SupabaseURL: srv.URL,
		Now:         func() time.Time { return time.UnixMilli(1717236000000) },
	}
	res, err := svc.ListingPhotoURL(context.Background(), userID, "my photo.JPG")
	require.NoError(t, err)

	wantPath := userID.String() + "/1717236000000-my_photo.JPG"
	assert.Equal(t, wantPath, res.Path)
	assert.Equal(t, "/storage/v1/object/upload/sign/listing-photos/"+wantPath, gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, srv.URL+"/storage/v1/object/upload/sign/listing-photos/x?token=abc", res.UploadURL)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/listing-photos/"+wantPath, res.PublicURL)
}

func TestListingPhotoURL_RejectsBadNames(t *testing.T) {
	svc := &Service{Client: &HTTPClient{}}
	for _, name := range []string{"", "script.sh", "../../etc/passwd", "noext"} {
		_, err := svc.ListingPhotoURL(context.Background(), uuid.New(), name)
		assert.ErrorIs(t, err, ErrInvalidFileName, name)
	}
}

func TestHTTPClient_StorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	defer srv.Close()

	c := &HTTPClient{BaseURL: srv.URL, ServiceRoleKey: "anon"}
	_, err := c.CreateSignedUploadURL(context.Background(), ListingPhotosBucket, "a/b.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
