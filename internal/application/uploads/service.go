package uploads

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListingPhotosBucket holds listing pictures, one folder per owner.
const ListingPhotosBucket = "listing-photos"

var ErrInvalidFileName = errors.New("file_name must be a .jpg, .jpeg, .png or .webp file")

var allowedPhotoExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type Service struct {
	Client      StorageClient
	SupabaseURL string
	Now         func() time.Time
}

type UploadResult struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Path      string `json:"path"`
}

// ListingPhotoURL signs an upload URL for <userID>/<unixms>-<fileName> in the listing photos bucket.
func (s *Service) ListingPhotoURL(ctx context.Context, userID uuid.UUID, fileName string) (*UploadResult, error) {
	name, err := cleanFileName(fileName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	objectPath := fmt.Sprintf("%s/%d-%s", userID, now.UnixMilli(), name)

	signedURL, err := s.Client.CreateSignedUploadURL(ctx, ListingPhotosBucket, objectPath)
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		UploadURL: signedURL,
		PublicURL: fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(s.SupabaseURL, "/"), ListingPhotosBucket, objectPath),
		Path:      objectPath,
	}, nil
}

func cleanFileName(fileName string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", ErrInvalidFileName
	}
	name = strings.ReplaceAll(name, " ", "_")
	if !allowedPhotoExt[strings.ToLower(path.Ext(name))] {
		return "", ErrInvalidFileName
	}
	return name, nil
}
