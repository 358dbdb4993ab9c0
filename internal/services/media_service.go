package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/storage"
	mingle_errors "mingle-server/pkg/errors"

	"github.com/google/uuid"
)

const maxUploadBytes = 50 << 20

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// MediaService pushes message attachments to object storage and hands back
// {url, kind} pointers for the message store.
type MediaService struct {
	store ObjectStore
}

func NewMediaService(store ObjectStore) *MediaService {
	return &MediaService{store: store}
}

var _ ObjectStore = (*storage.Client)(nil)

// UploadAll uploads each multipart file and returns its pointer, in order.
func (s *MediaService) UploadAll(ctx context.Context, senderID uuid.UUID, files []*multipart.FileHeader) ([]FilePointer, error) {
	if s.store == nil && len(files) > 0 {
		return nil, mingle_errors.ErrServiceUnavailable
	}

	pointers := make([]FilePointer, 0, len(files))
	for _, header := range files {
		if header.Size > maxUploadBytes {
			return nil, mingle_errors.ErrTooLarge
		}
		f, err := header.Open()
		if err != nil {
			return nil, err
		}

		contentType := header.Header.Get("Content-Type")
		key := fmt.Sprintf("chat/%s/%s%s", senderID, uuid.New(), path.Ext(header.Filename))
		url, err := s.store.Put(ctx, key, contentType, f)
		f.Close()
		if err != nil {
			return nil, err
		}

		pointers = append(pointers, FilePointer{URL: url, Kind: resourceKind(contentType)})
	}
	return pointers, nil
}

func resourceKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return chat.FileKindImage
	case strings.HasPrefix(contentType, "video/"):
		return chat.FileKindVideo
	case strings.HasPrefix(contentType, "audio/"):
		return chat.FileKindAudio
	default:
		return chat.FileKindRaw
	}
}
