package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"contractapi/internal/storage"
	"contractapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArtifactStore_Upload(t *testing.T) {
	ctx := context.Background()
	data := []byte("%PDF-1.7 contract")

	tests := []struct {
		name       string
		data       []byte
		setupMocks func(m *mocks.MockStorage)
		wantURL    string
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			data: data,
			setupMocks: func(m *mocks.MockStorage) {
				m.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "contracts/") && strings.HasSuffix(key, ".pdf")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Size == int64(len(data)) &&
						opt.ContentType == "application/pdf" &&
						opt.Metadata["original-filename"] == "lease.pdf"
				})).Return(func(_ context.Context, key string, r io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
					b, _ := io.ReadAll(r)
					return storage.ObjectInfo{Key: key, Size: int64(len(b))}
				}, nil)
				m.On("PresignGet", ctx, mock.Anything, 24*time.Hour).Return("https://minio.local/contracts/x.pdf?sig", nil)
			},
			wantURL: "https://minio.local/contracts/x.pdf?sig",
		},
		{
			name:       "empty data",
			data:       nil,
			setupMocks: func(m *mocks.MockStorage) {},
			wantErr:    storage.ErrEmptyArtifact,
		},
		{
			name: "put fails",
			data: data,
			setupMocks: func(m *mocks.MockStorage) {
				m.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("access denied"))
			},
			wantErrMsg: "upload to storage: access denied",
		},
		{
			name: "presign fails",
			data: data,
			setupMocks: func(m *mocks.MockStorage) {
				m.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "contracts/a.pdf"}, nil)
				m.On("PresignGet", ctx, "contracts/a.pdf", 24*time.Hour).Return("", errors.New("clock skew"))
			},
			wantErrMsg: "presign url: clock skew",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mocks.MockStorage)
			tt.setupMocks(m)

			a := storage.NewArtifactStore(m, 24*time.Hour)
			got, err := a.Upload(ctx, tt.data, "/tmp/uploads/lease.pdf")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantURL, got.URL)
				assert.Equal(t, int64(len(data)), got.Size)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "contracts/abc.pdf", storage.ObjectKey("abc", "Offer.PDF"))
	assert.Equal(t, "contracts/abc.pdf", storage.ObjectKey("abc", "no-extension"))
	assert.Equal(t, "contracts/abc.pdf", storage.ObjectKey("abc", "weird.extension-too-long"))
}

func TestArtifactStore_URL(t *testing.T) {
	ctx := context.Background()

	t.Run("stored object is re-signed", func(t *testing.T) {
		m := new(mocks.MockStorage)
		m.On("Stat", ctx, "contracts/a.pdf").Return(storage.ObjectInfo{Key: "contracts/a.pdf"}, nil)
		m.On("PresignGet", ctx, "contracts/a.pdf", time.Hour).Return("https://minio.local/a?sig", nil)

		u, err := storage.NewArtifactStore(m, time.Hour).URL(ctx, "contracts/a.pdf")
		require.NoError(t, err)
		assert.Equal(t, "https://minio.local/a?sig", u)
		m.AssertExpectations(t)
	})

	t.Run("missing object is not signed", func(t *testing.T) {
		m := new(mocks.MockStorage)
		m.On("Stat", ctx, "contracts/gone.pdf").Return(storage.ObjectInfo{}, storage.ErrObjectNotFound)

		_, err := storage.NewArtifactStore(m, time.Hour).URL(ctx, "contracts/gone.pdf")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
		m.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
	})
}
