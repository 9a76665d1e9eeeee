package service

import (
	"bytes"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lake-backend/internal/model"
	"lake-backend/internal/util"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(recipientID, senderID int, typ model.NotificationType, postID *int) (*model.Notification, error) {
	args := m.Called(recipientID, senderID, typ, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func stubClock(t *testing.T) *util.StubClock {
	t.Helper()
	return util.NewStubClock(testNow)
}

func intPtr(v int) *int {
	return &v
}

// 各类媒体文件的最小文件头
var (
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	mp4Bytes  = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2mp41")
)

// mediaFile 通过真实的多部分表单解析得到可读取内容的 FileHeader
func mediaFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}
