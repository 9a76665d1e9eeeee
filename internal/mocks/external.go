package mocks

import (
	"lake-backend/internal/events"
	"lake-backend/internal/model"
	"lake-backend/internal/storage"
	"mime/multipart"

	"github.com/stretchr/testify/mock"
)

var (
	_ storage.Uploader = (*Uploader)(nil)
	_ events.Publisher = (*Publisher)(nil)
)

type Uploader struct {
	mock.Mock
}

func (m *Uploader) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	args := m.Called(file, path)
	return args.String(0), args.Error(1)
}

func (m *Uploader) Delete(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) PublishNotification(n *model.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *Publisher) Close() {
	m.Called()
}
