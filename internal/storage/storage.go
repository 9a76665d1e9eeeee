package storage

import (
	"fmt"
	"lake-backend/config"
	"lake-backend/internal/util"
	"mime/multipart"
	"path"
	"strings"

	"go.uber.org/zap"
)

// Uploader 媒体文件存储，返回可公开访问的 URL
type Uploader interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
	// Delete 删除 URL 指向的对象，非本存储的 URL 直接忽略
	Delete(url string) error
}

// NewUploader 按配置的驱动创建存储实现
func NewUploader(cfg config.Config) (Uploader, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(cfg.GCSProjectID, cfg.GCSBucketName, cfg.GCSCredentialsFile)
	case "local", "":
		return NewLocalStorage(cfg.LocalStoragePath, strings.TrimRight(cfg.BackendURL, "/")+"/uploads")
	default:
		return nil, fmt.Errorf("未知的存储驱动: %s", cfg.StorageDriver)
	}
}

// ObjectPath 生成对象键，例如 posts/images/cat_1714550400000000000.jpg
func ObjectPath(dir string, file *multipart.FileHeader) string {
	return path.Join(dir, util.GenerateUniqueFilename(file.Filename))
}

// keyFromURL 去掉存储的公共前缀得到对象键
func keyFromURL(prefix, url string) (string, bool) {
	prefix = strings.TrimRight(prefix, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func logIgnoredDelete(url string) {
	util.Logger.Debug("跳过非本存储的文件", zap.String("url", url))
}
