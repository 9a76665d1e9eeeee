package util

import (
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".m4v": true}
)

// GenerateUniqueFilename 生成唯一的文件名
func GenerateUniqueFilename(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	name := filepath.Base(originalFilename)
	name = name[:len(name)-len(filepath.Ext(name))]
	name = strings.ReplaceAll(name, " ", "_")

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	return name + "_" + timestamp + ext
}

// IsImageFile 根据扩展名判断是否为图片
func IsImageFile(filename string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsVideoFile 根据扩展名判断是否为视频
func IsVideoFile(filename string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// DetectContentType 根据文件头部内容识别实际类型
func DetectContentType(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// IsImageUpload 扩展名和文件内容都必须是图片
func IsImageUpload(file *multipart.FileHeader) bool {
	return IsImageFile(file.Filename) && contentHasPrefix(file, "image/")
}

// IsVideoUpload 扩展名和文件内容都必须是视频
func IsVideoUpload(file *multipart.FileHeader) bool {
	return IsVideoFile(file.Filename) && contentHasPrefix(file, "video/")
}

func contentHasPrefix(file *multipart.FileHeader, prefix string) bool {
	contentType, err := DetectContentType(file)
	if err != nil {
		Logger.Warn("识别文件类型失败", Error(err))
		return false
	}
	return strings.HasPrefix(contentType, prefix)
}
