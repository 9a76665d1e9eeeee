package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"lake-backend/internal/util"
	"mime/multipart"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type GCSClient struct {
	client     *storage.Client
	bucketName string
}

func NewGCSClient(projectID, bucketName, credentialsFile string) (*GCSClient, error) {
	ctx := context.Background()
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	util.Logger.Info("GCS客户端已创建", zap.String("project", projectID), zap.String("bucket", bucketName))

	return &GCSClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *GCSClient) publicURL() string {
	return fmt.Sprintf("https://storage.googleapis.com/%s", c.bucketName)
}

func (c *GCSClient) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	ctx := context.Background()
	obj := c.client.Bucket(c.bucketName).Object(path)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	writer := obj.NewWriter(ctx)
	writer.ContentType = file.Header.Get("Content-Type")
	if _, err = io.Copy(writer, src); err != nil {
		writer.Close()
		return "", err
	}
	// 写入在 Close 时才真正完成
	if err := writer.Close(); err != nil {
		util.Logger.Error("上传到GCS失败", zap.Error(err), zap.String("object", path))
		return "", err
	}

	return c.publicURL() + "/" + path, nil
}

func (c *GCSClient) Delete(url string) error {
	key, ok := keyFromURL(c.publicURL(), url)
	if !ok {
		logIgnoredDelete(url)
		return nil
	}
	err := c.client.Bucket(c.bucketName).Object(key).Delete(context.Background())
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
