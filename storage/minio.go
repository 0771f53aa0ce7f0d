// Package storage 外部存储：封面对象存储与用户目录监听。
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jdlmedia/config"
	"jdlmedia/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CoverStore 歌单封面存放在 MinIO，对外只给预签名地址
type CoverStore struct {
	client *minio.Client
	bucket string
	region string
	expiry time.Duration
}

// NewCoverStore 只创建客户端，不访问网络
func NewCoverStore(cfg *config.Config) (*CoverStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}

	expiry := cfg.CoverURLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &CoverStore{
		client: client,
		bucket: cfg.MinioBucket,
		region: cfg.MinioRegion,
		expiry: expiry,
	}, nil
}

// Bucket 封面桶名
func (s *CoverStore) Bucket() string {
	return s.bucket
}

// EnsureBucket 检查存储桶，不存在则创建
func (s *CoverStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		logger.Info("cover bucket ready", logger.String("bucket", s.bucket))
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	logger.Info("cover bucket created", logger.String("bucket", s.bucket))
	return nil
}

// CoverURL 为封面 key 生成临时下载地址，已经是完整地址的原样返回
func (s *CoverStore) CoverURL(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("empty cover key")
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign cover %s: %w", key, err)
	}
	return u.String(), nil
}
