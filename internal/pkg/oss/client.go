// Package oss stores member avatars in an Aliyun OSS bucket.
package oss

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"

	"github.com/breathfree/quit_go_server/config"
)

const avatarPrefix = "avatars/"

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Client 头像存储
type Client struct {
	bucket *oss.Bucket
	// 公网访问前缀，如 https://bucket.endpoint 或 https://cdn
	baseURL string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		bucket:  bucket,
		baseURL: publicBase(cfg.BucketName, client.Config.Endpoint, cfg.CDNDomain),
	}, nil
}

func publicBase(bucket, endpoint, cdnDomain string) string {
	if cdnDomain != "" {
		return "https://" + strings.TrimSuffix(cdnDomain, "/")
	}
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s", bucket, strings.TrimSuffix(host, "/"))
}

// UploadAvatar 上传头像，返回公网 URL
func (c *Client) UploadAvatar(userID int64, data []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)
	key := avatarKey(userID, ext)

	opts := []oss.Option{oss.ContentType(contentType(ext)), oss.CacheControl("public, max-age=31536000")}
	if err := c.bucket.PutObject(key, bytes.NewReader(data), opts...); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return c.URL(key), nil
}

// Delete 删除对象
func (c *Client) Delete(objectKey string) error {
	if err := c.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectKey, err)
	}
	return nil
}

// URL returns the public URL of objectKey.
func (c *Client) URL(objectKey string) string {
	return c.baseURL + "/" + objectKey
}

// ExtractObjectKey returns the key of an avatar stored in this bucket, or ""
// for any other URL (e.g. a Google profile picture).
func (c *Client) ExtractObjectKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	base, err := url.Parse(c.baseURL)
	if err != nil || !strings.EqualFold(u.Host, base.Host) {
		return ""
	}

	key := strings.TrimPrefix(u.Path, "/")
	if !strings.HasPrefix(key, avatarPrefix) {
		return ""
	}
	return key
}

func avatarKey(userID int64, ext string) string {
	return fmt.Sprintf("%s%d/%s%s", avatarPrefix, userID, uuid.NewString(), ext)
}

func contentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}
