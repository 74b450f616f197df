package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"question_extractor/internal/model"
	"question_extractor/internal/util"
	"question_extractor/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	uploadProgressKeyPrefix = "upload_progress:"
	uploadProgressTTL       = time.Hour
)

// ProgressService 记录每次上传的提取进度，配置了 Redis 时写入 Redis，否则保存在内存中
type ProgressService struct {
	Redis *redis.Client

	mu    sync.RWMutex
	local map[string]model.UploadProgress
}

func NewProgressService(rdb *redis.Client) *ProgressService {
	return &ProgressService{
		Redis: rdb,
		local: make(map[string]model.UploadProgress),
	}
}

// Update 保存最新进度，写入失败只记录日志，不影响提取
func (s *ProgressService) Update(ctx context.Context, p model.UploadProgress) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	if s.Redis != nil {
		data, err := json.Marshal(p)
		if err != nil {
			logger.Log.Warn("marshal upload progress failed", zap.Error(err))
			return
		}
		if err := s.Redis.Set(ctx, uploadProgressKeyPrefix+p.UploadID, data, uploadProgressTTL).Err(); err != nil {
			logger.Log.Warn("save upload progress failed", zap.String("upload_id", p.UploadID), zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[p.UploadID] = p
	for id, old := range s.local {
		if time.Since(old.UpdatedAt) > uploadProgressTTL {
			delete(s.local, id)
		}
	}
}

func (s *ProgressService) Get(ctx context.Context, uploadID string) (*model.UploadProgress, error) {
	if s.Redis != nil {
		data, err := s.Redis.Get(ctx, uploadProgressKeyPrefix+uploadID).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, util.ErrUploadNotFound
		}
		if err != nil {
			return nil, err
		}
		var p model.UploadProgress
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.local[uploadID]
	if !ok || time.Since(p.UpdatedAt) > uploadProgressTTL {
		return nil, util.ErrUploadNotFound
	}
	return &p, nil
}
