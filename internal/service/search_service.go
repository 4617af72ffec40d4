package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"announcements/internal/model"
	"announcements/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// SearchIndexer 公告搜索索引
type SearchIndexer interface {
	Index(ctx context.Context, a *model.Announcement) error
	Remove(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]int64, error)
}

// SearchService 基于Redis集合的简单倒排索引
type SearchService struct {
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewSearchService 创建搜索服务实例
func NewSearchService(redisClient *redis.Client, logger *logger.Logger) *SearchService {
	return &SearchService{
		redisClient: redisClient,
		logger:      logger,
	}
}

func documentKey(id int64) string {
	return fmt.Sprintf("search:announcement:%d", id)
}

func termKey(term string) string {
	return "search:term:" + term
}

// SearchAttributes 返回公告的可索引内容
func SearchAttributes(a *model.Announcement) map[string]string {
	return map[string]string{"message": a.Message}
}

// Tokenize 将文本拆分为去重的小写词项
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// Index 写入或更新公告的索引
func (s *SearchService) Index(ctx context.Context, a *model.Announcement) error {
	if err := s.Remove(ctx, a.ID); err != nil {
		return err
	}

	var terms []string
	for _, value := range SearchAttributes(a) {
		terms = append(terms, Tokenize(value)...)
	}
	member := strconv.FormatInt(a.ID, 10)

	pipe := s.redisClient.TxPipeline()
	pipe.HSet(ctx, documentKey(a.ID),
		"message", a.Message,
		"space_id", a.SpaceID,
		"terms", strings.Join(terms, " "),
	)
	for _, term := range terms {
		pipe.SAdd(ctx, termKey(term), member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index announcement %d: %w", a.ID, err)
	}
	return nil
}

// Remove 删除公告的索引
func (s *SearchService) Remove(ctx context.Context, id int64) error {
	terms, err := s.redisClient.HGet(ctx, documentKey(id), "terms").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("load index terms %d: %w", id, err)
	}
	member := strconv.FormatInt(id, 10)

	pipe := s.redisClient.TxPipeline()
	for _, term := range strings.Fields(terms) {
		pipe.SRem(ctx, termKey(term), member)
	}
	pipe.Del(ctx, documentKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove index %d: %w", id, err)
	}
	return nil
}

// Search 返回包含查询中全部词项的公告ID
func (s *SearchService) Search(ctx context.Context, query string) ([]int64, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return []int64{}, nil
	}
	keys := make([]string, 0, len(terms))
	for _, term := range terms {
		keys = append(keys, termKey(term))
	}

	members, err := s.redisClient.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			s.logger.Warn("忽略无效的索引成员", "member", m)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids, nil
}
