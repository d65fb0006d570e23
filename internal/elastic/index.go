package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"ContestSync/internal/model"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultIndex 比赛检索索引名
const DefaultIndex = "contests_v1"

const contestMapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
	"name":{"type":"text","fields":{"raw":{"type":"keyword"}}},"platform":{"type":"keyword"},
	"url":{"type":"keyword","index":false},"status":{"type":"keyword"},"duration":{"type":"integer"},
	"start_time":{"type":"date"},"end_time":{"type":"date"},"updated_at":{"type":"date"}
}}}`

// ContestDoc 写入索引的文档
type ContestDoc struct {
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	Duration  int       `json:"duration"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BuildContestDoc 比赛记录 → 索引文档
func BuildContestDoc(c *model.Contest, now time.Time) ([]byte, error) {
	return json.Marshal(ContestDoc{
		Name:      c.Name,
		Platform:  string(c.Platform),
		URL:       c.URL,
		Status:    string(c.Status),
		Duration:  c.Duration,
		StartTime: c.StartTime.UTC(),
		EndTime:   c.EndTime.UTC(),
		UpdatedAt: now.UTC(),
	})
}

// DocID 由自然键派生的稳定文档ID，重复写入同一场比赛会覆盖原文档
func DocID(c *model.Contest) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(c.NaturalKey())).String()
}

// Indexer 把对账后的比赛批量写入ES
type Indexer struct {
	client *es.Client
	index  string
	logger *logrus.Logger
}

func NewIndexer(client *es.Client, index string, logger *logrus.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{client: client, index: index, logger: logger}
}

// EnsureIndex 索引不存在时按映射创建
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("检查索引 %s 失败: %w", i.index, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := i.client.Indices.Create(i.index,
		i.client.Indices.Create.WithBody(bytes.NewBufferString(contestMapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("创建索引 %s 失败: %w", i.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("创建索引 %s 失败: %s", i.index, res.String())
	}
	i.logger.WithField("index", i.index).Info("比赛检索索引已创建")
	return nil
}

// IndexContests 批量写入，单条失败只计数；有失败时返回汇总错误
func (i *Indexer) IndexContests(ctx context.Context, contests []*model.Contest) error {
	if len(contests) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     i.client,
		Index:      i.index,
		FlushBytes: 5 << 20,
		NumWorkers: 2,
	})
	if err != nil {
		return fmt.Errorf("创建批量写入器失败: %w", err)
	}

	var failed atomic.Int64
	now := time.Now()
	for _, c := range contests {
		body, err := BuildContestDoc(c, now)
		if err != nil {
			failed.Add(1)
			continue
		}
		name := c.Name
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: DocID(c),
			Body:       bytes.NewReader(body),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				msg := ""
				switch {
				case err != nil:
					msg = err.Error()
				case res.Error.Reason != "":
					msg = fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
				default:
					msg = fmt.Sprintf("status=%d", res.Status)
				}
				i.logger.WithFields(logrus.Fields{"name": name, "doc_id": item.DocumentID}).Warnf("比赛写入索引失败: %s", msg)
			},
		})
		if err != nil {
			failed.Add(1)
		}
	}
	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("批量写入索引失败: %w", err)
	}

	stats := bi.Stats()
	i.logger.WithFields(logrus.Fields{
		"index":   i.index,
		"indexed": stats.NumIndexed,
		"failed":  failed.Load(),
	}).Info("比赛检索索引写入完成")
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d 条比赛写入索引失败", n)
	}
	return nil
}
