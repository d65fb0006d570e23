package elastic

import (
	"fmt"
	"strings"

	"ContestSync/internal/config"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
)

// Connect 按配置创建ES客户端；未配置地址时返回 nil（检索索引为可选功能）
func Connect(cfg config.ElasticConfig, logger *logrus.Logger) (*es.Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		logger.Info("未配置Elasticsearch地址，跳过检索索引")
		return nil, nil
	}
	client, err := es.NewClient(es.Config{
		Addresses: strings.Split(cfg.URL, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("创建Elasticsearch客户端失败: %w", err)
	}
	logger.WithField("addresses", cfg.URL).Info("Elasticsearch客户端已创建")
	return client, nil
}
