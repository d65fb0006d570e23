package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"ContestSync/internal/fallback"
	"ContestSync/internal/model"
)

// runHelper 进程外抓取助手策略：助手在 stdout 输出 JSON 数组或逐行 JSON 对象，
// 字段与页面数据一致（name/title、url、startTime、endTime、duration 分钟）
func (s *Source) runHelper(ctx context.Context) ([]*model.RawContest, error) {
	args := s.Cfg.HelperCommand
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: 抓取助手超时: %v", model.ErrSourceTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: 抓取助手执行失败: %v: %s", model.ErrSourceUnreachable, err, strings.TrimSpace(stderr.String()))
	}

	items, err := decodeHelperOutput(stdout)
	if err != nil {
		return nil, err
	}
	return s.fromObjects(items, strategyHelper), nil
}

func decodeHelperOutput(stdout []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(stdout))
	dec.UseNumber()
	var items []map[string]any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: 抓取助手输出不是合法JSON: %v", model.ErrMalformedSourcePayload, err)
		}
		switch t := v.(type) {
		case []any:
			items = append(items, fallback.AsObjects(t)...)
		case map[string]any:
			items = append(items, t)
		}
	}
	return items, nil
}
