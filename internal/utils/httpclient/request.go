package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"ContestSync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// 响应体上限，防止异常页面撑爆内存
const maxBodyBytes = 16 << 20

// GetJSON GET请求并解码JSON响应
func GetJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: 构造请求失败: %v", model.ErrSourceUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")
	return doJSON(client, req, out)
}

// PostJSON POST一个JSON请求体并解码JSON响应
func PostJSON(ctx context.Context, client *http.Client, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化请求体失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: 构造请求失败: %v", model.ErrSourceUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return doJSON(client, req, out)
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return Classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s 返回状态码 %d", model.ErrSourceUnreachable, req.URL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Classify(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: 解析JSON失败: %v", model.ErrMalformedSourcePayload, err)
	}
	return nil
}

// Classify 把传输层错误映射为 ErrSourceTimeout / ErrSourceUnreachable
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrSourceTimeout) || errors.Is(err, model.ErrSourceUnreachable) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", model.ErrSourceTimeout, err)
	}
	return fmt.Errorf("%w: %v", model.ErrSourceUnreachable, err)
}

// Page 抓取到的HTML页面：原始内容（供脚本内嵌JSON正则使用）与解析后的DOM
type Page struct {
	URL  string
	Body []byte
	Doc  *goquery.Document
}

// FetchPage 用colly抓取页面并交给goquery解析
func FetchPage(ctx context.Context, transport http.RoundTripper, userAgent string, timeout time.Duration, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, Classify(err)
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(timeout)
	c.WithTransport(&ctxTransport{ctx: ctx, next: transport})

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, Classify(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: %s 返回空页面", model.ErrMalformedSourcePayload, rawURL)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: 解析HTML失败: %v", model.ErrMalformedSourcePayload, err)
	}
	return &Page{URL: rawURL, Body: body, Doc: doc}, nil
}

// ctxTransport 让colly发出的请求跟随调用方的context取消
type ctxTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}
