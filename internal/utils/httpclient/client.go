package httpclient

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContestSync/internal/config"

	"github.com/sirupsen/logrus"
)

// 页面类来源按客户端特征返回不同内容，统一带上浏览器请求头
const (
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9"
	acceptEncoding = "gzip, deflate"
)

// NewHTTPClient 平台请求用的HTTP客户端（代理、超时、响应解压、浏览器请求头）
func NewHTTPClient(cfg *config.PlatformConfig, logger *logrus.Logger) *http.Client {
	return &http.Client{
		Timeout:   cfg.RequestTimeout(),
		Transport: NewTransport(cfg, logger),
	}
}

// NewTransport 页面抓取的colly与JSON请求共用的Transport
func NewTransport(cfg *config.PlatformConfig, logger *logrus.Logger) http.RoundTripper {
	base := &http.Transport{
		Proxy:               proxyFunc(cfg.Proxy, logger),
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
	}
	return &browserTransport{
		userAgent: cfg.Agent(),
		next:      &decodingTransport{next: base, logger: logger},
	}
}

// proxyFunc 未配置或地址非法时走环境变量代理
func proxyFunc(raw string, logger *logrus.Logger) func(*http.Request) (*url.URL, error) {
	if raw == "" {
		return http.ProxyFromEnvironment
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		logger.WithField("proxy", raw).Warn("代理地址无效，忽略该配置")
		return http.ProxyFromEnvironment
	}
	logger.WithField("proxy", u.Redacted()).Info("平台请求走代理")
	return http.ProxyURL(u)
}

// browserTransport 补齐浏览器请求头（调用方已设置的不覆盖）
type browserTransport struct {
	userAgent string
	next      http.RoundTripper
}

func (b *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, value := range map[string]string{
		"User-Agent":      b.userAgent,
		"Accept":          acceptHeader,
		"Accept-Language": acceptLanguage,
	} {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	return b.next.RoundTrip(req)
}

// decodingTransport 声明支持 gzip/deflate 并在返回前解码响应体
type decodingTransport struct {
	next   http.RoundTripper
	logger *logrus.Logger
}

func (d *decodingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept-Encoding", acceptEncoding)
	resp, err := d.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	var decoded io.ReadCloser
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			d.logger.WithError(err).WithField("url", req.URL.String()).Warn("响应声明gzip但无法解码，按原文返回")
			return resp, nil
		}
		decoded = zr
	case "deflate":
		decoded = flate.NewReader(resp.Body)
	default:
		return resp, nil
	}

	resp.Body = &decodedBody{ReadCloser: decoded, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

// decodedBody 关闭时连同原始响应体一起关闭
type decodedBody struct {
	io.ReadCloser
	raw io.ReadCloser
}

func (b *decodedBody) Close() error {
	err := b.ReadCloser.Close()
	if rawErr := b.raw.Close(); err == nil {
		err = rawErr
	}
	return err
}
