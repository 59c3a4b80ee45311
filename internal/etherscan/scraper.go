package etherscan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

// 两个备选的页面文本模式；站点改版时只需要改这里
var (
	// readProxyMessage span 中的实现合约链接
	proxyMessagePattern = regexp.MustCompile(
		`(?is)<span id="ContentPlaceHolder1_readProxyMessage"[^>]*>.*?implementation contract at.*?<a href='/address/(0x[a-fA-F0-9]{40})#code'>`)
	// 宽松的备选模式，应对 HTML 结构变化
	alternativePattern = regexp.MustCompile(
		`(?is)implementation contract at.*?<a[^>]*href=['"]/address/(0x[a-fA-F0-9]{40})['"]`)
	// ABI 错误负载里提到的地址
	payloadAddressPattern = regexp.MustCompile(`at (0x[a-fA-F0-9]{40})`)
)

// PageScraper 从浏览器页面抓取代理合约的实现地址。两个脆弱的文本模式被
// 隔离在这个窄接口后面，核心逻辑只依赖它的契约。
type PageScraper struct {
	baseUrl string
	client  *http.Client
}

func NewPageScraper(baseUrl string, client *http.Client) *PageScraper {
	return &PageScraper{baseUrl: baseUrl, client: client}
}

// ResolveImplementationFromPage 请求代理合约页面并提取实现地址；未找到时返回空串
func (s *PageScraper) ResolveImplementationFromPage(ctx context.Context, address string) (string, error) {
	pageUrl := fmt.Sprintf("%s/token/%s", s.baseUrl, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, nil)
	if err != nil {
		return "", fmt.Errorf("build page request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch contract page: %w", err)
	}
	defer resp.Body.Close()

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read contract page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("contract page returned %d", resp.StatusCode)
	}

	if m := proxyMessagePattern.FindSubmatch(html); m != nil {
		return string(m[1]), nil
	}
	if m := alternativePattern.FindSubmatch(html); m != nil {
		return string(m[1]), nil
	}
	return "", nil
}

// extractAddressFromPayload 在失败的 ABI 响应负载里找 "at 0x..." 形式的地址
func extractAddressFromPayload(payload string) string {
	if m := payloadAddressPattern.FindStringSubmatch(payload); m != nil {
		return m[1]
	}
	return ""
}
