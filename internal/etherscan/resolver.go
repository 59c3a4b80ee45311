package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mintvault/internal/config"
	"mintvault/internal/contract"
	"mintvault/internal/errs"

	"github.com/zeromicro/go-zero/core/logx"
)

// maxProxyHops 代理解析递归上限，防止代理链成环导致无限递归
const maxProxyHops = 5

// apiResponse getabi / getImplementationAddress 的通用响应格式
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// sourceResponse getsourcecode 的响应格式
type sourceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		ContractName    string `json:"ContractName"`
		SourceCode      string `json:"SourceCode"`
		CompilerVersion string `json:"CompilerVersion"`
		ABI             string `json:"ABI"`
		Proxy           string `json:"Proxy"`
		Implementation  string `json:"Implementation"`
	} `json:"result"`
}

// Resolver 合约接口解析器：拉取 ABI 并透明地跟随代理指向的实现合约
type Resolver struct {
	conf    config.EtherscanConf
	chainId int64
	client  *http.Client
	scraper *PageScraper
}

// NewResolver creates a resolver bound to one metadata service and chain.
func NewResolver(conf config.EtherscanConf, chainId int64) *Resolver {
	client := &http.Client{Timeout: 30 * time.Second}
	return &Resolver{
		conf:    conf,
		chainId: chainId,
		client:  client,
		scraper: NewPageScraper(conf.BrowserUrl, client),
	}
}

// Resolve 解析一个合约地址的可用接口描述；代理合约自动递归到实现合约。
// 返回的 Info.Address 始终是入参地址：代理合约的状态存在代理自身，
// 交易必须发往代理，实现合约的 ABI 只用于编码调用数据。
func (r *Resolver) Resolve(ctx context.Context, address string) (*contract.Info, error) {
	info, err := r.resolve(ctx, address, 0)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(info.Address, address) {
		info.Implementation = info.Address
		info.Address = address
	}
	return info, nil
}

func (r *Resolver) resolve(ctx context.Context, address string, hops int) (*contract.Info, error) {
	logger := logx.WithContext(ctx)

	if hops > maxProxyHops {
		logger.Errorf("代理解析超过 %d 跳，疑似代理链成环: %s", maxProxyHops, address)
		return nil, errs.ResolutionFailure(nil, "proxy chain exceeds %d hops at %s", maxProxyHops, address)
	}

	// 1. 拉取原始 ABI
	logger.Infof("拉取合约 ABI: %s", address)
	rawAbi, err := r.fetchABI(ctx, address)
	if err != nil {
		logger.Errorf("ABI 拉取失败 for %s: %v", address, err)
		return nil, errs.ResolutionFailure(err, "no abi for contract %s", address)
	}

	entries, err := contract.ParseABI(rawAbi)
	if err != nil {
		logger.Errorf("ABI 解析失败 for %s: %v", address, err)
		return nil, errs.ResolutionFailure(err, "unparseable abi for contract %s", address)
	}

	// 2. 代理启发式判定
	if contract.IsProxy(entries) {
		logger.Infof("检测到代理合约 %s，开始解析实现地址", address)

		implementation := r.resolveImplementation(ctx, address, rawAbi)
		if implementation == "" {
			logger.Errorf("三种策略均未找到实现地址: %s", address)
			return nil, errs.ResolutionFailure(nil, "cannot determine implementation address for proxy %s", address)
		}

		logger.Infof("实现地址解析成功: %s -> %s", address, implementation)
		// 3. 递归解析实现合约
		return r.resolve(ctx, implementation, hops+1)
	}

	// 4. 附加描述性元数据，失败时容忍并使用占位值
	info := &contract.Info{
		Address:         address,
		Name:            "Unknown",
		Entries:         entries,
		RawABI:          rawAbi,
		SourceCode:      "",
		CompilerVersion: "",
	}
	if name, source, compiler, err := r.fetchSourceMeta(ctx, address); err != nil {
		logger.Infof("合约元数据拉取失败，使用占位值: %v", err)
	} else {
		info.Name = name
		info.SourceCode = source
		info.CompilerVersion = compiler
	}

	return info, nil
}

// resolveImplementation 按优先级尝试三种策略取得实现地址，失败返回空串
func (r *Resolver) resolveImplementation(ctx context.Context, address, abiPayload string) string {
	logger := logx.WithContext(ctx)

	// 策略 a: 直接询问元数据服务
	if impl, err := r.fetchImplementationAddress(ctx, address); err == nil && impl != "" {
		logger.Infof("实现地址来自 API: %s", impl)
		return impl
	} else if err != nil {
		logger.Infof("API 查询实现地址失败: %v", err)
	}

	// 策略 b: 从浏览器页面抓取
	if impl, err := r.scraper.ResolveImplementationFromPage(ctx, address); err == nil && impl != "" {
		logger.Infof("实现地址来自页面抓取: %s", impl)
		return impl
	} else if err != nil {
		logger.Infof("页面抓取实现地址失败: %v", err)
	}

	// 策略 c: 从 ABI 响应负载里正则提取地址
	if impl := extractAddressFromPayload(abiPayload); impl != "" {
		logger.Infof("实现地址来自错误负载: %s", impl)
		return impl
	}

	return ""
}

func (r *Resolver) fetchABI(ctx context.Context, address string) (string, error) {
	resp, err := r.query(ctx, "getabi", address)
	if err != nil {
		return "", err
	}
	if resp.Status != "1" || resp.Result == "" {
		return "", fmt.Errorf("metadata service returned status %s: %s", resp.Status, resp.Result)
	}
	return resp.Result, nil
}

func (r *Resolver) fetchImplementationAddress(ctx context.Context, address string) (string, error) {
	resp, err := r.query(ctx, "getImplementationAddress", address)
	if err != nil {
		return "", err
	}
	if resp.Status != "1" || resp.Result == "" {
		return "", fmt.Errorf("no implementation address: %s", resp.Message)
	}
	return resp.Result, nil
}

func (r *Resolver) fetchSourceMeta(ctx context.Context, address string) (name, source, compiler string, err error) {
	body, err := r.get(ctx, r.buildURL("getsourcecode", address))
	if err != nil {
		return "", "", "", err
	}

	var resp sourceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", "", fmt.Errorf("decode getsourcecode response: %w", err)
	}
	if resp.Status != "1" || len(resp.Result) == 0 {
		return "", "", "", fmt.Errorf("getsourcecode returned status %s", resp.Status)
	}

	meta := resp.Result[0]
	name = meta.ContractName
	if name == "" {
		name = "Unknown"
	}
	return name, meta.SourceCode, meta.CompilerVersion, nil
}

func (r *Resolver) query(ctx context.Context, action, address string) (*apiResponse, error) {
	body, err := r.get(ctx, r.buildURL(action, address))
	if err != nil {
		return nil, err
	}
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}
	return &resp, nil
}

func (r *Resolver) buildURL(action, address string) string {
	params := url.Values{}
	params.Set("chainid", fmt.Sprintf("%d", r.chainId))
	params.Set("module", "contract")
	params.Set("action", action)
	params.Set("address", address)
	if r.conf.ApiKey != "" {
		params.Set("apikey", r.conf.ApiKey)
	}
	return r.conf.ApiUrl + "?" + params.Encode()
}

func (r *Resolver) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call metadata service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata service error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
