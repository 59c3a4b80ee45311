package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// 简易冒烟客户端：初始化钱包，或给指定 NFT 建一条延迟铸造排期。
func main() {
	// 1. 定义命令行参数
	action := flag.String("action", "wallet_init", "要执行的操作 (wallet_init | mint | schedule)")
	user := flag.String("user", "cli-user-001", "用户 id")
	chain := flag.String("chain", "ETH", "要初始化的区块链 (例如: ETH, BSC)")
	nftId := flag.String("nft", "", "要铸造的 NFT id")
	delay := flag.Duration("delay", time.Minute, "排期延迟 (仅 schedule 操作)")
	host := flag.String("host", "http://localhost:8888", "服务地址")
	flag.Parse()

	// 2. 按操作组装目标地址和请求数据
	var url string
	var requestData map[string]interface{}

	switch *action {
	case "wallet_init":
		url = *host + "/api/wallet_init"
		requestData = map[string]interface{}{
			"user_id": *user,
			"chain":   *chain,
		}
	case "mint":
		if *nftId == "" {
			log.Fatal("错误: mint 操作必须指定 -nft")
		}
		url = *host + "/api/nft/mint"
		requestData = map[string]interface{}{
			"user_id": *user,
			"nft_id":  *nftId,
		}
	case "schedule":
		if *nftId == "" {
			log.Fatal("错误: schedule 操作必须指定 -nft")
		}
		url = *host + "/api/nft/schedule"
		requestData = map[string]interface{}{
			"user_id":       *user,
			"nft_id":        *nftId,
			"scheduled_for": time.Now().Add(*delay).Format(time.RFC3339),
		}
	default:
		log.Fatalf("错误: 未知操作 %q", *action)
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		log.Fatalf("错误: 无法打包 JSON 数据: %v", err)
	}

	// 3. 创建并发送 HTTP POST 请求
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Fatalf("错误: 无法创建请求: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	fmt.Printf("正向 %s 发送请求...\n", url)
	fmt.Printf("请求体: %s\n", string(jsonData))

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("错误: 发送请求失败: %v", err)
	}
	defer resp.Body.Close()

	// 4. 读取并打印响应结果
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("错误: 读取响应体失败: %v", err)
	}

	fmt.Println("\n--- 响应结果 ---")
	fmt.Printf("HTTP 状态码: %d\n", resp.StatusCode)
	fmt.Printf("响应体: %s\n", string(body))
}
