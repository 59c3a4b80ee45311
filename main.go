package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mintvault/internal/chain"
	"mintvault/internal/config"
	"mintvault/internal/etherscan"
	"mintvault/internal/handler"
	"mintvault/internal/logic/schedule"
	"mintvault/internal/queue"
	"mintvault/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/mintvault.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	chainConf, ok := c.Chains[c.Mint.Chain]
	if !ok {
		log.Fatalf("mint chain %q is not configured under Chains", c.Mint.Chain)
	}

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	ctx.Resolver = etherscan.NewResolver(c.Etherscan, chainConf.ChainId)
	ctx.Executor = chain.NewExecutor(chainConf, c.Mint)

	// 延迟队列的执行回调走排期逻辑，队列在路由装配前注入
	jobs, err := queue.NewDelayQueue(c.Queue.Workers, func(id string) {
		execCtx := context.Background()
		if err := schedule.NewScheduleLogic(execCtx, ctx).Execute(id); err != nil {
			logx.Errorf("排期 %s 执行出错: %v", id, err)
		}
	})
	if err != nil {
		log.Fatalf("failed to init delay queue: %v", err)
	}
	ctx.Jobs = jobs

	handler.RegisterHandlers(server, ctx)

	// 启动恢复 + 定时扫描
	recovery := schedule.NewRecoverLogic(ctx)
	if err := recovery.Start(); err != nil {
		log.Fatalf("failed to start recovery sweep: %v", err)
	}

	// 设置优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Starting server at %s:%d...\n", c.Host, c.Port)
	fmt.Printf("⛓  铸造链: %s (chain id %d)\n", chainConf.Name, chainConf.ChainId)

	// 在独立的goroutine中启动服务器
	go func() {
		server.Start()
	}()

	// 等待退出信号
	<-quit
	fmt.Println("\n🛑 收到退出信号，正在优雅关闭服务...")

	recovery.Stop()
	jobs.Stop()

	fmt.Println("✅ 服务已安全退出")
}
