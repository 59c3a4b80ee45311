package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"mintvault/internal/config"
	"mintvault/internal/contract"
	"mintvault/internal/errs"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	evmTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/zeromicro/go-zero/core/logx"
)

// 事件签名常量
var (
	// TransferEventSignature Transfer(address,address,uint256)
	TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	// TransferSingleEventSignature TransferSingle(address,address,address,uint256,uint256)
	TransferSingleEventSignature = crypto.Keccak256Hash([]byte("TransferSingle(address,address,address,uint256,uint256)"))
)

const defaultMintGasLimit = 300000

// 不可恢复的确认结果，对账扫描据此终结而不是重试
var (
	ErrReverted  = errors.New("transaction reverted")
	ErrNoTokenId = errors.New("no token id in receipt logs")
)

// Executor 签名、提交并确认一次合约调用，从回执日志里提取新铸造的 token id
type Executor struct {
	chainConf config.ChainConf
	mintConf  config.MintConf
}

// NewExecutor binds the executor to one chain and the mint settings.
func NewExecutor(chainConf config.ChainConf, mintConf config.MintConf) *Executor {
	return &Executor{chainConf: chainConf, mintConf: mintConf}
}

// ExecuteMint 执行一次铸造调用。确认超时或回滚时返回的 result 仍可能带有
// TxHash，调用方据此做后续对账——链上提交是不可回滚的一步。
func (e *Executor) ExecuteMint(ctx context.Context, call *contract.MintCall) (*contract.MintResult, error) {
	logger := logx.WithContext(ctx)

	// 1. 连接 RPC 节点
	logger.Infof("连接 RPC 节点: %s", e.chainConf.RpcUrl)
	client, err := ethclient.Dial(e.chainConf.RpcUrl)
	if err != nil {
		return nil, errs.ChainExecution(err, "failed to connect to chain %s", e.chainConf.Name)
	}
	defer client.Close()

	// 2. 按选中的 ABI 条目编码调用数据
	abiDef, err := abi.JSON(strings.NewReader(call.Info.RawABI))
	if err != nil {
		return nil, errs.ChainExecution(err, "failed to parse abi for %s", call.Info.Address)
	}
	data, err := abiDef.Pack(call.Function.Name, call.Args...)
	if err != nil {
		return nil, errs.ChainExecution(err, "failed to encode call to %s", call.Function.Name)
	}

	// 3. 仅在函数可支付时附带 value
	value := big.NewInt(0)
	if call.Function.IsPayable() {
		if _, ok := value.SetString(e.mintConf.PayableValueWei, 10); !ok {
			return nil, errs.ChainExecution(nil, "invalid payable value %q", e.mintConf.PayableValueWei)
		}
		logger.Infof("函数可支付，附带 value: %s wei", value.String())
	}

	// 4. 交易参数。目标始终是入口地址：代理合约的状态在代理自身，
	// 实现合约的 ABI 只参与编码
	fromAddr := crypto.PubkeyToAddress(call.PrivateKey.PublicKey)
	toAddr := common.HexToAddress(call.Info.Address)
	if call.Info.Implementation != "" {
		logger.Infof("代理合约：交易发往 %s，ABI 来自实现 %s", call.Info.Address, call.Info.Implementation)
	}

	nonce, err := client.PendingNonceAt(ctx, fromAddr)
	if err != nil {
		return nil, errs.ChainExecution(err, "failed to get nonce")
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errs.ChainExecution(err, "failed to get gas price")
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  fromAddr,
		To:    &toAddr,
		Value: value,
		Data:  data,
	})
	if err != nil {
		logger.Infof("Gas 估算失败，使用默认值: %v", err)
		gasLimit = defaultMintGasLimit
	}
	// 增加 gas limit 缓冲
	gasLimit = gasLimit * 120 / 100

	// 5. 构建并签名交易
	tx := evmTypes.NewTx(&evmTypes.LegacyTx{
		Nonce:    nonce,
		To:       &toAddr,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signedTx, err := evmTypes.SignTx(tx, evmTypes.NewEIP155Signer(big.NewInt(e.chainConf.ChainId)), call.PrivateKey)
	if err != nil {
		return nil, errs.ChainExecution(err, "failed to sign transaction")
	}
	txHash := signedTx.Hash().Hex()
	logger.Infof("交易签名成功, TxHash: %s", txHash)

	// 6. 提交
	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return nil, errs.ChainExecution(err, "failed to send transaction")
	}

	// 7. 有界等待确认
	timeout := time.Duration(e.mintConf.ReceiptTimeoutSec) * time.Second
	receipt, err := e.waitForReceipt(ctx, client, signedTx.Hash(), timeout)
	if err != nil {
		logger.Errorf("等待回执失败 for %s: %v", txHash, err)
		return &contract.MintResult{TxHash: txHash},
			errs.ChainExecution(err, "confirmation wait for %s", txHash)
	}
	if receipt.Status != evmTypes.ReceiptStatusSuccessful {
		return &contract.MintResult{TxHash: txHash},
			errs.ChainExecution(ErrReverted, "transaction %s reverted on chain", txHash)
	}

	// 8. 从回执日志提取 token id
	tokenId := ExtractTokenIdFromLogs(receipt.Logs)
	if tokenId == "" {
		tokenId = call.FallbackTokenId
	}
	if tokenId == "" {
		return &contract.MintResult{TxHash: txHash},
			errs.ChainExecution(ErrNoTokenId, "could not determine token id for %s", txHash)
	}

	logger.Infof("铸造确认成功, TxHash: %s, TokenId: %s", txHash, tokenId)
	return &contract.MintResult{TxHash: txHash, TokenId: tokenId}, nil
}

// ConfirmMint 查询一笔已提交交易的回执，用于对账：交易尚未确认时返回
// (nil, nil)，已回滚时返回 ChainExecutionFailure
func (e *Executor) ConfirmMint(ctx context.Context, txHash, fallbackTokenId string) (*contract.MintResult, error) {
	client, err := ethclient.Dial(e.chainConf.RpcUrl)
	if err != nil {
		return nil, errs.ChainExecution(err, "failed to connect to chain %s", e.chainConf.Name)
	}
	defer client.Close()

	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if err == ethereum.NotFound {
			return nil, nil
		}
		return nil, errs.ChainExecution(err, "failed to get receipt for %s", txHash)
	}
	if receipt.Status != evmTypes.ReceiptStatusSuccessful {
		return nil, errs.ChainExecution(ErrReverted, "transaction %s reverted on chain", txHash)
	}

	tokenId := ExtractTokenIdFromLogs(receipt.Logs)
	if tokenId == "" {
		tokenId = fallbackTokenId
	}
	if tokenId == "" {
		return nil, errs.ChainExecution(ErrNoTokenId, "could not determine token id for %s", txHash)
	}
	return &contract.MintResult{TxHash: txHash, TokenId: tokenId}, nil
}

// waitForReceipt 轮询交易回执直到确认或超时
func (e *Executor) waitForReceipt(ctx context.Context, client *ethclient.Client, txHash common.Hash, timeout time.Duration) (*evmTypes.Receipt, error) {
	logger := logx.WithContext(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("confirmation timed out after %s: %w", timeout, waitCtx.Err())
		case <-ticker.C:
			receipt, err := client.TransactionReceipt(waitCtx, txHash)
			if err != nil {
				if err == ethereum.NotFound {
					logger.Infof("交易尚未确认，继续等待...")
					continue
				}
				return nil, err
			}
			return receipt, nil
		}
	}
}

// ExtractTokenIdFromLogs 扫描回执日志提取铸出的 token id。
// ERC721 Transfer 带 4 个 topic 时 token id 在 topics[3]；
// ERC1155 TransferSingle 的 token id 编码在 data 的第一个字段。
func ExtractTokenIdFromLogs(logs []*evmTypes.Log) string {
	for _, vLog := range logs {
		if len(vLog.Topics) == 0 {
			continue
		}
		// 按签名区分：TransferSingle 同样带 4 个 topic（operator/from/to），
		// 但 token id 在 data 里，不能按 topic 数量判断
		switch vLog.Topics[0] {
		case TransferEventSignature:
			if len(vLog.Topics) == 4 {
				return new(big.Int).SetBytes(vLog.Topics[3].Bytes()).String()
			}
		case TransferSingleEventSignature:
			if len(vLog.Data) >= 32 {
				return new(big.Int).SetBytes(vLog.Data[:32]).String()
			}
		}
	}
	return ""
}
