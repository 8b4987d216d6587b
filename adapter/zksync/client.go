package zksync

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	zkAccounts "github.com/zksync-sdk/zksync2-go/accounts"
	zkClients "github.com/zksync-sdk/zksync2-go/clients"
	zkTypes "github.com/zksync-sdk/zksync2-go/types"

	"github.com/smartcontractkit/safe-adapters/adapter/internal/evmbase"
)

// ReceiptWaiter waits for a zkSync transaction by hash. *clients.Client implements it.
type ReceiptWaiter interface {
	WaitMined(ctx context.Context, txHash common.Hash) (*zkTypes.Receipt, error)
}

// WalletClient sends zkSync transactions. *accounts.Wallet implements it.
type WalletClient interface {
	Address() common.Address
	SendTransaction(ctx context.Context, tx *zkAccounts.Transaction) (common.Hash, error)
	DeployWithCreate(auth *zkAccounts.TransactOpts, tx zkAccounts.CreateTransaction) (common.Hash, error)
}

var (
	_ ReceiptWaiter = (*zkClients.Client)(nil)
	_ WalletClient  = (*zkAccounts.Wallet)(nil)
)

// KeyedClient is the public client and wallet client pair the adapter is built from. Public
// serves reads, ZkSync resolves receipts and Wallet, when set, signs and sends writes.
type KeyedClient struct {
	Public evmbase.Client
	ZkSync ReceiptWaiter
	Wallet WalletClient
}

// DialKeyedClient connects to rpcURL and builds the client pair over a single RPC connection.
// signer may be nil for a read-only client.
func DialKeyedClient(ctx context.Context, rpcURL string, signer zkAccounts.Signer) (*KeyedClient, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial zkSync RPC %s: %w", rpcURL, err)
	}

	return NewKeyedClient(rpcClient, signer)
}

// NewKeyedClient builds the client pair on an existing RPC connection.
func NewKeyedClient(rpcClient *rpc.Client, signer zkAccounts.Signer) (*KeyedClient, error) {
	clientZk := zkClients.NewClient(rpcClient)
	kc := &KeyedClient{
		Public: ethclient.NewClient(rpcClient),
		ZkSync: clientZk,
	}

	if signer != nil {
		wallet, err := zkAccounts.NewWalletFromSigner(signer, clientZk, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zkSync wallet: %w", err)
		}
		kc.Wallet = wallet
	}

	return kc, nil
}
