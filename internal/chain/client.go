package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/lumina/lts/internal/config"
	"github.com/lumina/lts/internal/logger"
)

type connState int

const (
	stateUninitialized connState = iota
	stateReadOnly
	stateSigning
)

// Client is the single point of contact with the ticketing contract. It is
// constructed explicitly at the composition root and passed down; there is
// no package-level connection state. Initialization is idempotent and
// guarded by an explicit state flag.
type Client struct {
	mu    sync.Mutex
	state connState

	cfg          config.ChainConfig
	eth          *ethclient.Client
	contractAddr common.Address
	abi          abi.ABI
	bound        *bind.BoundContract

	key  *ecdsa.PrivateKey
	auth *bind.TransactOpts
}

func NewClient(cfg config.ChainConfig) *Client {
	return &Client{cfg: cfg}
}

// InitReadOnly establishes a query-only connection. Repeated calls are
// no-ops once established.
func (c *Client) InitReadOnly(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initReadOnlyLocked(ctx)
}

func (c *Client) initReadOnlyLocked(ctx context.Context) error {
	if c.state >= stateReadOnly {
		return nil
	}

	if c.cfg.RpcUrl == "" {
		return fmt.Errorf("%w: no rpc url configured", ErrNotConnected)
	}

	eth, err := ethclient.DialContext(ctx, c.cfg.RpcUrl)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	if c.cfg.ChainId != 0 && chainID.Int64() != c.cfg.ChainId {
		eth.Close()
		return fmt.Errorf("%w: expected chain %d, connected to %d",
			ErrWrongNetwork, c.cfg.ChainId, chainID.Int64())
	}

	parsedABI, err := abi.JSON(strings.NewReader(ticketABI))
	if err != nil {
		eth.Close()
		return fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	c.eth = eth
	c.abi = parsedABI
	c.contractAddr = common.HexToAddress(c.cfg.ContractAddr)
	c.bound = bind.NewBoundContract(c.contractAddr, parsedABI, eth, eth, eth)
	c.state = stateReadOnly

	logger.Info("Chain client connected (chain id %d, contract %s)",
		chainID.Int64(), c.contractAddr.Hex())
	return nil
}

// InitWithSigner additionally binds the configured key for write
// operations. Fails with ErrAuthorization when no usable key is present.
func (c *Client) InitWithSigner(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.initReadOnlyLocked(ctx); err != nil {
		return err
	}
	if c.state == stateSigning {
		return nil
	}

	if c.cfg.PrivateKey == "" {
		return fmt.Errorf("%w: no private key configured", ErrAuthorization)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.cfg.PrivateKey, "0x"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorization, err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(c.cfg.ChainId))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorization, err)
	}

	c.key = key
	c.auth = auth
	c.state = stateSigning

	logger.Info("Chain client signer bound (%s)", auth.From.Hex())
	return nil
}

// Close tears the connection down; the client can be re-initialized.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		c.eth.Close()
	}
	c.eth = nil
	c.bound = nil
	c.key = nil
	c.auth = nil
	c.state = stateUninitialized
}

// HasSigner reports whether write operations are available.
func (c *Client) HasSigner() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateSigning
}

// SignerAddress returns the bound signer address.
func (c *Client) SignerAddress() (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateSigning {
		return common.Address{}, ErrSignerMissing
	}
	return c.auth.From, nil
}

func (c *Client) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state < stateReadOnly {
		return ErrNotConnected
	}
	return nil
}

// call performs a read against the contract.
func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("contract call %s failed: %w", method, err)
	}
	return out, nil
}

// transact submits a write and blocks until the transaction is mined. A
// confirmed-but-reverted transaction is replayed as a call at the failing
// block to recover the revert reason, and reported as a RevertError.
func (c *Client) transact(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Receipt, error) {
	c.mu.Lock()
	if c.state != stateSigning {
		state := c.state
		c.mu.Unlock()
		if state == stateUninitialized {
			return nil, ErrNotConnected
		}
		return nil, ErrSignerMissing
	}
	opts := *c.auth
	c.mu.Unlock()

	opts.Context = ctx
	opts.Value = value

	tx, err := c.bound.Transact(&opts, method, args...)
	if err != nil {
		// Nodes that simulate before accepting surface the revert here.
		if reason := reasonFromCallError(err); reason != "" {
			return nil, NewRevertError(reason)
		}
		return nil, fmt.Errorf("failed to submit %s: %w", method, err)
	}

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s confirmation: %w", method, err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, c.revertReason(ctx, tx, receipt, method, args...)
	}
	return receipt, nil
}

// revertReason replays the failed transaction as a call at its block.
func (c *Client) revertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt, method string, args ...interface{}) error {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return NewRevertError("")
	}

	msg := ethereum.CallMsg{
		From:  c.auth.From,
		To:    &c.contractAddr,
		Data:  data,
		Value: tx.Value(),
	}
	_, callErr := c.eth.CallContract(ctx, msg, receipt.BlockNumber)
	return NewRevertError(reasonFromCallError(callErr))
}

// BalanceWei returns the native balance of an account.
func (c *Client) BalanceWei(ctx context.Context, addr common.Address) (*big.Int, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.eth.BalanceAt(ctx, addr, nil)
}

// LatestBlock returns the current head block number.
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// FilterContractLogs returns the contract's logs in a block range.
func (c *Client) FilterContractLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.contractAddr},
	}
	return c.eth.FilterLogs(ctx, query)
}
