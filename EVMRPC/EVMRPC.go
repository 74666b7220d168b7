package EVMRPC

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Client dials the configured RPC endpoints in order until one answers
type Client struct {
	rpcList []string
	log     *zap.Logger
}

func New(rpcList []string, logger *zap.Logger) *Client {
	return &Client{rpcList: rpcList, log: logger}
}

func WithClient[T any](c *Client, f func(client *ethclient.Client) (T, error)) (res T, err error) {
	if len(c.rpcList) == 0 {
		return res, errors.New("no RPC endpoints configured")
	}

	var client *ethclient.Client
	for _, url := range c.rpcList {
		client, err = ethclient.Dial(url)
		if err != nil {
			c.log.Warn("error connecting to RPC", zap.String("url", url), zap.Error(err))
			continue
		}

		res, err = f(client)
		client.Close()
		if err == nil {
			return
		}
		c.log.Warn("RPC call failed", zap.String("url", url), zap.Error(err))
	}
	return
}

// ChainID implements ledger.NetworkInfo
func (c *Client) ChainID(ctx context.Context) (int64, error) {
	id, err := WithClient(c, func(client *ethclient.Client) (*big.Int, error) {
		return client.ChainID(ctx)
	})
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return WithClient(c, func(client *ethclient.Client) (uint64, error) {
		return client.BlockNumber(ctx)
	})
}

// FetchEvents returns the events of blocks [q.FromBlock, q.ToBlock] in chain order
func (c *Client) FetchEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	return WithClient(c, func(client *ethclient.Client) ([]Event, error) {
		return fetchEvents(ctx, client, q, c.log)
	})
}
