package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Throttle bounds the number of calls in flight
type Throttle struct {
	tokens chan struct{}
}

func NewThrottle(n int) *Throttle {
	if n < 1 {
		n = 1
	}
	return &Throttle{tokens: make(chan struct{}, n)}
}

// Do waits for a free slot then runs f, it gives up with ctx.Err() when ctx is done first
func (t *Throttle) Do(ctx context.Context, f func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case t.tokens <- struct{}{}:
	}
	defer func() { <-t.tokens }()
	return f()
}

// ThrottledClient limits the contract reads sent to the rpc node, it can be used
// wherever a bind.ContractBackend is expected
type ThrottledClient struct {
	*ethclient.Client
	throttle *Throttle
}

func NewThrottledClient(client *ethclient.Client, n int) *ThrottledClient {
	return &ThrottledClient{
		Client:   client,
		throttle: NewThrottle(n),
	}
}

func (c *ThrottledClient) CodeAt(ctx context.Context, address common.Address, number *big.Int) ([]byte, error) {
	var res []byte
	err := c.throttle.Do(ctx, func() (err error) {
		res, err = c.Client.CodeAt(ctx, address, number)
		return err
	})
	return res, err
}

func (c *ThrottledClient) CallContract(ctx context.Context, msg ethereum.CallMsg, number *big.Int) ([]byte, error) {
	var res []byte
	err := c.throttle.Do(ctx, func() (err error) {
		res, err = c.Client.CallContract(ctx, msg, number)
		return err
	})
	return res, err
}
