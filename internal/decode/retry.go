package decode

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// maxFetchAttempts/retryBase bound the retry loop: fixed attempt cap,
// linear backoff plus bounded jitter, retried only on errors that look
// transient.
const (
	maxFetchAttempts = 8
	retryBase        = 250 * time.Millisecond
	retryJitterMax   = 150 * time.Millisecond
)

func (d *Decoder) fetchAccounts(ctx context.Context, keys []solana.PublicKey) ([]*rpc.Account, error) {
	var (
		out []*rpc.Account
		err error
	)
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		d.limiter.Take()
		var res *rpc.GetMultipleAccountsResult
		res, err = d.rpcClient.GetMultipleAccountsWithOpts(ctx, keys, &rpc.GetMultipleAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentConfirmed,
		})
		if err == nil {
			return res.Value, nil
		}
		if !isRetryableRPCError(err) {
			return nil, err
		}
		if d.log != nil {
			d.log.WithError(err).WithField("attempt", attempt).Warn("decode: retrying lookup table fetch")
		}
		jitter := time.Duration(rand.Int63n(int64(retryJitterMax)))
		select {
		case <-time.After(retryBase*time.Duration(attempt) + jitter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, err
}

func isRetryableRPCError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, needle := range []string{
		"rate limit",
		"too many requests",
		"429",
		"server busy",
		"try again later",
		"overloaded",
		"timeout",
		"connection reset",
	} {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
