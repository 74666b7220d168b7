package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"

	"rootledger/ledger"
	"rootledger/types"
)

// record key prefixes, ids follow the colon
const (
	prefixAccount     = "account"
	prefixToken       = "token"
	prefixLocked      = "locked"
	prefixTransfer    = "transfer"
	prefixXcTransfer  = "xctransfer"
	setXcTransfers    = "xctransfers"
	keyScannedBlockFn = "chainBlockScanned:%d"
)

// Store implements ledger.Store with JSON values under string keys
type Store struct {
	pool *redis.Pool
}

var _ ledger.Store = (*Store)(nil)

func timeoutDialOptions() []redis.DialOption {
	return []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}
}

func New(host string, port int) *Store {
	redisAddr := fmt.Sprintf("%s:%d", host, port)
	return &Store{
		pool: &redis.Pool{
			MaxIdle: 5,
			Dial:    func() (redis.Conn, error) { return redis.Dial("tcp", redisAddr, timeoutDialOptions()...) },
		},
	}
}

// Ping checks the connection, without persistence the service does not continue
func (s *Store) Ping(ctx context.Context) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("PING")
	return err
}

func (s *Store) Close() error {
	return s.pool.Close()
}

func recordKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

func getJSON[T any](ctx context.Context, s *Store, key string) (*T, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("cannot unmarshal %s: %w", key, err)
	}
	return &v, nil
}

func setJSON(ctx context.Context, s *Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot marshal %s to JSON: %w", key, err)
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("SET", key, data); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// createJSON writes only if the key is free, immutable records never change
func createJSON(ctx context.Context, s *Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot marshal %s to JSON: %w", key, err)
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = redis.String(conn.Do("SET", key, data, "NX"))
	if errors.Is(err, redis.ErrNil) {
		return ledger.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("redis SET NX %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*types.Account, error) {
	return getJSON[types.Account](ctx, s, recordKey(prefixAccount, id))
}

func (s *Store) SaveAccount(ctx context.Context, a *types.Account) error {
	if a == nil || a.ID == "" {
		return ledger.ErrInvalidInput
	}
	return setJSON(ctx, s, recordKey(prefixAccount, a.ID), a)
}

func (s *Store) GetToken(ctx context.Context, id string) (*types.Token, error) {
	return getJSON[types.Token](ctx, s, recordKey(prefixToken, id))
}

func (s *Store) SaveToken(ctx context.Context, t *types.Token) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	return setJSON(ctx, s, recordKey(prefixToken, t.ID), t)
}

func (s *Store) GetLockedERC20(ctx context.Context, id string) (*types.LockedERC20, error) {
	return getJSON[types.LockedERC20](ctx, s, recordKey(prefixLocked, id))
}

func (s *Store) SaveLockedERC20(ctx context.Context, l *types.LockedERC20) error {
	if l == nil || l.ID == "" {
		return ledger.ErrInvalidInput
	}
	return setJSON(ctx, s, recordKey(prefixLocked, l.ID), l)
}

func (s *Store) CreateTransfer(ctx context.Context, t *types.Transfer) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	return createJSON(ctx, s, recordKey(prefixTransfer, t.ID), t)
}

func (s *Store) GetTransfer(ctx context.Context, id string) (*types.Transfer, error) {
	return getJSON[types.Transfer](ctx, s, recordKey(prefixTransfer, id))
}

func (s *Store) CreateCrossChainTransfer(ctx context.Context, t *types.CrossChainTransfer) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	// the record and its listing entry go in one script call
	return s.Commit(ctx, &ledger.Batch{CrossChainTransfers: []*types.CrossChainTransfer{t}})
}

func (s *Store) ReplaceCrossChainTransfer(ctx context.Context, t *types.CrossChainTransfer) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	return s.Commit(ctx, &ledger.Batch{ReplacedCrossChainTransfers: []*types.CrossChainTransfer{t}})
}

// commitScript checks the create keys, then writes every key and lists
// cross chain records. KEYS[1] is the listing set, KEYS[2..n+1] are
// created and the rest are overwritten. ARGV[1] is n, ARGV[i] is the
// value of KEYS[i].
var commitScript = redis.NewScript(-1, `
local n = tonumber(ARGV[1])
for i = 2, n + 1 do
	if redis.call("EXISTS", KEYS[i]) == 1 then
		return redis.error_reply("DUPLICATE " .. KEYS[i])
	end
end
for i = 2, #KEYS do
	redis.call("SET", KEYS[i], ARGV[i])
	if string.sub(KEYS[i], 1, string.len(ARGV[#ARGV])) == ARGV[#ARGV] then
		redis.call("SADD", KEYS[1], KEYS[i])
	end
end
return "OK"
`)

type entry struct {
	key   string
	value any
}

// Commit writes the whole batch in one Lua script, so a failure or a
// duplicate leaves none of it behind
func (s *Store) Commit(ctx context.Context, b *ledger.Batch) error {
	if b == nil {
		return ledger.ErrInvalidInput
	}

	var creates, puts []entry
	for _, t := range b.Transfers {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
		creates = append(creates, entry{recordKey(prefixTransfer, t.ID), t})
	}
	for _, t := range b.CrossChainTransfers {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
		creates = append(creates, entry{recordKey(prefixXcTransfer, t.ID), t})
	}
	for _, t := range b.ReplacedCrossChainTransfers {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
		puts = append(puts, entry{recordKey(prefixXcTransfer, t.ID), t})
	}
	for _, a := range b.Accounts {
		if a == nil || a.ID == "" {
			return ledger.ErrInvalidInput
		}
		puts = append(puts, entry{recordKey(prefixAccount, a.ID), a})
	}
	for _, t := range b.Tokens {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
		puts = append(puts, entry{recordKey(prefixToken, t.ID), t})
	}
	for _, l := range b.Locked {
		if l == nil || l.ID == "" {
			return ledger.ErrInvalidInput
		}
		puts = append(puts, entry{recordKey(prefixLocked, l.ID), l})
	}

	all := append(creates, puts...)
	if len(all) == 0 {
		return nil
	}

	keys := make([]interface{}, 0, len(all)+1)
	argv := make([]interface{}, 0, len(all)+2)
	keys = append(keys, setXcTransfers)
	argv = append(argv, len(creates))
	for _, e := range all {
		data, err := json.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("cannot marshal %s to JSON: %w", e.key, err)
		}
		keys = append(keys, e.key)
		argv = append(argv, data)
	}
	// listed key prefix
	argv = append(argv, prefixXcTransfer+":")

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	args := make([]interface{}, 0, 1+len(keys)+len(argv))
	args = append(args, len(keys))
	args = append(args, keys...)
	args = append(args, argv...)

	if _, err := commitScript.Do(conn, args...); err != nil {
		var rerr redis.Error
		if errors.As(err, &rerr) && strings.HasPrefix(string(rerr), "DUPLICATE") {
			return ledger.ErrDuplicateKey
		}
		return fmt.Errorf("redis commit: %w", err)
	}
	return nil
}

func (s *Store) GetCrossChainTransfer(ctx context.Context, id string) (*types.CrossChainTransfer, error) {
	return getJSON[types.CrossChainTransfer](ctx, s, recordKey(prefixXcTransfer, id))
}

// CrossChainTransfers scans every cross chain record, O(n) in the record count
func (s *Store) CrossChainTransfers(ctx context.Context) ([]*types.CrossChainTransfer, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	out := make([]*types.CrossChainTransfer, 0)

	var cursor int64
	for {
		values, err := redis.Values(conn.Do("SSCAN", setXcTransfers, cursor))
		if err != nil {
			return nil, err
		}

		var keys []string
		if _, err := redis.Scan(values, &cursor, &keys); err != nil {
			return nil, err
		}

		for _, key := range keys {
			data, err := redis.Bytes(conn.Do("GET", key))
			if errors.Is(err, redis.ErrNil) {
				// set member without a record, skip
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis GET %s: %w", key, err)
			}

			var xc types.CrossChainTransfer
			if err := json.Unmarshal(data, &xc); err != nil {
				return nil, err
			}
			out = append(out, &xc)
		}

		if cursor == 0 {
			break
		}
	}

	return out, nil
}

// GetEVMScannedBlock returns the last processed block, -1 when nothing was scanned yet
func (s *Store) GetEVMScannedBlock(ctx context.Context, chainID int64) (int64, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return -1, err
	}
	defer conn.Close()

	blockHeight, err := redis.Int64(conn.Do("GET", fmt.Sprintf(keyScannedBlockFn, chainID)))
	if err == nil {
		return blockHeight, nil
	}
	if errors.Is(err, redis.ErrNil) {
		return -1, nil
	}
	return -1, fmt.Errorf("redis GET scanned block: %w", err)
}

func (s *Store) SetEVMScannedBlock(ctx context.Context, chainID int64, blockHeight int64) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("SET", fmt.Sprintf(keyScannedBlockFn, chainID), blockHeight); err != nil {
		return fmt.Errorf("redis SET scanned block: %w", err)
	}
	return nil
}
