package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/versebattle/engine/internal/repos/queue"
)

var _ queue.Queue = (*queueRepo)(nil)

type queueRepo struct{ client *redis.Client }

func New(client *redis.Client) *queueRepo {
	return &queueRepo{client: client}
}

func partitionKey(p queue.Partition) string {
	return fmt.Sprintf("matchmaking:%s:%d_%d", p.BattleType, p.BetCoins, p.BetGems)
}

// popScript removes and returns the first member in the score range that is
// not the excluded member (ARGV[3]), so a joiner can never claim their own
// waiting entry. The range scan and the removal run inside one script
// invocation, so a waiting entry is claimed by exactly one caller.
var popScript = redis.NewScript(`
	local found = redis.call("ZRANGEBYSCORE", KEYS[1], ARGV[1], ARGV[2], "WITHSCORES")
	for i = 1, #found, 2 do
		if found[i] ~= ARGV[3] then
			redis.call("ZREM", KEYS[1], found[i])
			return {found[i], found[i+1]}
		end
	end
	return false
`)

func (r *queueRepo) PopInRange(ctx context.Context, p queue.Partition, minSkill, maxSkill int, exclude uuid.UUID) (uuid.UUID, int, bool, error) {
	res, err := popScript.Run(ctx, r.client, []string{partitionKey(p)}, minSkill, maxSkill, exclude.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, 0, false, nil
		}

		return uuid.Nil, 0, false, fmt.Errorf("pop queue entry: %w", err)
	}

	reply, ok := res.([]interface{})
	if !ok || len(reply) != 2 {
		return uuid.Nil, 0, false, fmt.Errorf("pop queue entry: unexpected reply %T", res)
	}

	member, ok := reply[0].(string)
	if !ok {
		return uuid.Nil, 0, false, fmt.Errorf("pop queue entry: unexpected member %T", reply[0])
	}

	id, err := uuid.Parse(member)
	if err != nil {
		return uuid.Nil, 0, false, fmt.Errorf("parse queue member: %w", err)
	}

	score, ok := reply[1].(string)
	if !ok {
		return uuid.Nil, 0, false, fmt.Errorf("pop queue entry: unexpected score %T", reply[1])
	}

	skill, err := strconv.ParseFloat(score, 64)
	if err != nil {
		return uuid.Nil, 0, false, fmt.Errorf("parse queue score: %w", err)
	}

	return id, int(skill), true, nil
}

func (r *queueRepo) Add(ctx context.Context, p queue.Partition, userID uuid.UUID, skill int, ttl time.Duration) error {
	key := partitionKey(p)

	added, err := r.client.ZAddNX(ctx, key, redis.Z{
		Score:  float64(skill),
		Member: userID.String(),
	}).Result()
	if err != nil {
		return fmt.Errorf("add queue entry: %w", err)
	}

	if added == 0 {
		return queue.ErrAlreadyInQueue
	}

	err = r.client.Expire(ctx, key, ttl).Err()
	if err != nil {
		return fmt.Errorf("refresh queue ttl: %w", err)
	}

	return nil
}

func (r *queueRepo) Remove(ctx context.Context, p queue.Partition, userID uuid.UUID) (bool, error) {
	removed, err := r.client.ZRem(ctx, partitionKey(p), userID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("remove queue entry: %w", err)
	}

	return removed > 0, nil
}
