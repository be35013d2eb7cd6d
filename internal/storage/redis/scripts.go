package redis

import "github.com/redis/go-redis/v9"

const (
	keyPrefix  = "studytracker:daily:"
	indexKey   = "studytracker:daily:index"
	fieldDate  = "date"
	fieldTotal = "total_seconds"
)

const (
	// incrementDailySource atomically creates or increments a daily record
	// and returns the new total. Redis runs the whole script without
	// interleaving other commands, so concurrent callers never lose an update.
	incrementDailySource = `
local record_key = KEYS[1]    -- studytracker:daily:{date}
local index_key = KEYS[2]     -- studytracker:daily:index

local date = ARGV[1]
local seconds = tonumber(ARGV[2])
local score = tonumber(ARGV[3])

redis.call('HSETNX', record_key, 'date', date)
local total = redis.call('HINCRBY', record_key, 'total_seconds', seconds)

-- Date index used for range queries
redis.call('ZADD', index_key, score, date)

return total
`

	// deleteDailyBeforeSource removes every record whose score is below the
	// cutoff together with its index entry, returning the number removed.
	deleteDailyBeforeSource = `
local index_key = KEYS[1]     -- studytracker:daily:index
local prefix = ARGV[1]
local cutoff = ARGV[2]

local dates = redis.call('ZRANGEBYSCORE', index_key, '-inf', '(' .. cutoff)
for _, date in ipairs(dates) do
  redis.call('DEL', prefix .. date)
  redis.call('ZREM', index_key, date)
end

return #dates
`
)

var (
	incrementDailyScript    = redis.NewScript(incrementDailySource)
	deleteDailyBeforeScript = redis.NewScript(deleteDailyBeforeSource)
)

func recordKey(date string) string {
	return keyPrefix + date
}
