package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableReplyExactFieldSet(t *testing.T) {
	fields := []string{"name", "percent"}

	t.Run("wrapped", func(t *testing.T) {
		rows, err := parseTableReply(`{"rows":[{"name":"Vanguard","percent":"8.2%"}]}`, fields)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Vanguard", "8.2%"}}, rows)
	})

	t.Run("bare array tolerated", func(t *testing.T) {
		rows, err := parseTableReply(`[{"name":"Vanguard","percent":"8.2%"}]`, fields)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("numeric values keep literal form", func(t *testing.T) {
		rows, err := parseTableReply(`{"rows":[{"name":"Vanguard","percent":8.2}]}`, fields)
		require.NoError(t, err)
		assert.Equal(t, "8.2", rows[0][1])
	})

	t.Run("missing key rejected", func(t *testing.T) {
		_, err := parseTableReply(`{"rows":[{"name":"Vanguard"}]}`, fields)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("extra key rejected", func(t *testing.T) {
		_, err := parseTableReply(`{"rows":[{"name":"V","percent":"8%","note":"x"}]}`, fields)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected")
	})

	t.Run("nested value rejected", func(t *testing.T) {
		_, err := parseTableReply(`{"rows":[{"name":{"first":"V"},"percent":"8%"}]}`, fields)
		require.Error(t, err)
	})
}

func TestParseListReply(t *testing.T) {
	values, err := parseListReply(`{"values":["AAPL","MSFT","NVDA"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, values)

	_, err = parseListReply(`{"values":[1,2]}`)
	require.Error(t, err)
}

func TestReplyArraySingleForeignKey(t *testing.T) {
	// A lone array under an unexpected key is still usable.
	arr, err := replyArray(`{"tickers":["AAPL"]}`, "values")
	require.NoError(t, err)
	assert.Len(t, arr, 1)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "plain", stripFences("plain"))
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "text", stripFences("```\ntext\n```"))
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	identity := func(d time.Duration) time.Duration { return d }
	p := RetryPolicy{
		Attempts:  5,
		BaseDelay: 4 * time.Second,
		MaxDelay:  10 * time.Second,
		Jitter:    identity,
	}
	assert.Equal(t, 4*time.Second, p.Backoff(0))
	assert.Equal(t, 8*time.Second, p.Backoff(1))
	assert.Equal(t, 10*time.Second, p.Backoff(2))
	assert.Equal(t, 10*time.Second, p.Backoff(3))

	assert.Equal(t, time.Duration(0), ZeroDelayPolicy(3).Backoff(1))
}
