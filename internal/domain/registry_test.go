package domain

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(s string) func() time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

func yearRegistry(opts ...RegistryOption) *DatedRegistry[int] {
	return NewDatedRegistry(map[string]int{"2012": 12, "2013": 13, "2014": 14}, opts...)
}

func TestDatedRegistry_ResolveDate(t *testing.T) {
	reg := yearRegistry(WithClock(fixedClock("2015-03-01")))

	tests := []struct {
		query    string
		expected string
	}{
		{"2013-06", "2013"},
		{"2013", "2013"},
		{"2014-01-01", "2014"},
		{"2099", "2014"},
		{"", "2014"},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			key, err := reg.ResolveDate(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestDatedRegistry_NoApplicableTable(t *testing.T) {
	reg := yearRegistry()

	_, err := reg.ResolveDate("2011-12-31")
	var noTable *NoApplicableTableError
	require.ErrorAs(t, err, &noTable)
	assert.Equal(t, "2012", noTable.Earliest)

	// a key equal to the query is not strictly less, only exact keys short-circuit
	_, err = NewDatedRegistry(map[string]int{"2014-01": 1}).ResolveDate("2014")
	require.ErrorAs(t, err, &noTable)
}

func TestDatedRegistry_AbsentDateIsCachedOnce(t *testing.T) {
	now := fixedClock("2013-07-01")
	calls := 0
	reg := yearRegistry(WithClock(func() time.Time {
		calls++
		return now()
	}))

	key, err := reg.ResolveDate("")
	require.NoError(t, err)
	assert.Equal(t, "2013", key)

	// a later clock does not move a cached absent-date resolution
	now = fixedClock("2014-07-01")
	key, err = reg.ResolveDate("")
	require.NoError(t, err)
	assert.Equal(t, "2013", key)
	assert.Equal(t, 1, calls)
}

func TestValidateDate(t *testing.T) {
	for _, date := range []string{"", "2014", "2014-06", "2014-06-30", "1999"} {
		assert.NoError(t, ValidateDate(date), date)
	}

	for _, date := range []string{"14", "2014-6", "2014-13", "2014-06-31", "2014/06", "2014-06-01T00:00:00", "now", "2014-" + strings.Repeat("9", 120)} {
		err := ValidateDate(date)
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid, date)
		assert.Equal(t, "date", invalid.Field)
		assert.Less(t, len(err.Error()), 100, "long input is truncated in the message")
	}
}

func TestDatedRegistry_CacheIsBounded(t *testing.T) {
	reg := yearRegistry(WithClock(fixedClock("2015-03-01")))

	for i := 0; i < maxCachedQueries+500; i++ {
		key, err := reg.ResolveDate(fmt.Sprintf("2013-%06d", i))
		require.NoError(t, err)
		assert.Equal(t, "2013", key)
	}
	assert.Equal(t, maxCachedQueries, reg.CachedQueries())

	// the "now" query is still memoized once the cache is full
	key, err := reg.ResolveDate("")
	require.NoError(t, err)
	assert.Equal(t, "2014", key)
	assert.Equal(t, maxCachedQueries+1, reg.CachedQueries())

	// known keys never enter the cache
	_, err = reg.ResolveDate("2012")
	require.NoError(t, err)
	assert.Equal(t, maxCachedQueries+1, reg.CachedQueries())
}

func TestDatedRegistry_Resolve(t *testing.T) {
	reg := yearRegistry()

	v, key, err := reg.Resolve("2012-08")
	require.NoError(t, err)
	assert.Equal(t, "2012", key)
	assert.Equal(t, 12, v)

	_, ok := reg.TryGet("2012-08")
	assert.False(t, ok, "TryGet never falls back")
	v, ok = reg.TryGet("2014")
	assert.True(t, ok)
	assert.Equal(t, 14, v)
}

func TestDatedRegistry_KeysAndLatest(t *testing.T) {
	reg := yearRegistry()
	assert.Equal(t, []string{"2012", "2013", "2014"}, reg.Keys())
	assert.Equal(t, "2014", reg.Latest())
	assert.Equal(t, 3, reg.Len())

	empty := NewDatedRegistry(map[string]int{})
	assert.Equal(t, "", empty.Latest())
	_, err := empty.ResolveDate("2014")
	var noTable *NoApplicableTableError
	require.ErrorAs(t, err, &noTable)
	assert.Contains(t, err.Error(), "no schedules loaded")
}

func TestDatedRegistry_ConcurrentResolve(t *testing.T) {
	reg := yearRegistry(WithClock(fixedClock("2015-03-01")))

	var wg sync.WaitGroup
	results := make([]string, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			query := "2013-06"
			if i%2 == 0 {
				query = ""
			}
			key, err := reg.ResolveDate(query)
			if err == nil {
				results[i] = key
			}
		}(i)
	}
	wg.Wait()

	for i, key := range results {
		if i%2 == 0 {
			assert.Equal(t, "2014", key)
		} else {
			assert.Equal(t, "2013", key)
		}
	}
}
