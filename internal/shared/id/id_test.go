package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
}

func TestGenerateString(t *testing.T) {
	assert.Len(t, NewGenerator().GenerateString(), 26)
}

func TestTypedIDGeneration(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"session", NewSessionID().String(), "sess_"},
		{"request", NewRequestID().String(), "req_"},
		{"timer", NewTimerID().String(), "tmr_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.id, tt.prefix), tt.id)
			assert.True(t, IsValid(tt.id))
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NewGenerator().GenerateString()))
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("tmr_123"))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewRequestID().String())
	require.NoError(t, err)

	assert.True(t, ts.After(before))
	assert.True(t, ts.Before(time.Now().Add(time.Second)))

	_, err = Timestamp("garbage")
	assert.Error(t, err)
}

func TestConcurrentGenerationIsUnique(t *testing.T) {
	gen := NewGenerator()
	const workers, perWorker = 8, 200

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s := gen.GenerateString()
				mu.Lock()
				seen[s] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestLexicographicSorting(t *testing.T) {
	gen := NewGenerator()
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = gen.GenerateString()
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	assert.Equal(t, ids, sorted)
}
