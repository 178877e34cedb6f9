package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-tailor/internal/config"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "  ```JSON\n{\"a\":1}```  ", want: `{"a":1}`},
		{in: "```{\"a\":1}```", want: `{"a":1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFences(tt.in), tt.in)
	}
}

func TestClientHandleBuildsOnce(t *testing.T) {
	var builds int32
	handle := NewClientHandle(func() (*int32, error) {
		atomic.AddInt32(&builds, 1)
		v := int32(42)
		return &v, nil
	})

	var wg sync.WaitGroup
	results := make([]*int32, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := handle.Get()
			require.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}

func TestClientHandleKeepsError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	handle := NewClientHandle(func() (string, error) {
		calls++
		return "", boom
	})

	_, err := handle.Get()
	assert.ErrorIs(t, err, boom)
	_, err = handle.Get()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestNewLLMGateway(t *testing.T) {
	gw, err := NewLLMGateway(config.LLMConfig{Provider: ProviderOpenAI}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, gw.Provider())

	gw, err = NewLLMGateway(config.LLMConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, gw.Provider())

	_, err = NewLLMGateway(config.LLMConfig{Provider: "anthropic"}, nil)
	assert.Error(t, err)
}

func TestGatewaysWithoutCredential(t *testing.T) {
	for _, gw := range []LLMGateway{
		NewGeminiGateway("", "", 0.3, nil),
		NewOpenAIGateway("", "", "", 0.3, nil),
	} {
		_, err := gw.Complete(t.Context(), SystemJSONOnly, "prompt", CompletionOptions{})
		assert.ErrorIs(t, err, ErrProviderUnavailable, gw.Provider())
	}
}
