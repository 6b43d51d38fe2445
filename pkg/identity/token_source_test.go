package identity

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// rotatingSource hands out the same token for perToken calls, then the next one.
type rotatingSource struct {
	mu       sync.Mutex
	calls    int
	perToken int
}

func (s *rotatingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.calls / s.perToken
	s.calls++
	return &oauth2.Token{AccessToken: fmt.Sprintf("t%d", n)}, nil
}

func TestNotifyTokenSource_ReportsEachRotationOnce(t *testing.T) {
	const (
		workers  = 8
		calls    = 200
		perToken = 50
	)

	var (
		mu       sync.Mutex
		reported []string
	)
	src := &notifyTokenSource{
		src:     &rotatingSource{perToken: perToken},
		current: &oauth2.Token{AccessToken: "t0"},
		callback: func(t *oauth2.Token) error {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, t.AccessToken)
			return nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				_, err := src.Token()
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	rotations := workers*calls/perToken - 1
	require.Len(t, reported, rotations)
	for i, token := range reported {
		assert.Equal(t, fmt.Sprintf("t%d", i+1), token)
	}
}

func TestNotifyTokenSource_SameTokenIsNotReported(t *testing.T) {
	called := 0
	src := &notifyTokenSource{
		src:     oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "same"}),
		current: &oauth2.Token{AccessToken: "same"},
		callback: func(*oauth2.Token) error {
			called++
			return nil
		},
	}

	for i := 0; i < 3; i++ {
		_, err := src.Token()
		require.NoError(t, err)
	}
	assert.Zero(t, called)
}
