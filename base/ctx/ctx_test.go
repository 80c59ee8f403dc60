package ctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithValue(t *testing.T) {
	req := require.New(t)

	parent := Background()
	child := WithValue(parent, "sweepId", "abc")
	req.Equal("abc", child.Value("sweepId"))
	req.Nil(parent.Value("sweepId"))
}

func TestWithTimeout(t *testing.T) {
	req := require.New(t)

	c, cancel := WithTimeout(Background(), time.Millisecond)
	defer cancel()
	<-c.Done()
	req.Error(c.Err())
}

func TestDetach(t *testing.T) {
	req := require.New(t)

	parent, cancel := WithCancel(Background())
	cancel()
	detached := Detach(parent)
	req.NoError(detached.Err())
}
