package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	ending := time.Now().UTC().Add(24 * time.Hour)

	t.Run("valid request starts pending", func(t *testing.T) {
		req, err := NewRequest(1, 2, false, "need access for oncall", &ending)
		require.NoError(t, err)
		assert.True(t, req.IsPending())
		assert.Equal(t, &ending, req.RequestEndingAt())
	})

	t.Run("missing requester", func(t *testing.T) {
		_, err := NewRequest(0, 2, false, "reason", nil)
		assert.Error(t, err)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := NewRequest(1, 0, false, "reason", nil)
		assert.Error(t, err)
	})
}

func TestRequestResolution(t *testing.T) {
	t.Run("approve settles once", func(t *testing.T) {
		req, err := NewRequest(1, 2, false, "reason", nil)
		require.NoError(t, err)

		require.NoError(t, req.Approve("Group membership auto-approved"))
		assert.Equal(t, StatusApproved, req.Status())
		assert.NotNil(t, req.ResolvedAt())

		assert.Error(t, req.Approve("again"))
		assert.Error(t, req.Reject("later"))
	})

	t.Run("reject settles once", func(t *testing.T) {
		req, err := NewRequest(1, 2, true, "", nil)
		require.NoError(t, err)

		require.NoError(t, req.Reject("ownership requests are not auto-approvable"))
		assert.Equal(t, StatusRejected, req.Status())
		assert.Error(t, req.Approve("flip"))
	})
}
