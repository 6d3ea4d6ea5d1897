package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockerContract verifies that a DistributedLocker adheres to the interface contract.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		assert.NoError(t, unlock(ctx))
	})

	t.Run("Held Lock Blocks Until Context Ends", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(short, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, unlock(ctx))

		again, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, again(ctx))
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		a, err := locker.Lock(ctx, key+"-a", 5*time.Second)
		require.NoError(t, err)
		defer a(ctx)

		short, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		b, err := locker.Lock(short, key+"-b", 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, b(ctx))
	})
}

// RunCameraContract verifies that a Camera adheres to the interface contract.
func RunCameraContract(t *testing.T, camera Camera) {
	ctx := context.Background()

	t.Run("Place Accepts Any Placement", func(t *testing.T) {
		err := camera.Place(ctx, domain.CameraPlacement{
			Position: domain.Vec3{Z: 1000},
		})
		assert.NoError(t, err)
	})

	t.Run("Fit Empty Set", func(t *testing.T) {
		_, err := camera.FitAll(ctx, nil)
		assert.NoError(t, err)
	})

	t.Run("Fit Targets The Nodes", func(t *testing.T) {
		nodes := []*domain.NodeInstance{
			{ID: "a", Position: domain.Vec3{X: -100, Y: -100}, Visible: true},
			{ID: "b", Position: domain.Vec3{X: 100, Y: 100}, Visible: true},
		}
		placement, err := camera.FitAll(ctx, nodes)
		require.NoError(t, err)
		assert.InDelta(t, 0, placement.Target.X, 200)
		assert.InDelta(t, 0, placement.Target.Y, 200)
		assert.NotEqual(t, placement.Position, placement.Target)
	})
}
