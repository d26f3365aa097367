package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// the pool of a test database is closed by t.Cleanup, after the leak check.
var ignoreDBOpener = goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener")

func TestExpiryRunner(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), ignoreDBOpener)

	db := openTestDB(t)
	e := addEvent(t, db, "Youth Chess Workshop", "2024-05-25")
	p := Payment{RegistrationId: addRegistration(t, db, e.Id, "Sarah Muthoni").Id, Amount: 500}
	require.NoError(t, db.CreatePayment(context.Background(), &p))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- db.ExpiryRunner(ctx, 5*time.Millisecond, time.Minute, zap.NewNop())
	}()

	require.Eventually(t, func() bool {
		got, err := db.GetPayment(context.Background(), p.Id)
		return err == nil && got.Status == PaymentExpired
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("expiry runner did not stop")
	}
}

func TestStatsRunner_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), ignoreDBOpener)

	db := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	assert.NoError(t, db.StatsRunner(ctx, 5*time.Millisecond, zap.NewNop()))
}
