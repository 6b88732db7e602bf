package peers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTriedBucketIndexSamePortDiffersDifferentPortSameBucket(t *testing.T) {
	i1 := TriedBucketIndex(0, "192.168.1.1:21337")
	i2 := TriedBucketIndex(0, "192.168.1.1:21338")
	require.NotEqual(t, i1, i2)

	diff := int(i1) - int(i2)
	if diff < 0 {
		diff = -diff
	}
	require.Less(t, diff, 64)
}

func TestTriedBucketIndexDifferentGroupDifferentBucket(t *testing.T) {
	i1 := TriedBucketIndex(0, "192.168.1.1:21337")
	i2 := TriedBucketIndex(0, "192.169.1.1:21337")
	require.NotEqual(t, i1, i2)
}

func TestTriedBucketIndexDifferentSKDifferentBucket(t *testing.T) {
	i1 := TriedBucketIndex(1, "192.168.1.1:21337")
	i2 := TriedBucketIndex(2, "192.168.1.1:21337")
	require.NotEqual(t, i1, i2)
}

func TestAddTriedThenContains(t *testing.T) {
	p := New(0, time.Hour)
	p.AddTried("192.168.1.1:21337")
	require.True(t, p.TriedBucketContains("192.168.1.1:21337"))
	require.False(t, p.TriedBucketContains("192.168.1.1:21338"))
}

func TestAddNewThenContains(t *testing.T) {
	p := New(0, time.Hour)
	p.AddNew("192.168.1.1:21337", "10.0.0.1:21337")
	require.True(t, p.NewBucketContains("192.168.1.1:21337", "10.0.0.1:21337"))
	require.False(t, p.NewBucketContains("192.168.1.1:21337", "10.1.0.1:21337"))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestIcingDoesNotBlockEntireIPOrOtherIP(t *testing.T) {
	p := New(0, 1000*time.Second)
	p.IcePeerAddress("192.168.1.1:21337")
	require.True(t, p.IceBucketContains("192.168.1.1:21337"))
	require.False(t, p.IceBucketContains("192.168.1.1:21338"))
	require.False(t, p.IceBucketContains("192.168.1.2:21337"))
}

func TestIceMeltsAfterIcePeriod(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := New(0, 1000*time.Second).WithClock(clock)
	p.IcePeerAddress("192.168.1.1:21337")

	clock.t = time.Unix(999, 0)
	require.True(t, p.IceBucketContains("192.168.1.1:21337"))

	clock.t = time.Unix(1001, 0)
	require.False(t, p.IceBucketContains("192.168.1.1:21337"))
}

func TestRemoveFromIce(t *testing.T) {
	p := New(0, time.Hour)
	p.IcePeerAddress("192.168.1.1:21337")
	require.True(t, p.IceBucketContains("192.168.1.1:21337"))
	p.RemoveFromIce("192.168.1.1:21337")
	require.False(t, p.IceBucketContains("192.168.1.1:21337"))
}
