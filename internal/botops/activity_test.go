package botops

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLog_KeepsInsertionOrder(t *testing.T) {
	l := NewActivityLog(3)
	l.Record(Entry{Text: "a"})
	l.Record(Entry{Text: "b"})

	got := l.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "b", got[1].Text)
	assert.Zero(t, l.Dropped())
}

func TestActivityLog_OverwritesOldest(t *testing.T) {
	l := NewActivityLog(3)
	for i := range 5 {
		l.Record(Entry{Text: fmt.Sprint(i)})
	}

	got := l.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "3", "4"}, []string{got[0].Text, got[1].Text, got[2].Text})
	assert.Equal(t, int64(2), l.Dropped())
	assert.Equal(t, 3, l.Len())
}

func TestActivityLog_DefaultCapacity(t *testing.T) {
	l := NewActivityLog(0)
	for range DefaultActivityCapacity + 10 {
		l.Record(Entry{At: time.Now()})
	}
	assert.Equal(t, DefaultActivityCapacity, l.Len())
}

func TestActivityLog_SnapshotIsACopy(t *testing.T) {
	l := NewActivityLog(2)
	l.Record(Entry{Text: "a"})
	snap := l.Snapshot()
	snap[0].Text = "changed"
	assert.Equal(t, "a", l.Snapshot()[0].Text)
}

func TestActivityLog_ConcurrentRecord(t *testing.T) {
	l := NewActivityLog(50)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 10 {
				l.Record(Entry{Text: fmt.Sprintf("%d-%d", i, j)})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, l.Len())
	assert.Equal(t, int64(150), l.Dropped())
}
