package activity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teamconnect/go-services/internal/store"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	s, err := store.New(t.TempDir())
	require.NoError(t, err)
	return NewLog(s)
}

func TestAppendPreservesOrder(t *testing.T) {
	l := newTestLog(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append("alice", "create", fmt.Sprintf("res-%d", i), "code_snippet"))
	}

	all, err := l.All()
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, e := range all {
		require.Equal(t, fmt.Sprintf("res-%d", i), e.ResourceName, "persisted order must be append order")
		require.False(t, e.Timestamp.IsZero())
	}
}

func TestRecentNewestFirst(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append("alice", "login", "system", "authentication"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, l.Append("bob", "upload", "notes.txt", "file"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, l.Append("carol", "create", "snippet", "code_snippet"))

	recent, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "carol", recent[0].Username)
	require.Equal(t, "bob", recent[1].Username)

	// limit larger than the log returns everything
	recent, err = l.Recent(50)
	require.NoError(t, err)
	require.Len(t, recent, 3)
}
