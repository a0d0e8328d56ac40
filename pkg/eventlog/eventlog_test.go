package eventlog_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jlrickert/hashdoc/pkg/eventlog"
	"github.com/stretchr/testify/require"
)

func TestLog_KeepsLastN(t *testing.T) {
	l := eventlog.New(0)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 25; i++ {
		l.Append(eventlog.Event{Time: base, Message: fmt.Sprintf("msg-%d", i)})
	}

	events := l.Events()
	require.Len(t, events, eventlog.DefaultCapacity)
	require.Equal(t, "msg-15", events[0].Message)
	require.Equal(t, "msg-24", events[len(events)-1].Message)

	lines := strings.Split(strings.TrimSuffix(l.String(), "\n"), "\n")
	require.Len(t, lines, eventlog.DefaultCapacity)
	require.Equal(t, "2026-01-02T03:04:05Z msg-15", lines[0])
}

func TestLog_BelowCapacity(t *testing.T) {
	l := eventlog.New(3)
	require.Equal(t, "", l.String())
	l.Append(eventlog.Event{Time: time.Unix(0, 0), Source: "/index.html", Key: "k", Message: "resolved"})
	require.Equal(t, 1, l.Len())
	require.Equal(t, "1970-01-01T00:00:00Z /index.html [k] resolved\n", l.String())
}

func TestLog_ConcurrentAppend(t *testing.T) {
	l := eventlog.New(5)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(eventlog.Event{Message: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()
	require.Equal(t, 5, l.Len())
}
