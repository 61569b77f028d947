package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	toasts []Toast
}

func (s *recordingSink) Publish(t Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, t)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

func TestCenter_DeduplicatesVisibleToast(t *testing.T) {
	mock := clock.NewMock()
	sink := &recordingSink{}
	c := NewCenter(3*time.Second, WithClock(mock), WithSink(sink))

	first := c.Success("Đã lưu")
	second := c.Success("Đã lưu")

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, c.Visible(), 1)
	assert.Equal(t, 1, sink.count())
}

func TestCenter_SameMessageDifferentSeverity(t *testing.T) {
	c := NewCenter(time.Second, WithClock(clock.NewMock()))

	c.Success("Đã lưu")
	c.Error("Đã lưu")

	assert.Len(t, c.Visible(), 2)
}

func TestCenter_ExpiryAllowsRepeat(t *testing.T) {
	mock := clock.NewMock()
	c := NewCenter(3*time.Second, WithClock(mock))

	first := c.Success("Đã lưu")
	mock.Add(3 * time.Second)

	require.Eventually(t, func() bool { return len(c.Visible()) == 0 }, time.Second, 5*time.Millisecond)

	second := c.Success("Đã lưu")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, c.Visible(), 1)
}

func TestCenter_Dismiss(t *testing.T) {
	c := NewCenter(time.Minute, WithClock(clock.NewMock()))

	toast := c.Error("Lỗi máy chủ")
	assert.True(t, c.Dismiss(toast.ID))
	assert.False(t, c.Dismiss(toast.ID))
	assert.Empty(t, c.Visible())

	again := c.Error("Lỗi máy chủ")
	assert.NotEqual(t, toast.ID, again.ID)
}

func TestCenter_VisibleInCreationOrder(t *testing.T) {
	c := NewCenter(time.Minute, WithClock(clock.NewMock()), WithScope("op-1"))

	c.Info("một")
	c.Warning("hai")
	c.Success("ba")

	visible := c.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, "một", visible[0].Message)
	assert.Equal(t, "hai", visible[1].Message)
	assert.Equal(t, "ba", visible[2].Message)
	assert.Equal(t, "op-1", visible[0].Scope)
}

func TestCenter_CloseClearsRegistry(t *testing.T) {
	sink := &recordingSink{}
	c := NewCenter(time.Minute, WithClock(clock.NewMock()), WithSink(sink))
	c.Success("Đã lưu")

	c.Close()
	assert.Empty(t, c.Visible())

	c.Success("Đã lưu")
	assert.Empty(t, c.Visible())
	assert.Equal(t, 1, sink.count())
}

func TestCenter_ConcurrentNotify(t *testing.T) {
	c := NewCenter(time.Minute, WithClock(clock.NewMock()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Success("Đã lưu")
		}()
	}
	wg.Wait()

	assert.Len(t, c.Visible(), 1)
}
