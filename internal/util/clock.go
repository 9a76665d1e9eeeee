package util

import (
	"sync"
	"time"
)

// Clock 抽象当前时间，便于测试
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// StubClock 返回固定时间
type StubClock struct {
	now  time.Time
	lock sync.Mutex
}

func NewStubClock(now time.Time) *StubClock {
	return &StubClock{now: now.UTC()}
}

func (c *StubClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Advance 将时间向前推进 d
func (c *StubClock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
