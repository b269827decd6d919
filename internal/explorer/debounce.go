package explorer

import (
	"sync"
	"time"
)

// stopper 可停止的定时器
type stopper interface {
	Stop() bool
}

// afterFunc 与 time.AfterFunc 签名一致，测试时替换为手动时钟
type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Debouncer 尾部防抖：每次 Touch 重置定时器，静默满一个间隔后触发一次 fire
//
// 状态只有 idle 和 armed 两种；触发后回到 idle，不会自动重新计时。
type Debouncer struct {
	interval func() time.Duration
	fire     func()
	after    afterFunc

	mu    sync.Mutex
	timer stopper
	gen   uint64
}

// NewDebouncer 创建防抖器，interval 每次 Touch 时读取，<= 0 表示关闭
func NewDebouncer(interval func() time.Duration, fire func()) *Debouncer {
	return &Debouncer{
		interval: interval,
		fire:     fire,
		after:    realAfterFunc,
	}
}

// Touch 记录一次活动
func (d *Debouncer) Touch() {
	iv := d.interval()
	if iv <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.after(iv, func() { d.expire(gen) })
}

func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	// 已被新的 Touch 或 Stop 取代
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fire()
}

// Armed 是否有待触发的定时器
func (d *Debouncer) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop 取消待触发的定时器，回到 idle
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
