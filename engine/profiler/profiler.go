//go:build profile

package profiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var ErrNoEvents = errors.New("profiler: no events recorded")

// Init allocates the event ring. Scopes started before Init are dropped.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	ring.init(capacity)
}

func Enabled() bool { return true }

// Start opens a named scope and returns the func that closes it.
//
//	defer profiler.Start("sim.Update")()
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := intern(name)
	begin := time.Now().UnixNano()
	ring.push(event{at: begin, scope: id, open: true})
	return func() {
		end := max(time.Now().UnixNano(), begin)
		ring.push(event{at: end, scope: id})
	}
}

// Dump writes the recorded scopes to path in speedscope's evented format.
func Dump(path string) error {
	evs := ring.snapshot()
	if len(evs) == 0 {
		return ErrNoEvents
	}
	doc, err := buildSpeedscope(evs)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("profiler: create %s: %w", tmp, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("profiler: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

type event struct {
	at    int64
	scope int
	open  bool
}

type eventRing struct {
	ready atomic.Bool
	size  uint64
	next  atomic.Uint64
	buf   []event
}

func (r *eventRing) init(capacity int) {
	r.size = uint64(capacity)
	r.buf = make([]event, r.size)
	r.next.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.next.Add(1) - 1
	r.buf[i%r.size] = e
}

// snapshot returns the retained events in write order.
func (r *eventRing) snapshot() []event {
	n := r.next.Load()
	if n == 0 {
		return nil
	}
	var from uint64
	if n > r.size {
		from = n - r.size
	}
	out := make([]event, 0, n-from)
	for k := from; k < n; k++ {
		out = append(out, r.buf[k%r.size])
	}
	return out
}

var ring eventRing

var (
	namesMu sync.Mutex
	names   []string
	nameIDs = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := nameIDs[name]; ok {
		return id
	}
	id := len(names)
	nameIDs[name] = id
	names = append(names, name)
	return id
}

type speedscopeFile struct {
	Schema   string              `json:"$schema"`
	Shared   speedscopeShared    `json:"shared"`
	Profiles []speedscopeProfile `json:"profiles"`
	Exporter string              `json:"exporter,omitempty"`
	Name     string              `json:"name,omitempty"`
}

type speedscopeShared struct {
	Frames []speedscopeFrame `json:"frames"`
}

type speedscopeFrame struct {
	Name string `json:"name"`
}

type speedscopeProfile struct {
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Unit       string            `json:"unit"`
	StartValue int64             `json:"startValue"`
	EndValue   int64             `json:"endValue"`
	Events     []speedscopeEvent `json:"events"`
}

type speedscopeEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // microseconds since the first event
	Frame int    `json:"frame"`
}

func buildSpeedscope(evs []event) (*speedscopeFile, error) {
	namesMu.Lock()
	frames := make([]speedscopeFrame, len(names))
	for i, n := range names {
		frames[i] = speedscopeFrame{Name: n}
	}
	namesMu.Unlock()

	base := evs[0].at
	out := make([]speedscopeEvent, 0, len(evs)+8)
	stack := make([]int, 0, 16)
	var last int64

	for _, e := range evs {
		at := max((e.at-base)/1000, last)
		if e.open {
			stack = append(stack, e.scope)
			out = append(out, speedscopeEvent{Type: "O", At: at, Frame: e.scope})
		} else {
			// The ring may have dropped the matching open.
			if len(stack) == 0 || stack[len(stack)-1] != e.scope {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, speedscopeEvent{Type: "C", At: at, Frame: e.scope})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, speedscopeEvent{Type: "C", At: last, Frame: stack[i]})
	}
	if len(out) == 0 {
		return nil, ErrNoEvents
	}

	return &speedscopeFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: speedscopeShared{Frames: frames},
		Profiles: []speedscopeProfile{{
			Type:     "evented",
			Name:     "bounce ticks",
			Unit:     "microseconds",
			EndValue: last,
			Events:   out,
		}},
		Exporter: "bounce-profiler",
		Name:     "bounce capture",
	}, nil
}
