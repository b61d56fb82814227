package platform

import (
	"context"
	"time"

	"github.com/taniwha3/meshbond/internal/meshmodel"
)

// FakePort is a deterministic, in-memory Port used by the unit tests of
// every package that consumes a Port, so those tests do not depend on
// real networking or OS privileges.
type FakePort struct {
	Descriptors  []Descriptor
	UpState      map[string]bool
	ProbeResults map[string]ProbeResult // key: name+"/"+target
	SendErr      error
	Sent         [][]byte
	Inbound      [][]byte
	LocalAddr    string
}

// NewFakePort creates an empty fake port.
func NewFakePort() *FakePort {
	return &FakePort{
		UpState:      make(map[string]bool),
		ProbeResults: make(map[string]ProbeResult),
		LocalAddr:    "192.0.2.1",
	}
}

func (f *FakePort) EnumerateInterfaces(ctx context.Context) ([]Descriptor, error) {
	return f.Descriptors, nil
}

func (f *FakePort) Classify(name string) meshmodel.Kind {
	for _, d := range f.Descriptors {
		if d.Name == name {
			return d.Kind
		}
	}
	return meshmodel.KindUnknown
}

func (f *FakePort) IsUp(ctx context.Context, name string) (bool, error) {
	up, ok := f.UpState[name]
	if !ok {
		return false, ErrUnavailableInterface
	}
	return up, nil
}

func (f *FakePort) AdminUp(ctx context.Context, name string) error {
	f.UpState[name] = true
	return nil
}

func (f *FakePort) AdminDown(ctx context.Context, name string) error {
	f.UpState[name] = false
	return nil
}

func (f *FakePort) BroadcastSend(ctx context.Context, payload []byte, port int) error {
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Sent = append(f.Sent, payload)
	return nil
}

func (f *FakePort) BroadcastListen(ctx context.Context, port int, timeout time.Duration) ([][]byte, error) {
	return f.Inbound, nil
}

func (f *FakePort) Probe(ctx context.Context, name, target string, timeout time.Duration) (ProbeResult, error) {
	if result, ok := f.ProbeResults[name+"/"+target]; ok {
		return result, nil
	}
	return ProbeResult{Reachable: true, RTTMs: 10}, nil
}

func (f *FakePort) LocalAddress() (string, error) {
	return f.LocalAddr, nil
}

func (f *FakePort) HWAddress(name string) (string, error) {
	return "02:00:00:00:00:01", nil
}

func (f *FakePort) SignalStrength(name string) *int {
	return nil
}

var _ Port = (*FakePort)(nil)
