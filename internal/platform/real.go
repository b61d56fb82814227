package platform

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/taniwha3/meshbond/internal/meshmodel"
)

// excludePatterns filters out virtual/container networking infrastructure
// that can never be a physical mesh uplink, adapted from the teacher's
// collector package's interface-exclusion list — narrowed to drop only
// entries that are never usable uplinks (monitor-mode wireless, bridges,
// veth pairs); wwan/usb are kept since those name real cellular/tethered
// uplinks the aggregator needs to see.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^docker.*`),
	regexp.MustCompile(`^veth.*`),
	regexp.MustCompile(`^br-.*`),
	regexp.MustCompile(`^virbr.*`),
	regexp.MustCompile(`^wlan\d+mon.*`),
}

func isExcluded(name string) bool {
	for _, re := range excludePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// classifyPrefixes maps interface-name prefixes to a Kind, checked in
// order (spec.md §4.A): wl*/wifi/wlan -> wireless; ppp*/wwan*/rmnet*/cdc*
// -> cellular; eth*/en* -> wired; else unknown.
var classifyPrefixes = []struct {
	prefix string
	kind   meshmodel.Kind
}{
	{"wl", meshmodel.KindWireless},
	{"wifi", meshmodel.KindWireless},
	{"wlan", meshmodel.KindWireless},
	{"ppp", meshmodel.KindCellular},
	{"wwan", meshmodel.KindCellular},
	{"rmnet", meshmodel.KindCellular},
	{"cdc", meshmodel.KindCellular},
	{"eth", meshmodel.KindWired},
	{"en", meshmodel.KindWired},
}

// RealPort is the OS-backed Port implementation: gopsutil for
// enumeration, stdlib UDP for broadcast, x/net/icmp for probing, and
// os/exec around `ip link` for admin state (see DESIGN.md for why the
// latter is a justified stdlib/exec boundary rather than a library).
type RealPort struct {
	ifconfigTool string // "iwconfig" path, resolved lazily; empty if unavailable
}

// NewRealPort constructs the real platform port.
func NewRealPort() *RealPort {
	path, _ := exec.LookPath("iwconfig")
	return &RealPort{ifconfigTool: path}
}

// EnumerateInterfaces lists non-loopback local interfaces via gopsutil.
func (p *RealPort) EnumerateInterfaces(ctx context.Context) ([]Descriptor, error) {
	stats, err := gopsnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}

	descriptors := make([]Descriptor, 0, len(stats))
	for _, stat := range stats {
		if isLoopback(stat.Flags) || isExcluded(stat.Name) {
			continue
		}
		descriptors = append(descriptors, Descriptor{
			Name:      stat.Name,
			Kind:      p.Classify(stat.Name),
			Address:   firstAddr(stat.Addrs),
			HWAddress: stat.HardwareAddr,
		})
	}
	return descriptors, nil
}

func isLoopback(flags []string) bool {
	for _, f := range flags {
		if f == "loopback" {
			return true
		}
	}
	return false
}

func firstAddr(addrs gopsnet.InterfaceAddrList) string {
	if len(addrs) == 0 {
		return ""
	}
	addr := addrs[0].Addr
	if idx := strings.IndexByte(addr, '/'); idx >= 0 {
		return addr[:idx]
	}
	return addr
}

// Classify maps name to a Kind by prefix, falling back to an iwconfig
// query for ambiguous wireless-capable names before settling on unknown.
func (p *RealPort) Classify(name string) meshmodel.Kind {
	lower := strings.ToLower(name)
	for _, rule := range classifyPrefixes {
		if strings.HasPrefix(lower, rule.prefix) {
			return rule.kind
		}
	}
	if p.ifconfigTool != "" {
		if out, err := exec.Command(p.ifconfigTool, name).CombinedOutput(); err == nil {
			if strings.Contains(string(out), "IEEE 802.11") {
				return meshmodel.KindWireless
			}
		}
	}
	return meshmodel.KindUnknown
}

// IsUp reports operational state by checking interface flags.
func (p *RealPort) IsUp(ctx context.Context, name string) (bool, error) {
	stats, err := gopsnet.InterfacesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("is_up %s: %w", name, err)
	}
	for _, stat := range stats {
		if stat.Name != name {
			continue
		}
		for _, f := range stat.Flags {
			if f == "up" {
				return true, nil
			}
		}
		return false, nil
	}
	return false, ErrUnavailableInterface
}

// AdminUp brings the named interface administratively up via `ip link`.
func (p *RealPort) AdminUp(ctx context.Context, name string) error {
	return runIPLink(ctx, name, "up")
}

// AdminDown brings the named interface administratively down via
// `ip link`.
func (p *RealPort) AdminDown(ctx context.Context, name string) error {
	return runIPLink(ctx, name, "down")
}

func runIPLink(ctx context.Context, name, state string) error {
	cmd := exec.CommandContext(ctx, "ip", "link", "set", name, state)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ip link set %s %s: %w (%s)", name, state, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// LocalAddress returns the address of the first non-loopback interface
// with an assigned address.
func (p *RealPort) LocalAddress() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("local address: %w", err)
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() || ipNet.IP.To4() == nil {
			continue
		}
		return ipNet.IP.String(), nil
	}
	return "", fmt.Errorf("local address: no non-loopback IPv4 address found")
}

// HWAddress returns the hardware address of the named interface.
func (p *RealPort) HWAddress(name string) (string, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return "", fmt.Errorf("hw address %s: %w", name, err)
	}
	return iface.HardwareAddr.String(), nil
}

// SignalStrength shells out to iwconfig for a best-effort wireless
// signal reading, returning nil on any failure (mirrors the original
// Python source's broad except-and-ignore).
func (p *RealPort) SignalStrength(name string) *int {
	if p.ifconfigTool == "" {
		return nil
	}
	out, err := exec.Command(p.ifconfigTool, name).CombinedOutput()
	if err != nil {
		return nil
	}
	idx := strings.Index(string(out), "Signal level=")
	if idx < 0 {
		return nil
	}
	rest := string(out)[idx+len("Signal level="):]
	end := strings.IndexAny(rest, " \n")
	if end < 0 {
		end = len(rest)
	}
	value := strings.TrimSuffix(rest[:end], "dBm")
	level, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &level
}
