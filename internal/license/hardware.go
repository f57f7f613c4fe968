package license

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	"madaris/pkg/contracts/domain"
)

const (
	// maxComponentLen caps every hardware component string.
	maxComponentLen = 50

	// MinHardwareMatches is the shared activation/validation threshold:
	// a host matching at least this many of the four stored components
	// may run the license. Exactly MinHardwareMatches is a warning.
	MinHardwareMatches = 2

	// silentMatches is the count from which validation stays quiet.
	silentMatches = 3
)

// Collector probes the host for its four hardware identifiers. Probes are
// best-effort and cached for the lifetime of the process; the same host
// always produces the same components within a run.
type Collector struct {
	mu     sync.Mutex
	cached *domain.HardwareInfo
}

// NewCollector creates a hardware collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect returns the four per-host identifiers. Every probe failure is
// substituted with a deterministic 16-hex MD5 fallback, never an empty
// string, and Collect itself never fails.
func (c *Collector) Collect() domain.HardwareInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil {
		return *c.cached
	}

	hw := domain.HardwareInfo{
		Motherboard: probeMotherboard(),
		CPU:         probeCPU(),
		MAC:         probeMAC(),
		Drive:       probeDrive(),
	}
	c.cached = &hw

	slog.Debug("hardware components collected",
		slog.String("motherboard", hw.Motherboard),
		slog.String("cpu", hw.CPU),
		slog.String("mac", hw.MAC),
		slog.String("drive", hw.Drive),
	)
	return hw
}

// Fingerprint derives the 32-hex fingerprint: the SHA-256 of the four
// components concatenated in fixed order, first 32 hex digits.
func Fingerprint(hw domain.HardwareInfo) string {
	sum := sha256.Sum256([]byte(hw.Motherboard + hw.CPU + hw.MAC + hw.Drive))
	return hex.EncodeToString(sum[:])[:32]
}

// MatchCount compares two component sets; equality is exact string match
// per component. The result is 0..4.
func MatchCount(stored, current domain.HardwareInfo) int {
	n := 0
	if stored.Motherboard == current.Motherboard {
		n++
	}
	if stored.CPU == current.CPU {
		n++
	}
	if stored.MAC == current.MAC {
		n++
	}
	if stored.Drive == current.Drive {
		n++
	}
	return n
}

func probeMotherboard() string {
	info, err := host.Info()
	if err == nil && strings.TrimSpace(info.HostID) != "" {
		return clampComponent(strings.ToUpper(info.HostID))
	}
	slog.Warn("motherboard probe failed, using fallback hash")
	return fallbackHash(genericHostDescriptor())
}

func probeCPU() string {
	infos, err := cpu.Info()
	if err == nil && len(infos) > 0 {
		name := strings.TrimSpace(infos[0].ModelName)
		if name == "" {
			name = strings.TrimSpace(infos[0].VendorID)
		}
		if name != "" {
			return clampComponent(name)
		}
	}
	slog.Warn("cpu probe failed, using fallback hash")
	return fallbackHash(processorDescriptor())
}

func probeMAC() string {
	interfaces, err := net.Interfaces()
	if err == nil {
		// Prefer an up, non-loopback interface with a real address.
		for _, iface := range interfaces {
			if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
				continue
			}
			if mac := iface.HardwareAddr.String(); mac != "" && mac != "00:00:00:00:00:00" {
				return clampComponent(strings.ToUpper(mac))
			}
		}
		for _, iface := range interfaces {
			if mac := iface.HardwareAddr.String(); mac != "" && mac != "00:00:00:00:00:00" {
				return clampComponent(strings.ToUpper(mac))
			}
		}
	}
	slog.Warn("mac probe failed, using fallback hash")
	return fallbackHash(defaultInterfaceDescriptor())
}

func probeDrive() string {
	partitions, err := disk.Partitions(false)
	if err == nil && len(partitions) > 0 {
		device := partitions[0].Device
		if serial, err := disk.SerialNumber(device); err == nil && strings.TrimSpace(serial) != "" {
			return clampComponent(strings.ToUpper(strings.TrimSpace(serial)))
		}
		if strings.TrimSpace(device) != "" {
			return clampComponent(strings.ToUpper(device))
		}
	}
	slog.Warn("drive probe failed, using fallback hash")
	return fallbackHash(genericHostDescriptor())
}

// fallbackHash is the substitute for a failed probe: the first 16 hex
// characters of the MD5 of a generic descriptor.
func fallbackHash(descriptor string) string {
	sum := md5.Sum([]byte(descriptor))
	return hex.EncodeToString(sum[:])[:16]
}

func genericHostDescriptor() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s|%s|%s", hostname, runtime.GOOS, runtime.GOARCH)
}

func processorDescriptor() string {
	name := os.Getenv("PROCESSOR_IDENTIFIER")
	if name == "" {
		name = runtime.GOARCH
	}
	return "cpu|" + name
}

func defaultInterfaceDescriptor() string {
	hostname, _ := os.Hostname()
	return "iface|" + hostname
}

func clampComponent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallbackHash(genericHostDescriptor())
	}
	if runes := []rune(s); len(runes) > maxComponentLen {
		return string(runes[:maxComponentLen])
	}
	return s
}
