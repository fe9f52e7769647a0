package kmeans

import "fmt"

// Strategy selects how the assignment phase finds nearest centroids.
type Strategy int

const (
	// Auto uses a device when one can be acquired, otherwise KDTree above the
	// kd-tree threshold and BruteForce below it.
	Auto Strategy = iota
	// BruteForce scans every centroid for every point.
	BruteForce
	// KDTree rebuilds a kd-tree over the centroids each iteration and queries
	// it per point.
	KDTree
	// Device delegates assignment to an accel.Device.
	Device
)

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case BruteForce:
		return "brute-force"
	case KDTree:
		return "kd-tree"
	case Device:
		return "device"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses the names returned by String.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "auto", "":
		return Auto, nil
	case "brute-force", "bruteforce", "brute":
		return BruteForce, nil
	case "kd-tree", "kdtree":
		return KDTree, nil
	case "device":
		return Device, nil
	default:
		return Auto, fmt.Errorf("%w: unknown strategy %q", ErrInvalidParameter, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
