package discovery

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID derives the stable node identity spec.md §4.C specifies:
// UUIDv5(namespace=DNS, name="{hostname}-{hw_address}"). It is
// idempotent across restarts on the same host.
func NodeID(hostname, hwAddress string) string {
	name := fmt.Sprintf("%s-%s", hostname, hwAddress)
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}
