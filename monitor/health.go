package monitor

import (
	"fmt"

	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/lib/crypto"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthCheck() verifies the host can run the engine: every key scheme signs and verifies, and
// at least minFreeMemory bytes are available (zero skips the memory probe)
func HealthCheck(minFreeMemory uint64) lib.ErrorI {
	for _, scheme := range []crypto.Scheme{crypto.SchemeEd25519, crypto.SchemeSecp256k1} {
		if err := crypto.SelfTest(scheme); err != nil {
			return ErrHealthCheckFailed(err)
		}
	}
	if minFreeMemory == 0 {
		return nil
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return ErrHealthCheckFailed(err)
	}
	if vm.Available < minFreeMemory {
		return ErrHealthCheckFailed(fmt.Errorf("available memory %d bytes is below the minimum of %d bytes", vm.Available, minFreeMemory))
	}
	return nil
}
