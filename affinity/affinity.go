// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// CPU affinity for the calling OS thread. Callers must hold the thread with
// runtime.LockOSThread for the pinning to stay meaningful.

package affinity

import "fmt"

// SetAffinity pins the calling OS thread to logical CPU cpuID.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return fmt.Errorf("affinity: invalid cpu %d", cpuID)
	}
	return setAffinityPlatform(cpuID)
}
