/*
DESCRIPTION
  sync.go implements the multi-camera synchronization role bitset and its
  admission rules (spec §4.4/§4.5). Validation is a pure function so it
  can be exercised without a camera.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import "fmt"

// SyncRole is a bitset over the roles a Session's camera can take in a
// multi-camera capture group.
type SyncRole int

const (
	SyncNone   SyncRole = 0
	SyncMaster SyncRole = 1 << iota
	SyncSlave
	SyncSoft
	SyncBus
	SyncHw
)

func (r SyncRole) Has(bit SyncRole) bool { return r&bit != 0 }

func (r SyncRole) String() string {
	if r == SyncNone {
		return "free-running"
	}
	var s string
	add := func(bit SyncRole, name string) {
		if r.Has(bit) {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	add(SyncMaster, "master")
	add(SyncSlave, "slave")
	add(SyncSoft, "soft")
	add(SyncBus, "bus")
	add(SyncHw, "hw")
	return s
}

// ValidateSyncRole checks r against the legal-combinations table of spec
// §4.4: free-run, Master|Soft, Slave|Soft, Master|Bus, Slave|Bus,
// Master|Hw, Slave|Hw. Master&Slave together, or (Master|Slave) without
// exactly one of Soft/Bus/Hw, are illegal.
func ValidateSyncRole(r SyncRole) error {
	if r == SyncNone {
		return nil
	}
	if r.Has(SyncMaster) && r.Has(SyncSlave) {
		return fmt.Errorf("device: sync role cannot be both master and slave (%s)", r)
	}
	if !r.Has(SyncMaster) && !r.Has(SyncSlave) {
		return fmt.Errorf("device: sync role %s requires master or slave", r)
	}
	variants := 0
	if r.Has(SyncSoft) {
		variants++
	}
	if r.Has(SyncBus) {
		variants++
	}
	if r.Has(SyncHw) {
		variants++
	}
	if variants != 1 {
		return fmt.Errorf("device: sync role %s must set exactly one of soft/bus/hw", r)
	}
	return nil
}
