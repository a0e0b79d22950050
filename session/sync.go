/*
DESCRIPTION
  sync.go implements the multi-camera synchronization start/stop
  sequences of spec §4.5: broadcast-command gating in Bus mode,
  external-trigger enable sequencing in Hw mode, and Master-driven
  transmission fan-out to Slave|Soft peers.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import "github.com/ausocean/iidc/device"

// syncStart implements spec §4.5's start sequence.
func (s *Session) syncStart() error {
	role := s.syncRole
	master := role.Has(device.SyncMaster)
	bus := role.Has(device.SyncBus)
	hw := role.Has(device.SyncHw)
	slave := role.Has(device.SyncSlave)

	if bus && master {
		if err := s.cam.SetBroadcast(true); err != nil {
			return err
		}
	}

	if hw {
		if err := s.cam.SetExternalTrigger(false); err != nil {
			return err
		}
		if slave && s.cam.HasExternalTrigger() {
			if err := s.cam.SetExternalTrigger(true); err != nil {
				return err
			}
		}
	}

	// A Slave that isn't Hw-triggered is driven by the Master's bus
	// broadcast or Soft fan-out below; it never enables its own
	// transmission directly.
	if !(slave && !hw) {
		if err := s.cam.SetTransmission(true); err != nil {
			return err
		}
	}

	if master && role.Has(device.SyncSoft) {
		if err := s.forEachPeer(func(peer *Session) error {
			if peer.syncRole.Has(device.SyncSlave) && peer.syncRole.Has(device.SyncSoft) {
				return peer.cam.SetTransmission(true)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	if bus && master {
		if err := s.cam.SetBroadcast(false); err != nil {
			return err
		}
	}
	return nil
}

// syncStop implements spec §4.5's stop sequence, the mirror of start.
func (s *Session) syncStop() error {
	role := s.syncRole
	master := role.Has(device.SyncMaster)
	bus := role.Has(device.SyncBus)
	hw := role.Has(device.SyncHw)
	slave := role.Has(device.SyncSlave)

	if bus && master {
		if err := s.cam.SetBroadcast(true); err != nil {
			return err
		}
	}

	if !(slave && !hw) {
		if err := s.cam.SetTransmission(false); err != nil {
			return err
		}
	}

	if master && role.Has(device.SyncSoft) {
		if err := s.forEachPeer(func(peer *Session) error {
			if peer.syncRole.Has(device.SyncSlave) && peer.syncRole.Has(device.SyncSoft) {
				return peer.cam.SetTransmission(false)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	if hw {
		if err := s.cam.SetExternalTrigger(false); err != nil {
			return err
		}
	}

	if bus && master {
		if err := s.cam.SetBroadcast(false); err != nil {
			return err
		}
	}
	return nil
}

// forEachPeer applies fn to every other valid session in s's engine,
// locking each peer's mutex around the call (spec §4.5: "lock its mutex
// and enable its transmission").
func (s *Session) forEachPeer(fn func(peer *Session) error) error {
	s.engine.mu.Lock()
	peers := s.engine.slots
	s.engine.mu.Unlock()

	for _, peer := range peers {
		if peer == nil || peer == s {
			continue
		}
		peer.mu.Lock()
		err := fn(peer)
		peer.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// SetSyncRole validates and sets role for s (spec §4.5 legal-combinations
// table). Setting Slave|Hw on a camera without a trigger feature fails
// silently, keeping the prior value, per spec §4.5.
func (s *Session) SetSyncRole(role device.SyncRole) error {
	if role.Has(device.SyncSlave) && role.Has(device.SyncHw) && !s.cam.HasExternalTrigger() {
		return nil
	}
	if err := device.ValidateSyncRole(role); err != nil {
		return err
	}
	s.mu.Lock()
	s.syncRole = role
	s.mu.Unlock()
	return nil
}
