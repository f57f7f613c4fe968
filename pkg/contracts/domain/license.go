// Package domain contains the core domain models for the school accounting
// application. These types serve as the single source of truth for the
// license subsystem, the renderers and the query layer.
package domain

import (
	"time"
)

// HardwareInfo holds the four per-host identifiers a license is bound to.
// Each component is at most 50 characters; probe failures are replaced by a
// 16-hex MD5 fallback, never an empty string.
type HardwareInfo struct {
	Motherboard string `json:"motherboard" db:"motherboard" validate:"required,max=50"`
	CPU         string `json:"cpu" db:"cpu" validate:"required,max=50"`
	MAC         string `json:"mac" db:"mac" validate:"required,max=50"`
	Drive       string `json:"drive" db:"drive" validate:"required,max=50"`
}

// LicenseRecord is the locally stored activation record. It is persisted
// encrypted at <base>/license.json with stable field ordering.
type LicenseRecord struct {
	ActivationCode string       `json:"activation_code" validate:"required"`
	HardwareInfo   HardwareInfo `json:"hardware_info" validate:"required"`
	FirstUsedAt    time.Time    `json:"first_used_at" validate:"required"`
	IssuedTo       string       `json:"issued_to,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// LicenseRow mirrors one row of the remote `licenses` table. The activation
// code is the primary key; exactly one row exists per code.
type LicenseRow struct {
	ActivationCode string     `json:"activation_code"`
	Used           bool       `json:"used"`
	Motherboard    string     `json:"motherboard"`
	CPU            string     `json:"cpu"`
	MAC            string     `json:"mac"`
	Drive          string     `json:"drive"`
	FirstUsedAt    *time.Time `json:"first_used_at,omitempty"`
	LastCheckinAt  *time.Time `json:"last_checkin_at,omitempty"`
	IssuedTo       string     `json:"issued_to,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// Hardware returns the four bound components of the remote row.
func (r *LicenseRow) Hardware() HardwareInfo {
	return HardwareInfo{
		Motherboard: r.Motherboard,
		CPU:         r.CPU,
		MAC:         r.MAC,
		Drive:       r.Drive,
	}
}
