package ecc

import "strings"

// #region scheme-id

// SchemeID identifies an FEC scheme. The string values are the ones used in
// requests and persisted telemetry.
type SchemeID string

const (
	SchemeReedSolomon SchemeID = "reed_solomon"
	SchemeHamming     SchemeID = "hamming"
	SchemeCRC         SchemeID = "crc"
	SchemeNone        SchemeID = "none"
)

// Schemes lists every scheme that applies redundancy, weakest first.
var Schemes = []SchemeID{SchemeCRC, SchemeHamming, SchemeReedSolomon}

// #endregion scheme-id

// #region parse

// ParseScheme maps a request string to a SchemeID. Unknown values map to
// SchemeNone with ok=false so callers can log the fallback.
func ParseScheme(s string) (SchemeID, bool) {
	switch SchemeID(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeReedSolomon:
		return SchemeReedSolomon, true
	case SchemeHamming:
		return SchemeHamming, true
	case SchemeCRC:
		return SchemeCRC, true
	case SchemeNone:
		return SchemeNone, true
	}
	return SchemeNone, false
}

// #endregion parse

// #region strength

// Strength ranks schemes for escalation: CRC=1 < Hamming=2 < ReedSolomon=3.
// SchemeNone and unknown values rank 0.
func (s SchemeID) Strength() int {
	switch s {
	case SchemeCRC:
		return 1
	case SchemeHamming:
		return 2
	case SchemeReedSolomon:
		return 3
	}
	return 0
}

// Recognized reports whether s is one of the redundancy-carrying schemes.
func (s SchemeID) Recognized() bool {
	return s.Strength() > 0
}

// Escalate returns the next stronger scheme. ReedSolomon stays ReedSolomon and
// anything unrecognized escalates to ReedSolomon.
func (s SchemeID) Escalate() SchemeID {
	switch s {
	case SchemeCRC:
		return SchemeHamming
	case SchemeHamming:
		return SchemeReedSolomon
	}
	return SchemeReedSolomon
}

// #endregion strength
