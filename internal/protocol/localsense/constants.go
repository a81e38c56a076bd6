// Package localsense implements the LocalSense UWB engine's push protocol:
// auth packet construction, CRC-16/MODBUS checksums, location frame decoding
// and the websocket client that streams decoded position batches into the
// pipeline.
package localsense

// Protocol constants
const (
	frameHeader  = 0xCC5F
	frameTrailer = 0xAABB

	// Frame types
	authFrame     = 0x27
	relativeFrame = 0x81 // coordinates relative to the map origin, cm
	lonLatFrame   = 0xB4 // WGS84 degrees scaled by 1e7
	globalFrame   = 0xB5 // global plane coordinates, cm

	tagRecordSize   = 23
	frameFooterSize = 4

	// Salt mixed into the double-MD5 password hash. Fixed by the vendor
	// firmware; not a secret.
	authSalt = "abcdefghijklmnopqrstuvwxyz20191107salt"
)

// Subprotocol identifiers negotiated during the websocket handshake.
const (
	// PushProtocol selects the binary location push stream.
	PushProtocol = "localSensePush-protocol"
	// ControlProtocol selects the JSON configuration channel used for
	// vibrate/buzzer control.
	ControlProtocol = "localSense-Json"
)
