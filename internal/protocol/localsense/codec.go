package localsense

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"

	"tagsense/internal/core/model"
)

// crc16Modbus computes CRC-16/MODBUS over data: poly 0xA001 (reflected),
// init 0xFFFF, LSB-first.
func crc16Modbus(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// BuildAuthPacket assembles the 0x27 authentication frame. The password is
// double-hashed: hex(MD5(password)) concatenated with the vendor salt and
// hashed again. The CRC covers everything between the header and the CRC
// field and is appended big-endian.
func BuildAuthPacket(username, password string) []byte {
	pwdHash := md5.Sum([]byte(password))
	saltedHash := md5.Sum([]byte(hex.EncodeToString(pwdHash[:]) + authSalt))
	saltedHex := hex.EncodeToString(saltedHash[:])

	body := make([]byte, 0, 1+4+len(username)+4+len(saltedHex))
	body = append(body, authFrame)
	body = binary.BigEndian.AppendUint32(body, uint32(len(username)))
	body = append(body, username...)
	body = binary.BigEndian.AppendUint32(body, uint32(len(saltedHex)))
	body = append(body, saltedHex...)

	packet := make([]byte, 0, 2+len(body)+4)
	packet = binary.BigEndian.AppendUint16(packet, frameHeader)
	packet = append(packet, body...)
	packet = binary.BigEndian.AppendUint16(packet, crc16Modbus(body))
	packet = binary.BigEndian.AppendUint16(packet, frameTrailer)
	return packet
}

// DecodeLocationFrame parses a location push frame (types 0x81, 0xB4, 0xB5)
// into tag position records. Malformed input yields an empty slice rather
// than an error: one bad frame must never interrupt the stream, so the
// caller simply moves on to the next read. A frame whose trailing records
// would overlap the footer yields the records parsed up to that point.
func DecodeLocationFrame(data []byte) []model.TagPosition {
	if len(data) < 5 {
		return nil
	}
	if binary.BigEndian.Uint16(data[0:2]) != frameHeader {
		return nil
	}

	var kind model.CoordinateKind
	switch data[2] {
	case relativeFrame:
		kind = model.CoordinateRelative
	case lonLatFrame:
		kind = model.CoordinateLonLat
	case globalFrame:
		kind = model.CoordinateGlobal
	default:
		return nil
	}

	numTags := int(data[3])
	if numTags == 0 {
		return nil
	}
	if len(data) < 4+numTags*tagRecordSize+frameFooterSize {
		return nil
	}

	positions := make([]model.TagPosition, 0, numTags)
	offset := 4
	for i := 0; i < numTags; i++ {
		if offset+tagRecordSize > len(data)-frameFooterSize {
			break
		}
		rec := data[offset : offset+tagRecordSize]
		offset += tagRecordSize
		positions = append(positions, decodeTagRecord(rec, kind))
	}
	return positions
}

// decodeTagRecord parses one 23-byte record. Layout (big-endian):
// tag id u32, x i32, y i32, z i16, map id, battery, sleep/charge nibbles,
// timestamp u32, floor, positioning indication.
func decodeTagRecord(rec []byte, kind model.CoordinateKind) model.TagPosition {
	pos := model.TagPosition{
		TagID:       binary.BigEndian.Uint32(rec[0:4]),
		MapID:       rec[14],
		Battery:     rec[15],
		Sleep:       (rec[16]>>4)&0x0F != 0,
		Charging:    rec[16]&0x0F != 0,
		Timestamp:   binary.BigEndian.Uint32(rec[17:21]),
		Floor:       rec[21],
		Positioning: rec[22],
		Kind:        kind,
	}

	x := int32(binary.BigEndian.Uint32(rec[4:8]))
	y := int32(binary.BigEndian.Uint32(rec[8:12]))
	z := int16(binary.BigEndian.Uint16(rec[12:14]))

	if kind == model.CoordinateLonLat {
		// 1e-7 degree wire units; no meaningful altitude here.
		pos.X = float64(x) / 1e7
		pos.Y = float64(y) / 1e7
	} else {
		// centimeters to meters
		pos.X = float64(x) / 100
		pos.Y = float64(y) / 100
		pos.Z = float64(z) / 100
	}
	return pos
}
