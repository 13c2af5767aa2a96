package fusion

import (
	"encoding/binary"
	"errors"
)

const tagOrientation = 0x0112

var errNoEXIF = errors.New("no exif orientation")

// jpegOrientation returns the EXIF orientation (1..8) stored in IFD0 of a
// JPEG's APP1 segment.
func jpegOrientation(data []byte) (int, error) {
	start, err := exifTIFFStart(data)
	if err != nil {
		return 0, err
	}
	return tiffOrientation(data[start:])
}

// exifTIFFStart walks the JPEG marker segments up to the start of scan and
// returns the offset of the TIFF header inside an "Exif\0\0" APP1 block.
func exifTIFFStart(data []byte) (int, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, errNoEXIF
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		// standalone markers carry no length
		if marker == 0xFF || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			i++
			continue
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 {
			return 0, errNoEXIF
		}
		if marker == 0xE1 && i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10, nil
		}
		i += 2 + segLen
	}
	return 0, errNoEXIF
}

func tiffOrientation(tiff []byte) (int, error) {
	if len(tiff) < 8 {
		return 0, errors.New("tiff header truncated")
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, errors.New("unknown tiff byte order")
	}
	if order.Uint16(tiff[2:4]) != 0x002A {
		return 0, errors.New("invalid tiff magic")
	}
	ifd := int(order.Uint32(tiff[4:8]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return 0, errors.New("ifd0 out of range")
	}
	n := int(order.Uint16(tiff[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + e*12
		if ent+12 > len(tiff) {
			break
		}
		if order.Uint16(tiff[ent:ent+2]) != tagOrientation {
			continue
		}
		// SHORT, count 1, value left-justified in the offset field
		if order.Uint16(tiff[ent+2:ent+4]) != 3 {
			return 0, errors.New("orientation tag has unexpected type")
		}
		v := int(order.Uint16(tiff[ent+8 : ent+10]))
		if v < 1 || v > 8 {
			return 0, errors.New("orientation out of range")
		}
		return v, nil
	}
	return 0, errNoEXIF
}
