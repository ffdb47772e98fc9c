package binlog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/filecabinet/filecabinet/internal/record"
)

// Slot layout, little-endian:
//
//	offset size field
//	0      2    status flags
//	2      4    id (int32)
//	6      60   first name, NUL padded
//	66     60   last name, NUL padded
//	126    12   date of birth: year, month, day (int32 each)
//	138    1    gender
//	139    2    height (int16)
//	141    16   weight: 96-bit coefficient lo, mid, hi + flags (scale bits 16-23, sign bit 31)
const (
	SlotSize = 157
	NameSize = record.MaxNameBytes

	offStatus = 0
	offID     = 2
	offFirst  = 6
	offLast   = offFirst + NameSize
	offYear   = offLast + NameSize
	offMonth  = offYear + 4
	offDay    = offMonth + 4
	offGender = offDay + 4
	offHeight = offGender + 1
	offWeight = offHeight + 2
)

// StatusDeleted is the tombstone bit of the status word.
const StatusDeleted uint16 = 1 << 2

const (
	maxScale      = 28
	weightSignBit = 1 << 31
)

var (
	// ErrCorruptedSlot indicates slot bytes that do not form a record.
	ErrCorruptedSlot = errors.New("binlog: corrupted slot")
	// ErrFieldOverflow indicates a field value that does not fit its slot width.
	ErrFieldOverflow = errors.New("binlog: field does not fit slot")
)

// Slot is one fixed-width region of the log.
type Slot struct {
	Status uint16
	Record record.Record
}

// Deleted reports whether the tombstone bit is set.
func (s Slot) Deleted() bool {
	return s.Status&StatusDeleted != 0
}

// Encode returns the SlotSize bytes for s.
func Encode(s Slot) ([]byte, error) {
	buf := make([]byte, SlotSize)
	if err := encodeInto(buf, s); err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeInto(buf []byte, s Slot) error {
	r := s.Record
	if r.ID < math.MinInt32 || r.ID > math.MaxInt32 {
		return fmt.Errorf("%w: id %d", ErrFieldOverflow, r.ID)
	}
	if r.Gender < 0 || r.Gender > 0x7f {
		return fmt.Errorf("%w: gender %q is not ASCII", ErrFieldOverflow, r.Gender)
	}

	binary.LittleEndian.PutUint16(buf[offStatus:], s.Status)
	binary.LittleEndian.PutUint32(buf[offID:], uint32(int32(r.ID)))
	if err := putName(buf[offFirst:offFirst+NameSize], r.FirstName); err != nil {
		return fmt.Errorf("first name: %w", err)
	}
	if err := putName(buf[offLast:offLast+NameSize], r.LastName); err != nil {
		return fmt.Errorf("last name: %w", err)
	}
	y, m, d := r.DateOfBirth.Date()
	binary.LittleEndian.PutUint32(buf[offYear:], uint32(int32(y)))
	binary.LittleEndian.PutUint32(buf[offMonth:], uint32(int32(m)))
	binary.LittleEndian.PutUint32(buf[offDay:], uint32(int32(d)))
	buf[offGender] = byte(r.Gender)
	binary.LittleEndian.PutUint16(buf[offHeight:], uint16(r.Height))
	if err := putWeight(buf[offWeight:offWeight+16], r.Weight); err != nil {
		return fmt.Errorf("weight: %w", err)
	}
	return nil
}

// Decode parses SlotSize bytes into a slot.
func Decode(buf []byte) (Slot, error) {
	if len(buf) < SlotSize {
		return Slot{}, fmt.Errorf("%w: %d bytes", ErrCorruptedSlot, len(buf))
	}

	y := int32(binary.LittleEndian.Uint32(buf[offYear:]))
	m := int32(binary.LittleEndian.Uint32(buf[offMonth:]))
	d := int32(binary.LittleEndian.Uint32(buf[offDay:]))
	if m < 1 || m > 12 || d < 1 || d > 31 || record.Date(int(y), time.Month(m), int(d)).Day() != int(d) {
		return Slot{}, fmt.Errorf("%w: date %d-%d-%d", ErrCorruptedSlot, y, m, d)
	}
	weight, err := getWeight(buf[offWeight : offWeight+16])
	if err != nil {
		return Slot{}, err
	}

	return Slot{
		Status: binary.LittleEndian.Uint16(buf[offStatus:]),
		Record: record.Record{
			ID:          int(int32(binary.LittleEndian.Uint32(buf[offID:]))),
			FirstName:   getName(buf[offFirst : offFirst+NameSize]),
			LastName:    getName(buf[offLast : offLast+NameSize]),
			DateOfBirth: record.Date(int(y), time.Month(m), int(d)),
			Gender:      rune(buf[offGender]),
			Height:      int16(binary.LittleEndian.Uint16(buf[offHeight:])),
			Weight:      weight,
		},
	}, nil
}

// Names longer than the field are rejected, never truncated.
func putName(dst []byte, name string) error {
	if len(name) > len(dst) {
		return fmt.Errorf("%w: %d bytes, max %d", ErrFieldOverflow, len(name), len(dst))
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: contains NUL", ErrFieldOverflow)
	}
	n := copy(dst, name)
	clear(dst[n:])
	return nil
}

func getName(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
}

func putWeight(dst []byte, w decimal.Decimal) error {
	coef := w.Coefficient()
	exp := w.Exponent()
	if exp > 0 {
		coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		exp = 0
	}
	scale := -int64(exp)
	if scale > maxScale {
		return fmt.Errorf("%w: scale %d exceeds %d", ErrFieldOverflow, scale, maxScale)
	}

	var flags uint32
	if coef.Sign() < 0 {
		flags |= weightSignBit
		coef.Neg(coef)
	}
	if coef.BitLen() > 96 {
		return fmt.Errorf("%w: %s needs more than 96 bits", ErrFieldOverflow, w)
	}
	flags |= uint32(scale) << 16

	var raw [12]byte
	coef.FillBytes(raw[:])
	binary.LittleEndian.PutUint32(dst[0:], binary.BigEndian.Uint32(raw[8:12]))
	binary.LittleEndian.PutUint32(dst[4:], binary.BigEndian.Uint32(raw[4:8]))
	binary.LittleEndian.PutUint32(dst[8:], binary.BigEndian.Uint32(raw[0:4]))
	binary.LittleEndian.PutUint32(dst[12:], flags)
	return nil
}

func getWeight(src []byte) (decimal.Decimal, error) {
	flags := binary.LittleEndian.Uint32(src[12:])
	scale := (flags >> 16) & 0xff
	if flags&^(weightSignBit|0xff<<16) != 0 || scale > maxScale {
		return decimal.Decimal{}, fmt.Errorf("%w: weight flags %#x", ErrCorruptedSlot, flags)
	}

	var raw [12]byte
	binary.BigEndian.PutUint32(raw[0:4], binary.LittleEndian.Uint32(src[8:]))
	binary.BigEndian.PutUint32(raw[4:8], binary.LittleEndian.Uint32(src[4:]))
	binary.BigEndian.PutUint32(raw[8:12], binary.LittleEndian.Uint32(src[0:]))
	coef := new(big.Int).SetBytes(raw[:])
	if flags&weightSignBit != 0 {
		coef.Neg(coef)
	}
	return decimal.NewFromBigInt(coef, -int32(scale)), nil
}
