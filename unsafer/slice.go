package unsafer

import (
	"unsafe"
)

// SliceToBytes interprets an arbitrary input slice as a byte slice.
//
// Note that the returned slice points to the same underlying data in memory. It
// does not make a copy.
func SliceToBytes[T any](input []T) []byte {
	if len(input) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(input[0])) * len(input)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(input))), size)
}

// StructToBytes returns a byte view of the memory occupied by *s. It does not
// make a copy.
func StructToBytes[T any](s *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s)), unsafe.Sizeof(*s))
}

// SliceBytesToUint32 copies data into a newly allocated []uint32. When the
// length of data is not a multiple of four the last word is zero padded.
func SliceBytesToUint32(data []byte) []uint32 {
	buf := make([]uint32, (len(data)+3)/4)
	if len(data) > 0 {
		copy(SliceToBytes(buf), data)
	}
	return buf
}
