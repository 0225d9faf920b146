package hashmap

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to a 64-bit hash code.
type Hasher[K comparable] func(key K) uint64

// DefaultHash hashes the key's canonical bytes with xxhash. It is stable
// across processes, so bucket order only depends on the key set. Struct and
// array keys are hashed field by field, so keys equal under == always hash
// alike.
func DefaultHash[K comparable](key K) uint64 {
	v := reflect.ValueOf(key)
	if !v.IsValid() {
		return 0
	}
	if v.Kind() == reflect.String {
		return xxhash.Sum64String(v.String())
	}
	d := xxhash.New()
	writeValue(d, v)
	return d.Sum64()
}

func writeValue(d *xxhash.Digest, v reflect.Value) {
	var buf [8]byte
	switch v.Kind() {
	case reflect.String:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Len()))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(v.String())
		return
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		binary.LittleEndian.PutUint64(buf[:], v.Uint())
	case reflect.Float32, reflect.Float64:
		binary.LittleEndian.PutUint64(buf[:], floatBits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		binary.LittleEndian.PutUint64(buf[:], floatBits(real(c)))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], floatBits(imag(c)))
	case reflect.Bool:
		if v.Bool() {
			buf[0] = 1
		}
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Pointer()))
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			writeValue(d, v.Field(i))
		}
		return
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			writeValue(d, v.Index(i))
		}
		return
	case reflect.Interface:
		if v.IsNil() {
			_, _ = d.Write(buf[:1])
			return
		}
		_, _ = d.WriteString(v.Elem().Type().String())
		writeValue(d, v.Elem())
		return
	}
	_, _ = d.Write(buf[:])
}

// floatBits maps -0 to +0, which compare equal.
func floatBits(f float64) uint64 {
	if f == 0 {
		f = 0
	}
	return math.Float64bits(f)
}
