package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"strings"
	"unicode/utf8"
	"unsafe"
)

// errInvalidUTF8 marks a byte buffer that crossed the boundary but does not
// decode as text.
var errInvalidUTF8 = errors.New("byte buffer is not valid UTF-8")

// nulSubstitute is handed out instead of failing when an outgoing string
// cannot be represented as a null-terminated buffer. The outgoing conversion
// is total: it never fails, at the cost of mangling pathological inputs.
const nulSubstitute = "error: string contains an embedded NUL byte"

// decodeCString converts an incoming null-terminated buffer to a Go string.
// A nil pointer means "absent" (present == false), which is distinct from a
// present buffer that fails to decode. Callers rely on that distinction to
// pass "no override" without a sentinel value.
func decodeCString(p unsafe.Pointer) (s string, present bool, err error) {
	if p == nil {
		return "", false, nil
	}
	s = C.GoString((*C.char)(p))
	if !utf8.ValidString(s) {
		return "", true, errInvalidUTF8
	}
	return s, true, nil
}

// allocCString copies a Go string into a C-heap null-terminated buffer.
// Ownership transfers to the caller, who must release it through
// freeCString exactly once.
func allocCString(s string) unsafe.Pointer {
	if strings.ContainsRune(s, 0) {
		s = nulSubstitute
	}
	return unsafe.Pointer(C.CString(s))
}

// allocCBytes copies raw bytes into a C-heap buffer with a trailing NUL.
// It exists so tests can construct incoming buffers that are not valid text.
func allocCBytes(b []byte) unsafe.Pointer {
	return C.CBytes(append(append([]byte(nil), b...), 0))
}

// freeCString reclaims a buffer previously produced by allocCString or
// allocCBytes. Nil is a safe no-op. Passing any other pointer, or the same
// pointer twice, is undefined behavior by contract.
func freeCString(p unsafe.Pointer) {
	if p == nil {
		return
	}
	C.free(p)
}
