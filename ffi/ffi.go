// Command ffi builds the C-callable shared library around the embedded
// PostgreSQL engine (go build -buildmode=c-shared). Every exported symbol
// keeps the pg_embedded_ prefix of the original library.
//
// Boundary contract: handles cross the edge as opaque uintptr_t tokens
// (0 is null); every char* this side returns is caller-owned and must be
// released through pg_embedded_free_string exactly once. See pgembed.h.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

// Result of pg_embedded_create_and_start. Exactly one of handle and
// error_msg is set on any return: success yields a non-zero handle and a
// NULL error_msg, failure yields a zero handle and a caller-owned error
// string.
typedef struct pg_embedded_start_result {
	uintptr_t handle;
	char*     error_msg;
} pg_embedded_start_result;
*/
import "C"

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime/cgo"
	"unsafe"

	"github.com/chirino/pgembed/internal/config"
	"github.com/chirino/pgembed/internal/engine"
)

// debugLog is the ambient diagnostic sink. Silent unless PGEMBED_DEBUG is
// set; it is observability only, never part of the functional contract.
var debugLog = newDebugLogger(os.Getenv("PGEMBED_DEBUG"))

func newDebugLogger(enabled string) *log.Logger {
	if enabled != "" {
		return log.New(os.Stderr, "pgembed: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// pg_embedded_create_and_start resolves settings from the given overrides,
// materializes the engine's runtime prerequisites, launches the subprocess
// and blocks until it is ready or the fixed timeout elapses. Null or empty
// arguments keep defaults; runtime_dir is currently reserved. On failure no
// process or handle outlives the call.
//
//export pg_embedded_create_and_start
func pg_embedded_create_and_start(dataDir, runtimeDir *C.char, port C.uint16_t, password *C.char) C.pg_embedded_start_result {
	h, errMsg := createAndStart(
		unsafe.Pointer(dataDir),
		unsafe.Pointer(runtimeDir),
		uint16(port),
		unsafe.Pointer(password),
	)

	var res C.pg_embedded_start_result
	if errMsg != "" {
		res.error_msg = (*C.char)(allocCString(errMsg))
		return res
	}
	res.handle = C.uintptr_t(h)
	return res
}

// pg_embedded_stop gracefully shuts the engine down and releases every
// resource tied to the handle. The handle is invalid the instant this
// returns, regardless of the reported outcome. A zero handle is a no-op
// returning false.
//
//export pg_embedded_stop
func pg_embedded_stop(handle C.uintptr_t) C.bool {
	return C.bool(stop(uintptr(handle)))
}

// pg_embedded_get_connection_string returns a caller-owned
// postgresql:// URI for the given database, or NULL for a zero handle.
// A null, empty or undecodable database name falls back to the
// maintenance database.
//
//export pg_embedded_get_connection_string
func pg_embedded_get_connection_string(handle C.uintptr_t, databaseName *C.char) *C.char {
	return (*C.char)(connectionString(uintptr(handle), unsafe.Pointer(databaseName)))
}

// pg_embedded_create_database creates a logical database. False on a zero
// handle, an unusable name, or any engine failure.
//
//export pg_embedded_create_database
func pg_embedded_create_database(handle C.uintptr_t, name *C.char) C.bool {
	return C.bool(createDatabase(uintptr(handle), unsafe.Pointer(name)))
}

// pg_embedded_drop_database drops a logical database if it exists. False on
// a zero handle, an unusable name, or any engine failure.
//
//export pg_embedded_drop_database
func pg_embedded_drop_database(handle C.uintptr_t, name *C.char) C.bool {
	return C.bool(dropDatabase(uintptr(handle), unsafe.Pointer(name)))
}

// pg_embedded_database_exists reports whether a logical database exists.
// False on a zero handle, an unusable name, or any engine failure; "does not
// exist" and "could not ask" are deliberately not distinguished here.
//
//export pg_embedded_database_exists
func pg_embedded_database_exists(handle C.uintptr_t, name *C.char) C.bool {
	return C.bool(databaseExists(uintptr(handle), unsafe.Pointer(name)))
}

// pg_embedded_free_string releases a string previously returned by this
// library. NULL is a safe no-op.
//
//export pg_embedded_free_string
func pg_embedded_free_string(s *C.char) {
	freeCString(unsafe.Pointer(s))
}

// createAndStart is the boundary-free core of pg_embedded_create_and_start.
// It returns either a non-zero handle or a non-empty error message, never
// both and never neither.
func createAndStart(dataDir, runtimeDir unsafe.Pointer, port uint16, password unsafe.Pointer) (uintptr, string) {
	debugLog.Printf("create_and_start called (port=%d)", port)

	o := config.Overrides{Port: port}

	if s, present, err := decodeCString(dataDir); err != nil {
		return 0, fmt.Sprintf("failed to decode data_dir: %v", err)
	} else if present {
		o.DataDir = &s
	}

	if s, present, err := decodeCString(password); err != nil {
		return 0, fmt.Sprintf("failed to decode password: %v", err)
	} else if present {
		o.Password = &s
	}

	// runtime_dir is reserved: applied when usable, never fatal.
	if s, present, err := decodeCString(runtimeDir); err != nil {
		debugLog.Printf("ignoring undecodable runtime_dir: %v", err)
	} else if present {
		o.RuntimeDir = &s
	}

	settings, err := config.Resolve(o)
	if err != nil {
		return 0, fmt.Sprintf("failed to resolve settings: %v", err)
	}

	eng := engine.New(settings, engine.Options{Logger: debugLog})
	if err := eng.Setup(); err != nil {
		return 0, err.Error()
	}
	// A failed start tears the subprocess down internally; nothing to
	// reclaim here beyond never minting the handle.
	if err := eng.Start(); err != nil {
		return 0, err.Error()
	}

	h := cgo.NewHandle(eng)
	debugLog.Printf("engine started, handle %d", h)
	return uintptr(h), ""
}

// resolveEngine maps a boundary handle back to its engine. Zero yields nil;
// a non-zero value that was never minted by this library, or was already
// consumed by stop, is undefined behavior by contract.
func resolveEngine(handle uintptr) *engine.Engine {
	if handle == 0 {
		return nil
	}
	return cgo.Handle(handle).Value().(*engine.Engine)
}

func stop(handle uintptr) bool {
	eng := resolveEngine(handle)
	if eng == nil {
		return false
	}
	// Consume the handle before stopping: it is invalid from here on no
	// matter what the shutdown reports.
	cgo.Handle(handle).Delete()

	err := eng.Stop()
	if err != nil {
		debugLog.Printf("stop: %v", err)
	}
	return err == nil
}

func connectionString(handle uintptr, databaseName unsafe.Pointer) unsafe.Pointer {
	eng := resolveEngine(handle)
	if eng == nil {
		return nil
	}

	// Absent, empty or undecodable names fall back to the maintenance
	// database.
	name, _, err := decodeCString(databaseName)
	if err != nil {
		name = ""
	}

	dsn, err := eng.ConnectionString(name)
	if err != nil {
		debugLog.Printf("connection_string: %v", err)
		return nil
	}
	return allocCString(dsn)
}

// decodeName validates an administrative database name argument: it must be
// present, decodable and non-empty.
func decodeName(name unsafe.Pointer) (string, bool) {
	s, present, err := decodeCString(name)
	if !present || err != nil || s == "" {
		return "", false
	}
	return s, true
}

func createDatabase(handle uintptr, name unsafe.Pointer) bool {
	eng := resolveEngine(handle)
	if eng == nil {
		return false
	}
	n, ok := decodeName(name)
	if !ok {
		return false
	}
	if err := eng.CreateDatabase(n); err != nil {
		debugLog.Printf("create_database: %v", err)
		return false
	}
	return true
}

func dropDatabase(handle uintptr, name unsafe.Pointer) bool {
	eng := resolveEngine(handle)
	if eng == nil {
		return false
	}
	n, ok := decodeName(name)
	if !ok {
		return false
	}
	if err := eng.DropDatabase(n); err != nil {
		debugLog.Printf("drop_database: %v", err)
		return false
	}
	return true
}

func databaseExists(handle uintptr, name unsafe.Pointer) bool {
	eng := resolveEngine(handle)
	if eng == nil {
		return false
	}
	n, ok := decodeName(name)
	if !ok {
		return false
	}
	exists, err := eng.DatabaseExists(n)
	if err != nil {
		debugLog.Printf("database_exists: %v", err)
		return false
	}
	return exists
}

// main is required by buildmode=c-shared and never runs.
func main() {}
