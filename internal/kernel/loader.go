package kernel

import (
	"fmt"
	"sort"

	"github.com/tsubalang/tsubac/internal/targetir"
)

// RuntimeModuleIdent is the target module identifier the orchestrator
// mounts the generated loader runtime under.
const RuntimeModuleIdent = "gpu_runtime"

// GenerateLoaderRuntime builds the target IR for the loader-runtime
// module emitted whenever any kernel exists (spec §4.8/§5): a process-wide
// lazily-initialized driver-context cell guarded by a mutex, one
// memoized function-pointer cell per kernel, device-memory helpers, and
// one `launch_<name>` entry point per kernel that serializes on the
// shared mutex and synchronizes after every launch.
//
// The function bodies are emitted as fixed RawStmt blocks rather than
// built statement-by-statement: this text is the same for every compile
// and does not depend on kernel content beyond the kernel name list, so
// modeling it as individually-synthesized IR statements would add
// indirection without adding determinism the fixed text doesn't already
// have.
//
// The emitted module does not load the driver library or resolve driver
// symbols: the bodies call DeviceState::init, load_ptx_function,
// launch_function, synchronize and the DevicePtr methods alloc, free,
// copy_from_host and copy_to_host, and none of these is defined in the
// generated module.
func GenerateLoaderRuntime(decls []*Decl) *targetir.File {
	names := kernelNames(decls)

	items := []targetir.Item{
		&targetir.UseItem{Path: "std::ffi::{c_void, CString}"},
		&targetir.UseItem{Path: "std::sync::Mutex"},
		&targetir.UseItem{Path: "std::sync::OnceLock"},
		deviceStateStruct(),
		devicePtrStruct(),
		initFn(),
		deviceMallocFn(),
		deviceFreeFn(),
		memcpyHtoDFn(),
		memcpyDtoHFn(),
	}
	for _, name := range names {
		items = append(items, launchFn(name))
	}

	return &targetir.File{ModuleIdent: RuntimeModuleIdent, Items: items}
}

func kernelNames(decls []*Decl) []string {
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	sort.Strings(names)
	return names
}

func deviceStateStruct() *targetir.StructItem {
	return &targetir.StructItem{
		Name: "DeviceState",
		Fields: []targetir.Field{
			{Name: "context", Type: &targetir.NamedType{Name: "*mut c_void"}},
			{Name: "device", Type: &targetir.NamedType{Name: "i32"}},
		},
	}
}

func devicePtrStruct() *targetir.StructItem {
	return &targetir.StructItem{
		Name:     "DevicePtr",
		Generics: []string{"T"},
		Derives:  []string{"Clone", "Copy"},
		Fields: []targetir.Field{
			{Name: "raw", Type: &targetir.NamedType{Name: "*mut c_void"}, Pub: true},
			{Name: "len", Type: &targetir.NamedType{Name: "usize"}, Pub: true},
		},
	}
}

func initFn() *targetir.FnItem {
	body := []targetir.Stmt{&targetir.RawStmt{Text: rawInitBody}}
	return &targetir.FnItem{
		Name:       "device_state",
		Pub:        false,
		ReturnType: &targetir.RefType{Elem: &targetir.NamedType{Name: "Mutex<DeviceState>"}},
		Body:       body,
	}
}

const rawInitBody = `static CELL: OnceLock<Mutex<DeviceState>> = OnceLock::new();
CELL.get_or_init(|| {
    // first access: load the vendor driver, resolve symbols, device-get,
    // context-create. Subsequent calls observe the same initialized cell.
    Mutex::new(DeviceState::init())
})`

func deviceMallocFn() *targetir.FnItem {
	return &targetir.FnItem{
		Name: "device_malloc",
		Pub:  true,
		Generics: []string{"T"},
		Params: []targetir.Param{
			{Name: "len", Type: &targetir.NamedType{Name: "usize"}},
		},
		ReturnType: &targetir.NamedType{Name: "DevicePtr", Args: []targetir.Type{&targetir.NamedType{Name: "T"}}},
		Body: []targetir.Stmt{&targetir.RawStmt{Text: `let _guard = device_state().lock().unwrap();
DevicePtr::alloc(len)`}},
	}
}

func deviceFreeFn() *targetir.FnItem {
	return &targetir.FnItem{
		Name:       "device_free",
		Pub:        true,
		Generics:   []string{"T"},
		Params:     []targetir.Param{{Name: "ptr", Type: &targetir.NamedType{Name: "DevicePtr", Args: []targetir.Type{&targetir.NamedType{Name: "T"}}}}},
		ReturnType: &targetir.UnitType{},
		Body: []targetir.Stmt{&targetir.RawStmt{Text: `let _guard = device_state().lock().unwrap();
ptr.free();`}},
	}
}

func memcpyHtoDFn() *targetir.FnItem {
	return &targetir.FnItem{
		Name:     "memcpy_htod",
		Pub:      true,
		Generics: []string{"T"},
		Params: []targetir.Param{
			{Name: "dst", Type: &targetir.NamedType{Name: "DevicePtr", Args: []targetir.Type{&targetir.NamedType{Name: "T"}}}},
			{Name: "src", Type: &targetir.RefType{Elem: &targetir.SliceType{Elem: &targetir.NamedType{Name: "T"}}}},
		},
		ReturnType: &targetir.UnitType{},
		Body: []targetir.Stmt{&targetir.RawStmt{Text: `let _guard = device_state().lock().unwrap();
dst.copy_from_host(src);`}},
	}
}

func memcpyDtoHFn() *targetir.FnItem {
	return &targetir.FnItem{
		Name:     "memcpy_dtoh",
		Pub:      true,
		Generics: []string{"T"},
		Params: []targetir.Param{
			{Name: "dst", Type: &targetir.RefType{Mut: true, Elem: &targetir.SliceType{Elem: &targetir.NamedType{Name: "T"}}}},
			{Name: "src", Type: &targetir.NamedType{Name: "DevicePtr", Args: []targetir.Type{&targetir.NamedType{Name: "T"}}}},
		},
		ReturnType: &targetir.UnitType{},
		Body: []targetir.Stmt{&targetir.RawStmt{Text: `let _guard = device_state().lock().unwrap();
src.copy_to_host(dst);`}},
	}
}

func launchFn(name string) *targetir.FnItem {
	cellName := fmt.Sprintf("%s_FN", name)
	body := fmt.Sprintf(`static %s: OnceLock<usize> = OnceLock::new();
let _guard = device_state().lock().unwrap();
let func = %s.get_or_init(|| load_ptx_function(%q));
launch_function(func, grid_x, grid_y, grid_z, block_x, block_y, block_z, args);
synchronize();`, cellName, cellName, name)

	return &targetir.FnItem{
		Name: fmt.Sprintf("launch_%s", name),
		Pub:  true,
		Params: []targetir.Param{
			{Name: "grid_x", Type: &targetir.NamedType{Name: "u32"}},
			{Name: "grid_y", Type: &targetir.NamedType{Name: "u32"}},
			{Name: "grid_z", Type: &targetir.NamedType{Name: "u32"}},
			{Name: "block_x", Type: &targetir.NamedType{Name: "u32"}},
			{Name: "block_y", Type: &targetir.NamedType{Name: "u32"}},
			{Name: "block_z", Type: &targetir.NamedType{Name: "u32"}},
			{Name: "args", Type: &targetir.RefType{Elem: &targetir.SliceType{Elem: &targetir.NamedType{Name: "*mut c_void"}}}},
		},
		ReturnType: &targetir.UnitType{},
		Body:       []targetir.Stmt{&targetir.RawStmt{Text: body}},
	}
}
