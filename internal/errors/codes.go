// Package errors provides the closed diagnostic registry and the
// CompileError type every user-facing component in the toolchain must use
// to report a rejection. No user-facing package may construct a raw
// runtime error for something the user did "wrong" — only this package may
// do that, and only for its own internal "unknown code" assertions.
package errors

import "sort"

// Domain groups related diagnostic codes the way the registry's six
// domains are described in the data model: entry-and-expressions,
// control-flow, functions-imports-and-annotations, classes-and-methods,
// types-and-traits, and the kernel dialect.
type Domain string

const (
	DomainEntryExpr  Domain = "entry-and-expressions"
	DomainControl    Domain = "control-flow"
	DomainFuncImport Domain = "functions-imports-and-annotations"
	DomainClass      Domain = "classes-and-methods"
	DomainTypes      Domain = "types-and-traits"
	DomainKernel     Domain = "kernel-dialect"
	domainOther      Domain = "other"
)

// Code is a stable diagnostic identifier of the form <PREFIX><four digits>.
type Code = string

// Entry-and-expressions domain (EXP####).
const (
	ExpMissingMain          Code = "EXP0001" // no exported zero-arg `main`
	ExpDuplicateMain        Code = "EXP0002" // more than one top-level `main`
	ExpBadMainSignature     Code = "EXP0003" // `main` has params or unsupported return type
	ExpUnsupportedExpr      Code = "EXP0004" // expression form outside the accepted subset
	ExpUndefinedRejected    Code = "EXP0005" // `undefined` literal used
	ExpUnsupportedLiteral   Code = "EXP0006" // literal form outside the accepted subset
	ExpUnsupportedCast      Code = "EXP0007" // `as` cast to an unsupported type
	ExpObjectLiteralShape   Code = "EXP0008" // uncontextual object literal needs explicit field casts
	ExpTemplateLiteralCast  Code = "EXP0009" // numeric interpolation without cast inside a kernel body
	ExpBlockArrowRejected   Code = "EXP0010" // block-bodied arrow closure
	ExpInvalidBorrow        Code = "EXP0011" // argument cannot be borrowed for a ref/mutref parameter
	ExpAnonStructCollision  Code = "EXP0012" // anonymous struct hash collision across distinct shapes
)

// Control-flow domain (CTL####).
const (
	CtlUninitializedLocal    Code = "CTL0001"
	CtlUnsupportedStmt       Code = "CTL0002"
	CtlDuplicateScalarLabel  Code = "CTL0003" // duplicate case label on a scalar switch
	CtlUnionSwitchDefault    Code = "CTL0004" // `default` arm on a union-discriminant switch
	CtlUnionSwitchNonLiteral Code = "CTL0005" // non string-literal case on a union switch
	CtlUnionSwitchFallthru   Code = "CTL0006" // empty-case fallthrough on a union switch
	CtlUnionSwitchDuplicate  Code = "CTL0007" // duplicate union switch case
	CtlForVarRejected        Code = "CTL0008" // `for (var ...)` loop form
	CtlForOfRejected         Code = "CTL0009" // `for-of` loop form
	CtlTopLevelNonConst      Code = "CTL0010" // non-const statement at top level
	CtlUnionSwitchIncomplete Code = "CTL0011" // union switch missing a declared variant
)

// Functions-imports-and-annotations domain (FNI####).
const (
	FniUnnamedFunction       Code = "FNI0001"
	FniMissingBody           Code = "FNI0002"
	FniDestructuredParam     Code = "FNI0003"
	FniMissingParamType      Code = "FNI0004"
	FniOptionalParam         Code = "FNI0005"
	FniGenericFunctionV0     Code = "FNI0006"
	FniDuplicateHelperName   Code = "FNI0007"
	FniUnsupportedTopLevel   Code = "FNI0008"
	FniImportRelativeExt     Code = "FNI0009" // relative import does not resolve to the source extension
	FniImportNamespace       Code = "FNI0010" // `import * as` rejected
	FniImportDefault         Code = "FNI0011" // default import rejected
	FniImportSideEffectOnly  Code = "FNI0012" // side-effect-only import rejected
	FniImportMissingMapping  Code = "FNI0013" // specifier absent from the bindings manifest
	FniImportMissingManifest Code = "FNI0014" // package root has no bindings manifest
	FniImportUnresolvedPkg   Code = "FNI0015" // no package root found for a non-relative import
	FniImportSelfEntry       Code = "FNI0016" // relative import resolves to the entry module
	FniBarrelReexport        Code = "FNI0017" // re-export statement rejected
	FniModuleIdentCollision  Code = "FNI0018" // two files normalize to the same module identifier
	FniManifestFeatureShape  Code = "FNI0019" // manifest `features` is present but not an array of strings
	FniManifestVersionPath   Code = "FNI0020" // manifest has both/neither of `version`/`path`
)

// Classes-and-methods domain (CLS####).
const (
	ClsAnonymousClass     Code = "CLS0001"
	ClsMissingFieldType   Code = "CLS0002"
	ClsCtorOptionalParam  Code = "CLS0003"
	ClsStaticMethodV0     Code = "CLS0004"
	ClsBadThisTyping      Code = "CLS0005"
	ClsOptionalMethodParm Code = "CLS0006"
	ClsUnknownInterface   Code = "CLS0007" // `implements` names an undeclared interface
)

// Types-and-traits domain (TYP####).
const (
	TypUnsupportedRef       Code = "TYP0001"
	TypMutArgCount          Code = "TYP0002"
	TypOptionArgCount       Code = "TYP0003"
	TypResultArgCount       Code = "TYP0004"
	TypVecArgCount          Code = "TYP0005"
	TypHashMapArgCount      Code = "TYP0006"
	TypSliceArgCount        Code = "TYP0007"
	TypArrayNArgCount       Code = "TYP0008" // ArrayN<T,N> arg count or N not a non-negative int literal
	TypLifetimeNotString    Code = "TYP0009"
	TypIntersectionRejected Code = "TYP0010"
	TypConditionalRejected  Code = "TYP0011"
	TypMappedRejected       Code = "TYP0012"
	TypInferRejected        Code = "TYP0013"
	TypTraitOptionalMember  Code = "TYP0014"
	TypTraitOptionalParam   Code = "TYP0015"
	TypTraitGenericDefault  Code = "TYP0016"
	TypUnresolvedConstraint Code = "TYP0017" // generic bound does not resolve to a declared interface
	TypDuplicateUnionKind   Code = "TYP0018"
)

// Kernel-dialect domain (KRN####).
const (
	KrnMustBeConst        Code = "KRN0001"
	KrnMustBeTopLevel     Code = "KRN0002"
	KrnDuplicateName      Code = "KRN0003"
	KrnArgCount           Code = "KRN0004"
	KrnSpecShape          Code = "KRN0005"
	KrnBadNameIdent       Code = "KRN0006"
	KrnFnShape            Code = "KRN0007"
	KrnUnsupportedParam   Code = "KRN0008"
	KrnUnsupportedExpr    Code = "KRN0009"
	KrnUnsupportedCall    Code = "KRN0010"
	KrnUnsupportedStmt    Code = "KRN0011"
	KrnUnsupportedOperator Code = "KRN0012"
	KrnNumericNeedsCast   Code = "KRN0013"
	KrnNonScalarCast      Code = "KRN0014"
	KrnPointerCast        Code = "KRN0015"
	KrnAtomicAddSignature Code = "KRN0016"
	KrnExpfSignature      Code = "KRN0017"
	KrnAddrSignature      Code = "KRN0018"
	KrnSyncthreadsArgs    Code = "KRN0019"
	KrnSharedArraySig     Code = "KRN0020"
	KrnForLoopShape       Code = "KRN0021"
	KrnHostUseAsValue     Code = "KRN0022" // kernel symbol used as an ordinary host value
	KrnLaunchShape        Code = "KRN0023" // launch() call site does not match the launch grammar
	KrnIntrinsicOnHost    Code = "KRN0024" // a kernel-only intrinsic called from host code
)

// registry maps every code above to its domain. It is the single source of
// truth `Contains` and `DomainOf` read from; it is also what the closure
// test in §8 diffs against the codes actually referenced by the rest of
// internal/.
var registry = map[Code]Domain{
	ExpMissingMain: DomainEntryExpr, ExpDuplicateMain: DomainEntryExpr,
	ExpBadMainSignature: DomainEntryExpr, ExpUnsupportedExpr: DomainEntryExpr,
	ExpUndefinedRejected: DomainEntryExpr, ExpUnsupportedLiteral: DomainEntryExpr,
	ExpUnsupportedCast: DomainEntryExpr, ExpObjectLiteralShape: DomainEntryExpr,
	ExpTemplateLiteralCast: DomainEntryExpr, ExpBlockArrowRejected: DomainEntryExpr,
	ExpInvalidBorrow: DomainEntryExpr, ExpAnonStructCollision: DomainEntryExpr,

	CtlUninitializedLocal: DomainControl, CtlUnsupportedStmt: DomainControl,
	CtlDuplicateScalarLabel: DomainControl, CtlUnionSwitchDefault: DomainControl,
	CtlUnionSwitchNonLiteral: DomainControl, CtlUnionSwitchFallthru: DomainControl,
	CtlUnionSwitchDuplicate: DomainControl, CtlForVarRejected: DomainControl,
	CtlForOfRejected: DomainControl, CtlTopLevelNonConst: DomainControl,
	CtlUnionSwitchIncomplete: DomainControl,

	FniUnnamedFunction: DomainFuncImport, FniMissingBody: DomainFuncImport,
	FniDestructuredParam: DomainFuncImport, FniMissingParamType: DomainFuncImport,
	FniOptionalParam: DomainFuncImport, FniGenericFunctionV0: DomainFuncImport,
	FniDuplicateHelperName: DomainFuncImport, FniUnsupportedTopLevel: DomainFuncImport,
	FniImportRelativeExt: DomainFuncImport, FniImportNamespace: DomainFuncImport,
	FniImportDefault: DomainFuncImport, FniImportSideEffectOnly: DomainFuncImport,
	FniImportMissingMapping: DomainFuncImport, FniImportMissingManifest: DomainFuncImport,
	FniImportUnresolvedPkg: DomainFuncImport, FniImportSelfEntry: DomainFuncImport,
	FniBarrelReexport: DomainFuncImport, FniModuleIdentCollision: DomainFuncImport,
	FniManifestFeatureShape: DomainFuncImport, FniManifestVersionPath: DomainFuncImport,

	ClsAnonymousClass: DomainClass, ClsMissingFieldType: DomainClass,
	ClsCtorOptionalParam: DomainClass, ClsStaticMethodV0: DomainClass,
	ClsBadThisTyping: DomainClass, ClsOptionalMethodParm: DomainClass,
	ClsUnknownInterface: DomainClass,

	TypUnsupportedRef: DomainTypes, TypMutArgCount: DomainTypes,
	TypOptionArgCount: DomainTypes, TypResultArgCount: DomainTypes,
	TypVecArgCount: DomainTypes, TypHashMapArgCount: DomainTypes,
	TypSliceArgCount: DomainTypes, TypArrayNArgCount: DomainTypes,
	TypLifetimeNotString: DomainTypes, TypIntersectionRejected: DomainTypes,
	TypConditionalRejected: DomainTypes, TypMappedRejected: DomainTypes,
	TypInferRejected: DomainTypes, TypTraitOptionalMember: DomainTypes,
	TypTraitOptionalParam: DomainTypes, TypTraitGenericDefault: DomainTypes,
	TypUnresolvedConstraint: DomainTypes, TypDuplicateUnionKind: DomainTypes,

	KrnMustBeConst: DomainKernel, KrnMustBeTopLevel: DomainKernel,
	KrnDuplicateName: DomainKernel, KrnArgCount: DomainKernel,
	KrnSpecShape: DomainKernel, KrnBadNameIdent: DomainKernel,
	KrnFnShape: DomainKernel, KrnUnsupportedParam: DomainKernel,
	KrnUnsupportedExpr: DomainKernel, KrnUnsupportedCall: DomainKernel,
	KrnUnsupportedStmt: DomainKernel, KrnUnsupportedOperator: DomainKernel,
	KrnNumericNeedsCast: DomainKernel, KrnNonScalarCast: DomainKernel,
	KrnPointerCast: DomainKernel, KrnAtomicAddSignature: DomainKernel,
	KrnExpfSignature: DomainKernel, KrnAddrSignature: DomainKernel,
	KrnSyncthreadsArgs: DomainKernel, KrnSharedArraySig: DomainKernel,
	KrnForLoopShape: DomainKernel, KrnHostUseAsValue: DomainKernel,
	KrnLaunchShape: DomainKernel, KrnIntrinsicOnHost: DomainKernel,
}

// Contains reports whether code is a registered diagnostic.
func Contains(code Code) bool {
	_, ok := registry[code]
	return ok
}

// DomainOf returns the domain a registered code belongs to. Calling it with
// an unregistered code is a bug in the caller, not a user-facing error: it
// panics, since only this package is allowed to construct a raw error for
// "the compiler itself is broken" conditions.
func DomainOf(code Code) Domain {
	d, ok := registry[code]
	if !ok {
		panic("errors: unknown diagnostic code " + code)
	}
	return d
}

// AllCodes returns every registered code, sorted, for use by the registry
// closure test and by tooling that enumerates the catalog.
func AllCodes() []Code {
	codes := make([]Code, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
