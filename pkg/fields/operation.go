package fields

// Operation is the closed set of mnemonics the decoder recognises.
// Control-transfer mnemonics are split by addressing form (near/far,
// direct/indirect) rather than collapsed to one CALL/JMP/RET constant,
// because the dispatcher needs a distinct table row per encoding and the
// emitter needs to know which surface syntax to print.
type Operation uint16

const (
	opInvalid Operation = iota

	MOV
	PUSH
	POP
	XCHG
	NOP
	IN
	OUT
	XLAT
	LEA
	LDS
	LES
	LAHF
	SAHF
	PUSHF
	POPF

	ADD
	ADC
	SUB
	SBB
	CMP
	INC
	DEC
	NEG
	MUL
	IMUL
	DIV
	IDIV

	AAA
	AAS
	DAA
	DAS
	AAM
	AAD
	CBW
	CWD

	AND
	OR
	XOR
	TEST
	NOT

	ROL
	ROR
	RCL
	RCR
	SHL
	SHR
	SAR

	MOVSB
	MOVSW
	CMPSB
	CMPSW
	SCASB
	SCASW
	LODSB
	LODSW
	STOSB
	STOSW

	JO
	JNO
	JB
	JNB
	JE
	JNE
	JBE
	JNBE
	JS
	JNS
	JP
	JNP
	JL
	JNL
	JLE
	JNLE

	LOOP
	LOOPZ
	LOOPNZ
	JCXZ

	CALL
	CALLF
	CALLRM
	CALLFRM
	JMP
	JMPF
	JMPRM
	JMPFRM
	RET
	RETIMM
	RETF
	RETFIMM

	INT
	INT3
	INTO
	IRET

	CLC
	CMC
	STC
	CLD
	STD
	CLI
	STI
	HLT
	WAIT
)

var operationNames = map[Operation]string{
	MOV: "mov", PUSH: "push", POP: "pop", XCHG: "xchg", NOP: "nop",
	IN: "in", OUT: "out", XLAT: "xlat", LEA: "lea", LDS: "lds", LES: "les",
	LAHF: "lahf", SAHF: "sahf", PUSHF: "pushf", POPF: "popf",
	ADD: "add", ADC: "adc", SUB: "sub", SBB: "sbb", CMP: "cmp",
	INC: "inc", DEC: "dec", NEG: "neg", MUL: "mul", IMUL: "imul",
	DIV: "div", IDIV: "idiv",
	AAA: "aaa", AAS: "aas", DAA: "daa", DAS: "das", AAM: "aam", AAD: "aad",
	CBW: "cbw", CWD: "cwd",
	AND: "and", OR: "or", XOR: "xor", TEST: "test", NOT: "not",
	ROL: "rol", ROR: "ror", RCL: "rcl", RCR: "rcr",
	SHL: "shl", SHR: "shr", SAR: "sar",
	MOVSB: "movsb", MOVSW: "movsw", CMPSB: "cmpsb", CMPSW: "cmpsw",
	SCASB: "scasb", SCASW: "scasw", LODSB: "lodsb", LODSW: "lodsw",
	STOSB: "stosb", STOSW: "stosw",
	JO: "jo", JNO: "jno", JB: "jb", JNB: "jnb", JE: "je", JNE: "jne",
	JBE: "jbe", JNBE: "jnbe", JS: "js", JNS: "jns", JP: "jp", JNP: "jnp",
	JL: "jl", JNL: "jnl", JLE: "jle", JNLE: "jnle",
	LOOP: "loop", LOOPZ: "loopz", LOOPNZ: "loopnz", JCXZ: "jcxz",
	CALL: "call", CALLF: "call far", CALLRM: "call", CALLFRM: "call far",
	JMP: "jmp", JMPF: "jmp far", JMPRM: "jmp", JMPFRM: "jmp far",
	RET: "ret", RETIMM: "ret", RETF: "retf", RETFIMM: "retf",
	INT: "int", INT3: "int3", INTO: "into", IRET: "iret",
	CLC: "clc", CMC: "cmc", STC: "stc", CLD: "cld", STD: "std",
	CLI: "cli", STI: "sti", HLT: "hlt", WAIT: "wait",
}

// String returns the lower-case NASM mnemonic for op.
func (op Operation) String() string {
	if n, ok := operationNames[op]; ok {
		return n
	}
	return "?op?"
}

// PrefixKind is the closed set of instruction prefixes.
type PrefixKind uint8

const (
	PrefixNone PrefixKind = iota
	PrefixLock
	PrefixRep
	PrefixSegmentOverride
	PrefixLockSegmentOverride
)

// Prefix is an instruction prefix: LOCK, REP, a segment override, or a
// LOCK joined with a segment override. Segment is only meaningful when
// Kind is PrefixSegmentOverride or PrefixLockSegmentOverride.
type Prefix struct {
	Kind    PrefixKind
	Segment SegmentRegister
}

// Join implements the prefix-accumulator joining rule: LOCK combined
// with a SegmentOverride yields LockSegmentOverride; any other pair
// simply keeps the most recently seen prefix.
func (p Prefix) Join(next Prefix) Prefix {
	if p.Kind == PrefixLock && next.Kind == PrefixSegmentOverride {
		return Prefix{Kind: PrefixLockSegmentOverride, Segment: next.Segment}
	}
	if next.Kind == PrefixLock && p.Kind == PrefixSegmentOverride {
		return Prefix{Kind: PrefixLockSegmentOverride, Segment: p.Segment}
	}
	return next
}

func (p Prefix) String() string {
	switch p.Kind {
	case PrefixLock:
		return "lock"
	case PrefixRep:
		return "rep"
	case PrefixSegmentOverride, PrefixLockSegmentOverride:
		return p.Segment.String()
	default:
		return ""
	}
}
