package decoder

import "github.com/andrz/sim8086/pkg/fields"

// entry is one row of the dispatcher: it matches when
// (first & Mask[0]) == Opcode[0] and, if TwoByte, the not-yet-consumed
// second byte also satisfies (second & Mask[1]) == Opcode[1]. The table
// is ordered; the first matching row wins, so more specific patterns
// (e.g. a single opcode-extension reg value) must precede broader ones.
type entry struct {
	Operation fields.Operation
	Shape     Shape
	Opcode    [2]byte
	Mask      [2]byte
	TwoByte   bool
}

func one(op fields.Operation, shape Shape, opcode, mask byte) entry {
	return entry{Operation: op, Shape: shape, Opcode: [2]byte{opcode, 0}, Mask: [2]byte{mask, 0}}
}

func two(op fields.Operation, shape Shape, opcode0, mask0, opcode1, mask1 byte) entry {
	return entry{Operation: op, Shape: shape, Opcode: [2]byte{opcode0, opcode1}, Mask: [2]byte{mask0, mask1}, TwoByte: true}
}

// regExt builds the eight dispatch rows of an opcode-extension group
// (immediate ALU 0x80-0x83, shift/rotate 0xD0-0xD3, unary F6/F7,
// INC/DEC/CALL/JMP/PUSH FE/FF): one row per possible reg-field value,
// matching only that 3-bit sub-field of the second byte.
func regExt(firstOpcode, firstMask byte, shape Shape, ops [8]fields.Operation) []entry {
	rows := make([]entry, 0, 8)
	for reg := uint8(0); reg < 8; reg++ {
		if ops[reg] == fields.Operation(0) {
			continue
		}
		rows = append(rows, two(ops[reg], shape, firstOpcode, firstMask, reg<<3, 0b00111000))
	}
	return rows
}

// table is the ordered opcode dispatch table. Most-specific patterns
// (opcode-extension group rows, which narrow on the second byte's reg
// field) are listed before the plain single/double-byte rows they sit
// alongside, though in practice no row's Opcode/Mask pair overlaps
// another's for a byte pair that would actually occur in the encoding.
var table = buildTable()

func buildTable() []entry {
	var t []entry

	add := func(rows ...entry) { t = append(t, rows...) }
	addSlice := func(rows []entry) { t = append(t, rows...) }

	// --- MOV ---
	add(one(fields.MOV, shapeRegRM(0x01), 0x88, 0xFC)) // 0x88-0x8B: mov rm<->reg, D/W bits
	add(one(fields.MOV, shapeSRRM(), 0x8C, 0xFD))       // 0x8C/0x8E: mov rm<->segreg
	addSlice(regExt(0xC6, 0xFE, shapeRMImd(0x01, false), [8]fields.Operation{0: fields.MOV}))
	add(one(fields.MOV, shapeRegImd(0x08), 0xB0, 0xF0)) // 0xB0-0xBF: mov reg,imm
	add(one(fields.MOV, shapeAccDA(0x01), 0xA0, 0xFE))  // 0xA0/0xA1: mov acc,[addr]
	add(one(fields.MOV, shapeDAAcc(0x01), 0xA2, 0xFE))  // 0xA2/0xA3: mov [addr],acc

	// --- LEA / LDS / LES ---
	add(one(fields.LEA, shapeRegM(), 0x8D, 0xFF))
	add(one(fields.LDS, shapeRegM(), 0xC5, 0xFF))
	add(one(fields.LES, shapeRegM(), 0xC4, 0xFF))

	// --- PUSH / POP ---
	add(one(fields.PUSH, shapeRegLow3(true), 0x50, 0xF8))
	add(one(fields.POP, shapeRegLow3(true), 0x58, 0xF8))
	addSlice(regExt(0xFF, 0xFF, shapeRMW(0), [8]fields.Operation{6: fields.PUSH}))
	add(one(fields.POP, shapeRMW(0), 0x8F, 0xFF))
	add(one(fields.PUSH, shapeSRFixed(fields.ES), 0x06, 0xFF))
	add(one(fields.POP, shapeSRFixed(fields.ES), 0x07, 0xFF))
	add(one(fields.PUSH, shapeSRFixed(fields.CS), 0x0E, 0xFF))
	add(one(fields.PUSH, shapeSRFixed(fields.SS), 0x16, 0xFF))
	add(one(fields.POP, shapeSRFixed(fields.SS), 0x17, 0xFF))
	add(one(fields.PUSH, shapeSRFixed(fields.DS), 0x1E, 0xFF))
	add(one(fields.POP, shapeSRFixed(fields.DS), 0x1F, 0xFF))

	// --- XCHG ---
	add(one(fields.NOP, shapeNoOps(), 0x90, 0xFF))
	for opcode := byte(0x91); opcode <= 0x97; opcode++ {
		add(one(fields.XCHG, shapeAccReg(), opcode, 0xFF)) // 0x91-0x97: xchg ax,reg
	}
	add(one(fields.XCHG, shapeRegRM(0x01), 0x86, 0xFE))

	// --- IN / OUT ---
	add(one(fields.IN, shapeFixedPort(0x01, true), 0xE4, 0xFE))
	add(one(fields.OUT, shapeFixedPort(0x01, false), 0xE6, 0xFE))
	add(one(fields.IN, shapeVariablePort(0x01, true), 0xEC, 0xFE))
	add(one(fields.OUT, shapeVariablePort(0x01, false), 0xEE, 0xFE))

	// --- XLAT ---
	add(one(fields.XLAT, shapeNoOps(), 0xD7, 0xFF))

	// --- flag <-> AH / stack ---
	add(one(fields.LAHF, shapeNoOps(), 0x9F, 0xFF))
	add(one(fields.SAHF, shapeNoOps(), 0x9E, 0xFF))
	add(one(fields.PUSHF, shapeNoOps(), 0x9C, 0xFF))
	add(one(fields.POPF, shapeNoOps(), 0x9D, 0xFF))

	// --- arithmetic/logical reg/mem families: ADD OR ADC SBB AND SUB XOR CMP ---
	type aluFamily struct {
		base byte
		op   fields.Operation
	}
	families := []aluFamily{
		{0x00, fields.ADD}, {0x08, fields.OR}, {0x10, fields.ADC}, {0x18, fields.SBB},
		{0x20, fields.AND}, {0x28, fields.SUB}, {0x30, fields.XOR}, {0x38, fields.CMP},
	}
	for _, f := range families {
		add(one(f.op, shapeRegRM(0x01), f.base, 0xFC))       // rm<->reg, D/W
		add(one(f.op, shapeAccImd(0x01), f.base+0x04, 0xFE)) // acc,imm
	}

	// immediate ALU group 0x80-0x83
	aluGroupOps := [8]fields.Operation{
		0: fields.ADD, 1: fields.OR, 2: fields.ADC, 3: fields.SBB,
		4: fields.AND, 5: fields.SUB, 6: fields.XOR, 7: fields.CMP,
	}
	addSlice(regExt(0x80, 0xFE, shapeRMImd(0x01, false), aluGroupOps)) // 0x80/0x81: no sign extension
	addSlice(regExt(0x82, 0xFE, shapeRMImd(0x01, true), aluGroupOps))  // 0x82/0x83: S bit honored

	// --- TEST ---
	add(one(fields.TEST, shapeRMRegFixedOrder(0x01), 0x84, 0xFE))
	add(one(fields.TEST, shapeAccImd(0x01), 0xA8, 0xFE))

	// --- INC / DEC reg shorthand ---
	add(one(fields.INC, shapeRegLow3(true), 0x40, 0xF8))
	add(one(fields.DEC, shapeRegLow3(true), 0x48, 0xF8))

	// unary group F6/F7: TEST(imm) NOT NEG MUL IMUL DIV IDIV
	addSlice(regExt(0xF6, 0xFE, shapeRMImd(0x01, false), [8]fields.Operation{0: fields.TEST}))
	unaryOps := [8]fields.Operation{2: fields.NOT, 3: fields.NEG, 4: fields.MUL, 5: fields.IMUL, 6: fields.DIV, 7: fields.IDIV}
	addSlice(regExt(0xF6, 0xFE, shapeRMW(0x01), unaryOps))

	// INC/DEC r/m group FE (byte only, no W bit), and INC/DEC/CALL/JMP/PUSH group FF (word only)
	addSlice(regExt(0xFE, 0xFF, shapeRMWFixed(false), [8]fields.Operation{0: fields.INC, 1: fields.DEC}))
	ffOps := [8]fields.Operation{
		0: fields.INC, 1: fields.DEC, 2: fields.CALLRM, 3: fields.CALLFRM,
		4: fields.JMPRM, 5: fields.JMPFRM,
	}
	addSlice(regExt(0xFF, 0xFF, shapeRMW(0), ffOps))

	// --- shift/rotate group D0-D3 ---
	shiftOps := [8]fields.Operation{
		0: fields.ROL, 1: fields.ROR, 2: fields.RCL, 3: fields.RCR,
		4: fields.SHL, 5: fields.SHR, 6: fields.SHL, 7: fields.SAR,
	}
	addSlice(regExt(0xD0, 0xFC, shapeRMVW(0x01), shiftOps))

	// --- BCD / ASCII adjust, sign/width convert ---
	add(one(fields.AAA, shapeNoOps(), 0x37, 0xFF))
	add(one(fields.AAS, shapeNoOps(), 0x3F, 0xFF))
	add(one(fields.DAA, shapeNoOps(), 0x27, 0xFF))
	add(one(fields.DAS, shapeNoOps(), 0x2F, 0xFF))
	add(two(fields.AAM, shapeNoOps2(), 0xD4, 0xFF, 0x0A, 0xFF))
	add(two(fields.AAD, shapeNoOps2(), 0xD5, 0xFF, 0x0A, 0xFF))
	add(one(fields.CBW, shapeNoOps(), 0x98, 0xFF))
	add(one(fields.CWD, shapeNoOps(), 0x99, 0xFF))

	// --- string instructions ---
	add(one(fields.MOVSB, shapeStr(), 0xA4, 0xFF))
	add(one(fields.MOVSW, shapeStr(), 0xA5, 0xFF))
	add(one(fields.CMPSB, shapeStr(), 0xA6, 0xFF))
	add(one(fields.CMPSW, shapeStr(), 0xA7, 0xFF))
	add(one(fields.STOSB, shapeStr(), 0xAA, 0xFF))
	add(one(fields.STOSW, shapeStr(), 0xAB, 0xFF))
	add(one(fields.LODSB, shapeStr(), 0xAC, 0xFF))
	add(one(fields.LODSW, shapeStr(), 0xAD, 0xFF))
	add(one(fields.SCASB, shapeStr(), 0xAE, 0xFF))
	add(one(fields.SCASW, shapeStr(), 0xAF, 0xFF))

	// --- conditional jumps ---
	type jcc struct {
		opcode byte
		op     fields.Operation
	}
	jccs := []jcc{
		{0x70, fields.JO}, {0x71, fields.JNO}, {0x72, fields.JB}, {0x73, fields.JNB},
		{0x74, fields.JE}, {0x75, fields.JNE}, {0x76, fields.JBE}, {0x77, fields.JNBE},
		{0x78, fields.JS}, {0x79, fields.JNS}, {0x7A, fields.JP}, {0x7B, fields.JNP},
		{0x7C, fields.JL}, {0x7D, fields.JNL}, {0x7E, fields.JLE}, {0x7F, fields.JNLE},
	}
	for _, j := range jccs {
		add(one(j.op, shapeInc8(), j.opcode, 0xFF))
	}

	// --- LOOP family ---
	add(one(fields.LOOPNZ, shapeInc8(), 0xE0, 0xFF))
	add(one(fields.LOOPZ, shapeInc8(), 0xE1, 0xFF))
	add(one(fields.LOOP, shapeInc8(), 0xE2, 0xFF))
	add(one(fields.JCXZ, shapeInc8(), 0xE3, 0xFF))

	// --- CALL / JMP / RET ---
	add(one(fields.CALL, shapeInc16(), 0xE8, 0xFF))
	add(one(fields.CALLF, shapeCsIp(), 0x9A, 0xFF))
	add(one(fields.JMP, shapeInc16(), 0xE9, 0xFF))
	add(one(fields.JMPF, shapeCsIp(), 0xEA, 0xFF))
	add(one(fields.JMP, shapeInc8(), 0xEB, 0xFF))
	add(one(fields.RET, shapeNoOps(), 0xC3, 0xFF))
	add(one(fields.RETIMM, shapeData16(), 0xC2, 0xFF))
	add(one(fields.RETF, shapeNoOps(), 0xCB, 0xFF))
	add(one(fields.RETFIMM, shapeData16(), 0xCA, 0xFF))

	// --- interrupts ---
	add(one(fields.INT3, shapeNoOps(), 0xCC, 0xFF))
	add(one(fields.INT, shapeData8(), 0xCD, 0xFF))
	add(one(fields.INTO, shapeNoOps(), 0xCE, 0xFF))
	add(one(fields.IRET, shapeNoOps(), 0xCF, 0xFF))

	// --- flag and misc single-byte ops ---
	add(one(fields.CLC, shapeNoOps(), 0xF8, 0xFF))
	add(one(fields.CMC, shapeNoOps(), 0xF5, 0xFF))
	add(one(fields.STC, shapeNoOps(), 0xF9, 0xFF))
	add(one(fields.CLD, shapeNoOps(), 0xFC, 0xFF))
	add(one(fields.STD, shapeNoOps(), 0xFD, 0xFF))
	add(one(fields.CLI, shapeNoOps(), 0xFA, 0xFF))
	add(one(fields.STI, shapeNoOps(), 0xFB, 0xFF))
	add(one(fields.HLT, shapeNoOps(), 0xF4, 0xFF))
	add(one(fields.WAIT, shapeNoOps(), 0x9B, 0xFF))

	return t
}

// prefixEntry matches a single prefix byte to the fields.Prefix it
// contributes to the accumulator.
type prefixEntry struct {
	Opcode byte
	Mask   byte
	Prefix fields.Prefix
}

var prefixTable = []prefixEntry{
	{0xF0, 0xFF, fields.Prefix{Kind: fields.PrefixLock}},
	{0xF2, 0xFE, fields.Prefix{Kind: fields.PrefixRep}}, // 0xF2 REPNE, 0xF3 REPE/REP
	{0x26, 0xFF, fields.Prefix{Kind: fields.PrefixSegmentOverride, Segment: fields.ES}},
	{0x2E, 0xFF, fields.Prefix{Kind: fields.PrefixSegmentOverride, Segment: fields.CS}},
	{0x36, 0xFF, fields.Prefix{Kind: fields.PrefixSegmentOverride, Segment: fields.SS}},
	{0x3E, 0xFF, fields.Prefix{Kind: fields.PrefixSegmentOverride, Segment: fields.DS}},
}
